// Package calendar reads and writes Calendar.app events through the
// automation bridge.
//
// Each calendar is a separate store. Date-ranged searches are evaluated by
// Calendar.app and then narrowed by text on this side, because the native
// query cannot combine both for every calendar type.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/collection"
	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
)

const domain = bridge.DomainCalendar

// DefaultWindow is the span listed when no end date is given.
const DefaultWindow = 7 * 24 * time.Hour

var textFields = []string{"title", "location", "notes"}

// Event is one calendar event.
type Event struct {
	ID           string    `record:"id"`
	Title        string    `record:"title"`
	Notes        string    `record:"notes"`
	Location     string    `record:"location"`
	StartDate    time.Time `record:"startDate"`
	EndDate      time.Time `record:"endDate"`
	IsAllDay     bool      `record:"isAllDay"`
	CalendarName string    `record:"calendarName"`
}

// Draft is the create model. Duration may be zero.
type Draft struct {
	Title        string
	Start        time.Time
	Duration     time.Duration
	Description  string
	Location     string
	CalendarName string
}

// Service implements the calendar operations.
type Service struct {
	bridge          bridge.Bridge
	gate            access.Checker
	defaultCalendar string
	now             func() time.Time
	logger          zerolog.Logger
}

// New returns a Service. defaultCalendar names the calendar used by Create
// when the draft does not name one.
func New(b bridge.Bridge, gate access.Checker, defaultCalendar string, logger zerolog.Logger) *Service {
	return &Service{
		bridge:          b,
		gate:            gate,
		defaultCalendar: strings.TrimSpace(defaultCalendar),
		now:             time.Now,
		logger:          logger.With().Str("domain", string(domain)).Logger(),
	}
}

func refine(e Event, q collection.Query) bool {
	if !q.HasRange() {
		return true
	}
	if !collection.Overlaps(e.StartDate, e.EndDate, q.Start, q.End) {
		return false
	}
	if q.Text == "" {
		return true
	}
	return collection.ContainsText(q.Text, e.Title, e.Location, e.Notes)
}

func (s *Service) aggregator() collection.Aggregator[Event] {
	return collection.Aggregator[Event]{
		Domain: string(domain),
		Fields: func(e Event) []string { return []string{e.Title, e.Notes, e.Location} },
		Logger: s.logger,
	}
}

func (s *Service) sources(ctx context.Context) ([]collection.Source[Event], error) {
	return collection.Open(ctx, s.bridge, domain, func(h bridge.Handle) collection.Source[Event] {
		return collection.StoreSource[Event]{Bridge: s.bridge, Handle: h, TextFields: textFields, Refine: refine}
	})
}

// List returns events intersecting [from, to] across all calendars, ordered
// by start date. A zero from means now; a zero to means from plus
// DefaultWindow.
func (s *Service) List(ctx context.Context, from time.Time, to time.Time) ([]Event, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		to = from.Add(DefaultWindow)
	}
	if to.Before(from) {
		return nil, fault.Validation("toDate", "toDate %s is before fromDate %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().Find(ctx, sources, collection.Query{Start: from, End: to})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res.Items, func(i, j int) bool {
		return res.Items[i].StartDate.Before(res.Items[j].StartDate)
	})
	return res.Items, nil
}

// Find returns events containing text. With a date bound the search is
// limited to events intersecting the range and never broadened.
func (s *Service) Find(ctx context.Context, text string, start time.Time, end time.Time) ([]Event, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fault.Validation("endDate", "endDate is before startDate")
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().Find(ctx, sources, collection.Query{Text: text, Start: start, End: end})
	return res.Items, err
}

// Create adds an event to the draft's calendar, the default calendar, or the
// first calendar, in that order.
func (s *Service) Create(ctx context.Context, d Draft) (Event, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return Event{}, err
	}
	if d.Duration < 0 {
		return Event{}, fault.Validation("duration", "duration must not be negative")
	}
	handles, err := s.bridge.Stores(ctx, domain)
	if err != nil {
		return Event{}, fault.Wrap(err, fault.KindDomainAccess, string(domain), "listing calendars failed")
	}
	target, err := s.pickCalendar(handles, d.CalendarName)
	if err != nil {
		return Event{}, err
	}

	rec := bridge.Record{
		"title":     d.Title,
		"startDate": bridge.FormatTime(d.Start),
		"endDate":   bridge.FormatTime(d.Start.Add(d.Duration)),
		"notes":     d.Description,
		"location":  d.Location,
	}
	created, err := s.bridge.Insert(ctx, target, rec)
	if err != nil {
		return Event{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), fmt.Sprintf("creating event in %q failed", target.Name))
	}
	var out Event
	if err := bridge.Decode(created, &out); err != nil {
		return Event{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), "reading created event failed")
	}
	if out.CalendarName == "" {
		out.CalendarName = target.Name
	}
	s.logger.Info().Str("calendar", target.Name).Str("id", out.ID).Msg("event created")
	return out, nil
}

func (s *Service) pickCalendar(handles []bridge.Handle, name string) (bridge.Handle, error) {
	if len(handles) == 0 {
		return bridge.Handle{}, &fault.Error{Kind: fault.KindCreateFailed, Domain: string(domain), Message: "no calendars available"}
	}
	if name = strings.TrimSpace(name); name != "" {
		for _, h := range handles {
			if strings.EqualFold(h.Name, name) {
				return h, nil
			}
		}
		return bridge.Handle{}, fault.NotFound(string(domain), "calendar %q not found", name)
	}
	if s.defaultCalendar != "" {
		for _, h := range handles {
			if strings.EqualFold(h.Name, s.defaultCalendar) {
				return h, nil
			}
		}
	}
	return handles[0], nil
}
