package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/collection"
	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
)

const domain = bridge.DomainReminders

// textFields are searched natively by Find.
var textFields = []string{"title", "notes"}

// Reminder is one reminder as read from its list.
type Reminder struct {
	ID          string     `record:"id"`
	Title       string     `record:"title"`
	Notes       string     `record:"notes"`
	DueDate     *time.Time `record:"dueDate"`
	IsCompleted bool       `record:"isCompleted"`
	ListName    string     `record:"listName"`
}

// List is a reminder list.
type List struct {
	ID   string
	Name string
}

// Draft is the create model.
type Draft struct {
	Title    string
	Notes    string
	DueDate  *time.Time
	ListName string
}

// Service implements the reminders operations.
type Service struct {
	bridge      bridge.Bridge
	gate        access.Checker
	defaultList string
	logger      zerolog.Logger
}

// New returns a Service. defaultList names the list used by Create when the
// draft does not name one; empty means the first list.
func New(b bridge.Bridge, gate access.Checker, defaultList string, logger zerolog.Logger) *Service {
	return &Service{
		bridge:      b,
		gate:        gate,
		defaultList: strings.TrimSpace(defaultList),
		logger:      logger.With().Str("domain", string(domain)).Logger(),
	}
}

func (s *Service) aggregator() collection.Aggregator[Reminder] {
	return collection.Aggregator[Reminder]{
		Domain: string(domain),
		Fields: func(r Reminder) []string { return []string{r.Title, r.Notes} },
		Logger: s.logger,
	}
}

func (s *Service) sources(ctx context.Context) ([]collection.Source[Reminder], error) {
	return collection.Open(ctx, s.bridge, domain, func(h bridge.Handle) collection.Source[Reminder] {
		return collection.StoreSource[Reminder]{Bridge: s.bridge, Handle: h, TextFields: textFields}
	})
}

// Lists returns the reminder lists.
func (s *Service) Lists(ctx context.Context) ([]List, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	handles, err := s.bridge.Stores(ctx, domain)
	if err != nil {
		return nil, fault.Wrap(err, fault.KindDomainAccess, string(domain), "listing reminder lists failed")
	}
	lists := make([]List, 0, len(handles))
	for _, h := range handles {
		lists = append(lists, List{ID: h.ID, Name: h.Name})
	}
	return lists, nil
}

// All returns every reminder across all lists.
func (s *Service) All(ctx context.Context) ([]Reminder, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().List(ctx, sources)
	return res.Items, err
}

// Find returns reminders whose title or notes contain text.
func (s *Service) Find(ctx context.Context, text string) ([]Reminder, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().Find(ctx, sources, collection.Query{Text: text})
	return res.Items, err
}

// Create adds a reminder to the draft's list, the default list, or the first
// list, in that order.
func (s *Service) Create(ctx context.Context, d Draft) (Reminder, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return Reminder{}, err
	}
	handles, err := s.bridge.Stores(ctx, domain)
	if err != nil {
		return Reminder{}, fault.Wrap(err, fault.KindDomainAccess, string(domain), "listing reminder lists failed")
	}
	target, err := s.pickList(handles, d.ListName)
	if err != nil {
		return Reminder{}, err
	}

	rec := bridge.Record{"title": d.Title, "notes": d.Notes}
	if d.DueDate != nil {
		rec["dueDate"] = bridge.FormatTime(*d.DueDate)
	}
	created, err := s.bridge.Insert(ctx, target, rec)
	if err != nil {
		return Reminder{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), fmt.Sprintf("creating reminder in %q failed", target.Name))
	}

	var out Reminder
	if err := bridge.Decode(created, &out); err != nil {
		return Reminder{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), "reading created reminder failed")
	}
	if out.ListName == "" {
		out.ListName = target.Name
	}
	s.logger.Info().Str("list", target.Name).Str("id", out.ID).Msg("reminder created")
	return out, nil
}

func (s *Service) pickList(handles []bridge.Handle, name string) (bridge.Handle, error) {
	if len(handles) == 0 {
		return bridge.Handle{}, &fault.Error{Kind: fault.KindCreateFailed, Domain: string(domain), Message: "no reminder lists available"}
	}
	if name = strings.TrimSpace(name); name != "" {
		for _, h := range handles {
			if strings.EqualFold(h.Name, name) {
				return h, nil
			}
		}
		return bridge.Handle{}, fault.NotFound(string(domain), "reminder list %q not found", name)
	}
	if s.defaultList != "" {
		for _, h := range handles {
			if strings.EqualFold(h.Name, s.defaultList) {
				return h, nil
			}
		}
		s.logger.Warn().Str("list", s.defaultList).Msg("default list missing, using first list")
	}
	return handles[0], nil
}

type located struct {
	handle   bridge.Handle
	reminder Reminder
}

// Complete marks the reminder with id as completed. Completing an already
// completed reminder succeeds without writing.
func (s *Service) Complete(ctx context.Context, id string) (Reminder, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return Reminder{}, err
	}
	handles, err := s.bridge.Stores(ctx, domain)
	if err != nil {
		return Reminder{}, fault.Wrap(err, fault.KindDomainAccess, string(domain), "listing reminder lists failed")
	}

	var (
		hits []located
		errs []error
	)
	for _, h := range handles {
		records, err := s.bridge.ReadAll(ctx, h)
		if err != nil {
			s.logger.Warn().Err(err).Str("source", h.Name).Msg("skipping list")
			errs = append(errs, &collection.SourceError{Source: h.Name, Err: err})
			continue
		}
		for _, rec := range records {
			if rec.ID() != id {
				continue
			}
			var r Reminder
			if err := bridge.Decode(rec, &r); err != nil {
				return Reminder{}, err
			}
			if r.ListName == "" {
				r.ListName = h.Name
			}
			hits = append(hits, located{handle: h, reminder: r})
		}
	}

	switch {
	case len(hits) == 0 && len(handles) > 0 && len(errs) == len(handles):
		return Reminder{}, &fault.Error{Kind: fault.KindDomainAccess, Domain: string(domain), Message: "no reminder list could be read", Err: errors.Join(errs...)}
	case len(hits) == 0:
		return Reminder{}, fault.NotFound(string(domain), "reminder %q not found", id)
	case len(hits) > 1:
		return Reminder{}, fault.Validation("id", "reminder id %q matches items in %d lists", id, len(hits))
	}

	hit := hits[0]
	if hit.reminder.IsCompleted {
		return hit.reminder, nil
	}
	updated, err := s.bridge.SetField(ctx, hit.handle, id, "isCompleted", true)
	if err != nil {
		return Reminder{}, fault.Wrap(err, fault.KindMutateFailed, string(domain), fmt.Sprintf("completing reminder %q failed", id))
	}
	if !updated {
		return Reminder{}, fault.NotFound(string(domain), "reminder %q not found", id)
	}
	hit.reminder.IsCompleted = true
	s.logger.Info().Str("list", hit.handle.Name).Str("id", id).Msg("reminder completed")
	return hit.reminder, nil
}
