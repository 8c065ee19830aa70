package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
	"github.com/spachava753/deskmcp/macos/bridge/bridgetest"
)

func at(day int, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, time.UTC)
}

func event(id string, title string, start time.Time, end time.Time) bridge.Record {
	return bridge.Record{
		"id":        id,
		"title":     title,
		"startDate": start.Format(time.RFC3339),
		"endDate":   end.Format(time.RFC3339),
	}
}

func newService(b *bridgetest.Bridge) *Service {
	svc := New(b, access.NewGate(b, zerolog.Nop()), "", zerolog.Nop())
	svc.now = func() time.Time { return at(19, 8) }
	return svc
}

func TestFindWithRangeFiltersTextClientSide(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Work",
		event("e1", "Standup", at(20, 9), at(20, 10)),
		event("e2", "Retro", at(20, 15), at(20, 16)),
		event("e3", "Standup", at(30, 9), at(30, 10)),
	)

	found, err := newService(b).Find(context.Background(), "Standup", at(19, 0), at(25, 0))
	be.Err(t, err, nil)
	be.Equal(t, len(found), 1)
	be.Equal(t, found[0].ID, "e1")
	be.Equal(t, found[0].CalendarName, "Work")
}

func TestFindWithRangeNeverFallsBack(t *testing.T) {
	b := bridgetest.New()
	h := b.AddStore(domain, "Work", event("e1", "Standup", at(20, 9), at(20, 10)))

	found, err := newService(b).Find(context.Background(), "standup", at(19, 0), at(25, 0))
	be.Err(t, err, nil)
	be.Equal(t, len(found), 0)
	for _, call := range b.Calls() {
		be.True(t, call != "readAll:"+h.ID)
	}
}

func TestFindTextOnlyFallsBack(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Work", event("e1", "Team Standup", at(20, 9), at(20, 10)))
	b.AddStore(domain, "Home", bridge.Record{
		"id": "h1", "title": "Dentist", "location": "STANDUP plaza",
		"startDate": at(21, 9).Format(time.RFC3339),
	})

	found, err := newService(b).Find(context.Background(), "standup", time.Time{}, time.Time{})
	be.Err(t, err, nil)
	be.Equal(t, len(found), 2)
	be.Equal(t, found[0].ID, "e1")
	be.Equal(t, found[1].ID, "h1")
}

func TestListDefaultsToNextWeekSorted(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Work",
		event("late", "Planning", at(24, 9), at(24, 10)),
		event("past", "Old", at(10, 9), at(10, 10)),
	)
	b.AddStore(domain, "Home", event("early", "Gym", at(20, 7), at(20, 8)))

	events, err := newService(b).List(context.Background(), time.Time{}, time.Time{})
	be.Err(t, err, nil)
	be.Equal(t, len(events), 2)
	be.Equal(t, events[0].ID, "early")
	be.Equal(t, events[1].ID, "late")
}

func TestListRejectsInvertedRange(t *testing.T) {
	_, err := newService(bridgetest.New()).List(context.Background(), at(20, 0), at(19, 0))
	be.True(t, fault.Is(err, fault.KindValidation))
}

func TestCreateComputesEnd(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Home")
	work := b.AddStore(domain, "Work")
	svc := newService(b)

	ev, err := svc.Create(context.Background(), Draft{
		Title:        "Design review",
		Start:        at(22, 14),
		Duration:     90 * time.Minute,
		Location:     "Room 4",
		CalendarName: "work",
	})
	be.Err(t, err, nil)
	be.True(t, ev.EndDate.Equal(at(22, 15).Add(30*time.Minute)))
	be.Equal(t, ev.CalendarName, "Work")
	be.Equal(t, ev.Location, "Room 4")
	be.Equal(t, len(b.Records(work)), 1)

	found, err := svc.Find(context.Background(), "Design", time.Time{}, time.Time{})
	be.Err(t, err, nil)
	be.Equal(t, len(found), 1)
	be.Equal(t, found[0].Title, "Design review")
}

func TestCreateRejectsNegativeDuration(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Home")
	_, err := newService(b).Create(context.Background(), Draft{Title: "x", Start: at(22, 14), Duration: -time.Minute})
	be.True(t, fault.Is(err, fault.KindValidation))
}

func TestOneCalendarFailing(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Work", event("e1", "Standup", at(20, 9), at(20, 10)))
	shared := b.AddStore(domain, "Shared", event("s1", "Standup", at(20, 9), at(20, 10)))
	b.Fail(shared, "search", errors.New("subscription unreachable"))

	found, err := newService(b).Find(context.Background(), "Standup", time.Time{}, time.Time{})
	be.Err(t, err, nil)
	be.Equal(t, len(found), 1)
	be.Equal(t, found[0].ID, "e1")
}

func TestDenied(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Work")
	b.DenyProbe(domain, errors.New("not authorized"))

	_, err := newService(b).List(context.Background(), time.Time{}, time.Time{})
	be.True(t, fault.Is(err, fault.KindAccessDenied))
	be.Equal(t, b.Calls(), []string{"probe:calendar"})
}
