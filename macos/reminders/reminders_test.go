package reminders

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

func newService(b *bridgetest.Bridge) *Service {
	return New(b, access.NewGate(b, zerolog.Nop()), "", zerolog.Nop())
}

func TestCreateThenFind(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Reminders")
	b.AddStore(domain, "Groceries")
	svc := newService(b)
	ctx := context.Background()

	created, err := svc.Create(ctx, Draft{Title: "Buy milk"})
	be.Err(t, err, nil)
	be.Equal(t, created.Title, "Buy milk")
	be.Equal(t, created.ListName, "Reminders")
	be.True(t, !created.IsCompleted)

	found, err := svc.Find(ctx, "milk")
	be.Err(t, err, nil)
	be.Equal(t, len(found), 1)
	be.Equal(t, found[0].Title, "Buy milk")
	be.Equal(t, found[0].Notes, "")
	be.True(t, found[0].DueDate == nil)
	be.True(t, !found[0].IsCompleted)
}

func TestCreateIntoNamedListWithDueDate(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Reminders")
	groceries := b.AddStore(domain, "Groceries")
	svc := newService(b)

	due := time.Date(2026, 10, 21, 17, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), Draft{Title: "Eggs", Notes: "dozen", DueDate: &due, ListName: "groceries"})
	be.Err(t, err, nil)
	be.Equal(t, created.ListName, "Groceries")
	be.True(t, created.DueDate.Equal(due))
	be.Equal(t, len(b.Records(groceries)), 1)

	_, err = svc.Create(context.Background(), Draft{Title: "x", ListName: "Nope"})
	be.True(t, fault.Is(err, fault.KindNotFound))
}

func TestCreateUsesDefaultList(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Reminders")
	work := b.AddStore(domain, "Work")
	svc := New(b, access.NewGate(b, zerolog.Nop()), "work", zerolog.Nop())

	_, err := svc.Create(context.Background(), Draft{Title: "Ship it"})
	be.Err(t, err, nil)
	be.Equal(t, len(b.Records(work)), 1)
}

func TestCreateFailures(t *testing.T) {
	b := bridgetest.New()
	svc := newService(b)
	_, err := svc.Create(context.Background(), Draft{Title: "orphan"})
	be.True(t, fault.Is(err, fault.KindCreateFailed))

	h := b.AddStore(domain, "Reminders")
	b.Fail(h, "insert", errors.New("list is read-only"))
	_, err = svc.Create(context.Background(), Draft{Title: "blocked"})
	be.True(t, fault.Is(err, fault.KindCreateFailed))
}

func TestFindSkipsFailingList(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "A", bridge.Record{"title": "milk A"})
	broken := b.AddStore(domain, "B", bridge.Record{"title": "milk B"})
	b.AddStore(domain, "C", bridge.Record{"title": "milk C"})
	b.Fail(broken, "search", errors.New("list locked"))

	found, err := newService(b).Find(context.Background(), "milk")
	be.Err(t, err, nil)
	be.Equal(t, len(found), 2)
	be.Equal(t, found[0].Title, "milk A")
	be.Equal(t, found[1].Title, "milk C")
}

func TestAllListsFail(t *testing.T) {
	b := bridgetest.New()
	a := b.AddStore(domain, "A")
	c := b.AddStore(domain, "B")
	b.Fail(a, "readAll", errors.New("denied"))
	b.Fail(c, "readAll", errors.New("denied"))

	_, err := newService(b).All(context.Background())
	be.True(t, fault.Is(err, fault.KindDomainAccess))
}

func TestCompleteFlipsAndIsIdempotent(t *testing.T) {
	b := bridgetest.New()
	h := b.AddStore(domain, "Reminders", bridge.Record{"id": "r1", "title": "Buy milk", "isCompleted": false})
	svc := newService(b)
	ctx := context.Background()

	done, err := svc.Complete(ctx, "r1")
	be.Err(t, err, nil)
	be.True(t, done.IsCompleted)
	be.Equal(t, b.Records(h)[0]["isCompleted"], any(true))

	again, err := svc.Complete(ctx, "r1")
	be.Err(t, err, nil)
	be.True(t, again.IsCompleted)
	be.Equal(t, b.Records(h)[0]["isCompleted"], any(true))
}

func TestCompleteUnknownIDLeavesStateAlone(t *testing.T) {
	b := bridgetest.New()
	h := b.AddStore(domain, "Reminders", bridge.Record{"id": "r1", "title": "Buy milk", "isCompleted": false})

	_, err := newService(b).Complete(context.Background(), "nope")
	be.True(t, fault.Is(err, fault.KindNotFound))
	be.Equal(t, b.Records(h)[0]["isCompleted"], any(false))
	for _, call := range b.Calls() {
		be.True(t, call != "setField:"+h.ID)
	}
}

func TestCompleteAmbiguousID(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "A", bridge.Record{"id": "dup", "title": "one"})
	b.AddStore(domain, "B", bridge.Record{"id": "dup", "title": "two"})

	_, err := newService(b).Complete(context.Background(), "dup")
	be.True(t, fault.Is(err, fault.KindValidation))
}

func TestDeniedTouchesNoList(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Reminders", bridge.Record{"title": "Buy milk"})
	b.DenyProbe(domain, errors.New("not authorized"))

	_, err := newService(b).Find(context.Background(), "milk")
	be.True(t, fault.Is(err, fault.KindAccessDenied))
	be.Equal(t, b.Calls(), []string{"probe:reminders"})
}

func TestLists(t *testing.T) {
	b := bridgetest.New()
	b.AddStore(domain, "Reminders")
	b.AddStore(domain, "Groceries")
	lists, err := newService(b).Lists(context.Background())
	be.Err(t, err, nil)
	be.Equal(t, len(lists), 2)
	be.Equal(t, lists[1].Name, "Groceries")
}
