package collection

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/fault"
)

type fakeSource struct {
	name      string
	items     []string
	searchErr error
	enumErr   error
	searches  int
	enums     int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Enumerate(ctx context.Context) ([]string, error) {
	f.enums++
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	return slices.Clone(f.items), nil
}

func (f *fakeSource) Search(ctx context.Context, q Query) ([]string, error) {
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []string
	for _, item := range f.items {
		if ContainsText(q.Text, item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func newAggregator() Aggregator[string] {
	return Aggregator[string]{
		Domain: "reminders",
		Fields: func(s string) []string { return []string{s} },
		Logger: zerolog.Nop(),
	}
}

func sources(fs ...*fakeSource) []Source[string] {
	out := make([]Source[string], 0, len(fs))
	for _, f := range fs {
		out = append(out, f)
	}
	return out
}

func TestFindSkipsFailingSource(t *testing.T) {
	a := &fakeSource{name: "a", items: []string{"milk a1", "bread"}}
	b := &fakeSource{name: "b", items: []string{"milk b1"}, searchErr: errors.New("calendar locked")}
	c := &fakeSource{name: "c", items: []string{"milk c1", "milk c2"}}

	res, err := newAggregator().Find(context.Background(), sources(a, b, c), Query{Text: "milk"})
	be.Err(t, err, nil)
	be.Equal(t, res.Items, []string{"milk a1", "milk c1", "milk c2"})
	be.Equal(t, res.Failed, []string{"b"})
	be.True(t, !res.Fallback)
}

func TestListAllSourcesFail(t *testing.T) {
	boom := errors.New("denied")
	a := &fakeSource{name: "a", enumErr: boom}
	b := &fakeSource{name: "b", enumErr: boom}

	_, err := newAggregator().List(context.Background(), sources(a, b))
	be.True(t, fault.Is(err, fault.KindDomainAccess))
	be.True(t, errors.Is(err, boom))
}

func TestListNoSourcesIsEmpty(t *testing.T) {
	res, err := newAggregator().List(context.Background(), nil)
	be.Err(t, err, nil)
	be.Equal(t, len(res.Items), 0)
}

func TestFindFallsBackCaseInsensitive(t *testing.T) {
	a := &fakeSource{name: "a", items: []string{"Buy Milk", "call mom"}}
	b := &fakeSource{name: "b", items: []string{"MILKSHAKE"}}

	res, err := newAggregator().Find(context.Background(), sources(a, b), Query{Text: "milk"})
	be.Err(t, err, nil)
	be.True(t, res.Fallback)
	be.Equal(t, res.Items, []string{"Buy Milk", "MILKSHAKE"})
	be.Equal(t, a.enums, 1)
	be.Equal(t, b.enums, 1)
}

func TestFallbackIsStable(t *testing.T) {
	a := &fakeSource{name: "a", items: []string{"Buy Milk", "bread"}}
	agg := newAggregator()

	first, err := agg.Find(context.Background(), sources(a), Query{Text: "MILK"})
	be.Err(t, err, nil)
	second, err := agg.Find(context.Background(), sources(a), Query{Text: "MILK"})
	be.Err(t, err, nil)
	be.Equal(t, first.Items, second.Items)
	be.Equal(t, first.Items, []string{"Buy Milk"})
}

func TestFindNoFallbackWithRange(t *testing.T) {
	a := &fakeSource{name: "a", items: []string{"Buy Milk"}}
	res, err := newAggregator().Find(context.Background(), sources(a), Query{
		Text:  "milk",
		Start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	be.Err(t, err, nil)
	be.Equal(t, len(res.Items), 0)
	be.True(t, !res.Fallback)
	be.Equal(t, a.enums, 0)
}

func TestFindStrictFailsFallbackSucceeds(t *testing.T) {
	a := &fakeSource{name: "a", items: []string{"Milk run"}, searchErr: errors.New("whose clause unsupported")}

	res, err := newAggregator().Find(context.Background(), sources(a), Query{Text: "milk"})
	be.Err(t, err, nil)
	be.True(t, res.Fallback)
	be.Equal(t, res.Items, []string{"Milk run"})
}

func TestFindEverythingFails(t *testing.T) {
	boom := errors.New("timeout")
	a := &fakeSource{name: "a", searchErr: boom, enumErr: boom}
	b := &fakeSource{name: "b", searchErr: boom, enumErr: boom}

	_, err := newAggregator().Find(context.Background(), sources(a, b), Query{Text: "milk"})
	be.True(t, fault.Is(err, fault.KindDomainAccess))
	be.Equal(t, a.searches, 1)
	be.Equal(t, a.enums, 1)
}

func TestFindEmptyAfterFallbackIsNotAnError(t *testing.T) {
	a := &fakeSource{name: "a", items: []string{"bread"}}
	res, err := newAggregator().Find(context.Background(), sources(a), Query{Text: "milk"})
	be.Err(t, err, nil)
	be.True(t, res.Fallback)
	be.Equal(t, len(res.Items), 0)
}

func TestMatchText(t *testing.T) {
	be.True(t, MatchText("milk", "Buy MILK"))
	be.True(t, MatchText(" Office ", "", "Main office"))
	be.True(t, !MatchText("milk", "bread", "eggs"))
	be.True(t, !MatchText("", "anything"))
}

func TestContainsText(t *testing.T) {
	be.True(t, ContainsText("Milk", "Buy Milk"))
	be.True(t, !ContainsText("milk", "Buy Milk"))
	be.True(t, !ContainsText("", "Buy Milk"))
}

func TestOverlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }

	be.True(t, Overlaps(day(10), day(12), day(11), day(20)))
	be.True(t, Overlaps(day(10), day(12), day(12), day(20)))
	be.True(t, !Overlaps(day(10), day(12), day(13), day(20)))
	be.True(t, !Overlaps(day(21), time.Time{}, day(13), day(20)))
	be.True(t, Overlaps(day(21), time.Time{}, day(13), time.Time{}))
	be.True(t, Overlaps(day(1), day(2), time.Time{}, time.Time{}))
}
