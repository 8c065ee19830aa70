// Package bridgetest provides an in-memory bridge.Bridge for tests.
//
// Stores hold plain records. Text search is a case-sensitive substring match
// over the requested fields, and date-ranged search keeps records whose
// startDate/endDate interval intersects the range. Every call is recorded so
// tests can assert which stores were touched.
package bridgetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spachava753/deskmcp/macos/bridge"
)

// storeNameField is the record field each domain uses for its owning store.
var storeNameField = map[bridge.Domain]string{
	bridge.DomainReminders: "listName",
	bridge.DomainCalendar:  "calendarName",
	bridge.DomainNotes:     "folder",
}

type store struct {
	handle  bridge.Handle
	records []bridge.Record
}

// Bridge is a thread-safe in-memory bridge.
type Bridge struct {
	mu        sync.Mutex
	stores    map[bridge.Domain][]*store
	probeErr  map[bridge.Domain]error
	storesErr map[bridge.Domain]error
	failures  map[string]error
	calls     []string
	nextID    int
}

// New returns an empty bridge.
func New() *Bridge {
	return &Bridge{
		stores:    map[bridge.Domain][]*store{},
		probeErr:  map[bridge.Domain]error{},
		storesErr: map[bridge.Domain]error{},
		failures:  map[string]error{},
	}
}

// AddStore registers a store named name under domain and seeds it with records.
func (b *Bridge) AddStore(domain bridge.Domain, name string, records ...bridge.Record) bridge.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := bridge.Handle{Domain: domain, ID: fmt.Sprintf("%s-%d", domain, len(b.stores[domain])+1), Name: name}
	s := &store{handle: h}
	for _, rec := range records {
		s.records = append(s.records, b.stamp(domain, s, rec))
	}
	b.stores[domain] = append(b.stores[domain], s)
	return h
}

// DenyProbe makes Probe fail for domain.
func (b *Bridge) DenyProbe(domain bridge.Domain, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probeErr[domain] = err
}

// FailStores makes Stores fail for domain.
func (b *Bridge) FailStores(domain bridge.Domain, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.storesErr[domain] = err
}

// Fail makes action ("readAll", "search", "insert", "setField") fail for the
// store addressed by h.
func (b *Bridge) Fail(h bridge.Handle, action string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[action+":"+h.ID] = err
}

// Calls returns the recorded calls as "action:storeID" (or "action:domain" for
// domain-level calls).
func (b *Bridge) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Records returns a copy of the records held by h.
func (b *Bridge) Records(h bridge.Handle) []bridge.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.find(h)
	if s == nil {
		return nil
	}
	return cloneAll(s.records)
}

// Probe implements bridge.Bridge.
func (b *Bridge) Probe(ctx context.Context, domain bridge.Domain) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "probe:"+string(domain))
	return b.probeErr[domain]
}

// Stores implements bridge.Bridge.
func (b *Bridge) Stores(ctx context.Context, domain bridge.Domain) ([]bridge.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "stores:"+string(domain))
	if err := b.storesErr[domain]; err != nil {
		return nil, err
	}
	handles := make([]bridge.Handle, 0, len(b.stores[domain]))
	for _, s := range b.stores[domain] {
		handles = append(handles, s.handle)
	}
	return handles, nil
}

// ReadAll implements bridge.Bridge.
func (b *Bridge) ReadAll(ctx context.Context, h bridge.Handle) ([]bridge.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.enter("readAll", h)
	if err != nil {
		return nil, err
	}
	return cloneAll(s.records), nil
}

// Search implements bridge.Bridge.
func (b *Bridge) Search(ctx context.Context, h bridge.Handle, p bridge.Predicate) ([]bridge.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.enter("search", h)
	if err != nil {
		return nil, err
	}
	var out []bridge.Record
	for _, rec := range s.records {
		if p.HasRange() {
			if intersects(rec, p.Start, p.End) {
				out = append(out, clone(rec))
			}
			continue
		}
		for _, field := range p.Fields {
			if v, ok := rec[field].(string); ok && p.Text != "" && strings.Contains(v, p.Text) {
				out = append(out, clone(rec))
				break
			}
		}
	}
	return out, nil
}

// Insert implements bridge.Bridge.
func (b *Bridge) Insert(ctx context.Context, h bridge.Handle, rec bridge.Record) (bridge.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.enter("insert", h)
	if err != nil {
		return nil, err
	}
	stored := b.stamp(h.Domain, s, rec)
	s.records = append(s.records, stored)
	return clone(stored), nil
}

// SetField implements bridge.Bridge.
func (b *Bridge) SetField(ctx context.Context, h bridge.Handle, id string, field string, value any) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.enter("setField", h)
	if err != nil {
		return false, err
	}
	for _, rec := range s.records {
		if rec.ID() == id {
			rec[field] = value
			return true, nil
		}
	}
	return false, nil
}

func (b *Bridge) enter(action string, h bridge.Handle) (*store, error) {
	b.calls = append(b.calls, action+":"+h.ID)
	if err := b.failures[action+":"+h.ID]; err != nil {
		return nil, err
	}
	s := b.find(h)
	if s == nil {
		return nil, fmt.Errorf("bridgetest: store %q not found", h.ID)
	}
	return s, nil
}

func (b *Bridge) find(h bridge.Handle) *store {
	for _, s := range b.stores[h.Domain] {
		if s.handle.ID == h.ID {
			return s
		}
	}
	return nil
}

func (b *Bridge) stamp(domain bridge.Domain, s *store, rec bridge.Record) bridge.Record {
	out := clone(rec)
	if out.ID() == "" {
		b.nextID++
		out["id"] = fmt.Sprintf("%s-item-%d", s.handle.ID, b.nextID)
	}
	if field, ok := storeNameField[domain]; ok {
		out[field] = s.handle.Name
	}
	return out
}

func intersects(rec bridge.Record, start time.Time, end time.Time) bool {
	from, ok := parseTime(rec["startDate"])
	if !ok {
		return false
	}
	to, ok := parseTime(rec["endDate"])
	if !ok {
		to = from
	}
	if !end.IsZero() && from.After(end) {
		return false
	}
	if !start.IsZero() && to.Before(start) {
		return false
	}
	return true
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}

func clone(rec bridge.Record) bridge.Record {
	out := make(bridge.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func cloneAll(records []bridge.Record) []bridge.Record {
	out := make([]bridge.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, clone(rec))
	}
	return out
}
