package collection

import (
	"context"

	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
)

// StoreSource is a Source over one bridge store. Items are decoded from
// records with bridge.Decode.
type StoreSource[T any] struct {
	Bridge bridge.Bridge
	Handle bridge.Handle
	// TextFields are the record fields searched natively for Query.Text.
	TextFields []string
	// Refine, when set, filters decoded search results client-side. It runs
	// after the bridge has applied the native predicate.
	Refine func(item T, q Query) bool
}

// Name implements Source.
func (s StoreSource[T]) Name() string {
	if s.Handle.Name != "" {
		return s.Handle.Name
	}
	return s.Handle.ID
}

// Enumerate implements Source.
func (s StoreSource[T]) Enumerate(ctx context.Context) ([]T, error) {
	records, err := s.Bridge.ReadAll(ctx, s.Handle)
	if err != nil {
		return nil, err
	}
	return bridge.DecodeAll[T](records)
}

// Search implements Source.
func (s StoreSource[T]) Search(ctx context.Context, q Query) ([]T, error) {
	records, err := s.Bridge.Search(ctx, s.Handle, bridge.Predicate{
		Text:   q.Text,
		Fields: s.TextFields,
		Start:  q.Start,
		End:    q.End,
	})
	if err != nil {
		return nil, err
	}
	items, err := bridge.DecodeAll[T](records)
	if err != nil {
		return nil, err
	}
	if s.Refine == nil {
		return items, nil
	}
	kept := items[:0]
	for _, item := range items {
		if s.Refine(item, q) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// Open lists the stores of domain and wraps each one with build. Handles are
// fresh on every call. A failure to list stores counts as every source
// failing.
func Open[T any](ctx context.Context, b bridge.Bridge, domain bridge.Domain, build func(h bridge.Handle) Source[T]) ([]Source[T], error) {
	handles, err := b.Stores(ctx, domain)
	if err != nil {
		return nil, fault.Wrap(err, fault.KindDomainAccess, string(domain), "listing stores failed")
	}
	sources := make([]Source[T], 0, len(handles))
	for _, h := range handles {
		sources = append(sources, build(h))
	}
	return sources, nil
}
