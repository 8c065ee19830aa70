// Package collection fans logical reads out across the backing stores of a
// domain and merges the results.
//
// A domain such as reminders or calendar is spread over several independent
// stores. [Aggregator] reads each [Source] in turn, skips the ones that fail,
// and only reports an error when none of them could be read. Text finds that
// come back empty are retried once as a full enumeration filtered by
// [MatchText], because the native query engines disagree on case sensitivity
// and substring semantics.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/fault"
)

// Source is one enumerable backing store.
type Source[T any] interface {
	// Name identifies the store in logs and errors.
	Name() string
	// Enumerate returns every item of the store.
	Enumerate(ctx context.Context) ([]T, error)
	// Search returns items matching q. Text matching is an exact substring
	// match; date ranges are inclusive.
	Search(ctx context.Context, q Query) ([]T, error)
}

// Query filters a find.
type Query struct {
	Text  string
	Start time.Time
	End   time.Time
}

// HasRange reports whether a date bound is set.
func (q Query) HasRange() bool {
	return !q.Start.IsZero() || !q.End.IsZero()
}

// Result is the merged outcome of a fan-out.
type Result[T any] struct {
	// Items holds matches in source order.
	Items []T
	// Fallback is true when Items came from the broadened search.
	Fallback bool
	// Failed names the sources that were skipped.
	Failed []string
}

// SourceError reports one failed store. It never escapes the aggregator except
// as part of a domain access error.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Aggregator merges reads across the sources of one domain.
type Aggregator[T any] struct {
	// Domain labels errors and log lines.
	Domain string
	// Fields returns the text fields the fallback search inspects.
	Fields func(T) []string
	Logger zerolog.Logger
}

// List enumerates every source.
func (a Aggregator[T]) List(ctx context.Context, sources []Source[T]) (Result[T], error) {
	return a.fanOut(ctx, sources, "enumerate", func(s Source[T]) ([]T, error) {
		return s.Enumerate(ctx)
	})
}

// Find searches every source with q. When q carries text and no date range and
// the strict pass matches nothing, Find enumerates every source once more and
// filters with MatchText.
func (a Aggregator[T]) Find(ctx context.Context, sources []Source[T], q Query) (Result[T], error) {
	strict, strictErr := a.fanOut(ctx, sources, "search", func(s Source[T]) ([]T, error) {
		return s.Search(ctx, q)
	})
	if len(strict.Items) > 0 || q.HasRange() || strings.TrimSpace(q.Text) == "" {
		return strict, strictErr
	}

	a.Logger.Debug().Str("domain", a.Domain).Str("text", q.Text).Msg("strict search empty, broadening")
	broad, broadErr := a.fanOut(ctx, sources, "enumerate", func(s Source[T]) ([]T, error) {
		return s.Enumerate(ctx)
	})
	if broadErr != nil && strictErr != nil {
		return Result[T]{Failed: broad.Failed}, broadErr
	}

	res := Result[T]{Fallback: true, Failed: broad.Failed}
	for _, item := range broad.Items {
		if MatchText(q.Text, a.fields(item)...) {
			res.Items = append(res.Items, item)
		}
	}
	return res, nil
}

func (a Aggregator[T]) fields(item T) []string {
	if a.Fields == nil {
		return nil
	}
	return a.Fields(item)
}

func (a Aggregator[T]) fanOut(ctx context.Context, sources []Source[T], op string, read func(Source[T]) ([]T, error)) (Result[T], error) {
	var (
		res  Result[T]
		errs []error
	)
	for _, src := range sources {
		items, err := read(src)
		if err != nil {
			a.Logger.Warn().Err(err).Str("domain", a.Domain).Str("source", src.Name()).Str("op", op).Msg("skipping source")
			res.Failed = append(res.Failed, src.Name())
			errs = append(errs, &SourceError{Source: src.Name(), Err: err})
			continue
		}
		res.Items = append(res.Items, items...)
	}
	if len(sources) > 0 && len(errs) == len(sources) {
		return res, &fault.Error{
			Kind:    fault.KindDomainAccess,
			Domain:  a.Domain,
			Message: fmt.Sprintf("all %d sources failed", len(sources)),
			Err:     errors.Join(errs...),
		}
	}
	return res, nil
}

// MatchText reports whether needle occurs in any of fields, ignoring case. An
// empty needle matches nothing.
func MatchText(needle string, fields ...string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return false
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// ContainsText reports whether needle occurs verbatim in any of fields. It is
// the strict counterpart of MatchText.
func ContainsText(needle string, fields ...string) bool {
	if needle == "" {
		return false
	}
	for _, field := range fields {
		if strings.Contains(field, needle) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the interval [from, to] intersects [start, end].
// Zero bounds are open. A zero to is treated as equal to from.
func Overlaps(from time.Time, to time.Time, start time.Time, end time.Time) bool {
	if to.IsZero() {
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
