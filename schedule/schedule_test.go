package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/rs/zerolog"
)

func TestOnceNext(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	o := once{at: at}
	be.Equal(t, o.Next(at.Add(-time.Minute)), at)
	be.True(t, o.Next(at).IsZero())
	be.True(t, o.Next(at.Add(time.Second)).IsZero())
}

func TestAtFiresOnce(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop()

	fired := make(chan struct{}, 2)
	entry, err := s.At(time.Now().Add(50*time.Millisecond), "test", func(ctx context.Context) {
		fired <- struct{}{}
	})
	be.Err(t, err, nil)
	be.True(t, entry.ID != "")
	be.Equal(t, len(s.Pending()), 1)

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}

	select {
	case <-fired:
		t.Fatal("job fired twice")
	case <-time.After(200 * time.Millisecond):
	}
	be.Equal(t, len(s.Pending()), 0)
}

func TestAtRejectsPast(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop()

	_, err := s.At(time.Now().Add(-time.Minute), "late", func(ctx context.Context) {})
	be.True(t, errors.Is(err, ErrPast))
}

func TestCancel(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop()

	fired := make(chan struct{}, 1)
	entry, err := s.At(time.Now().Add(100*time.Millisecond), "cancelled", func(ctx context.Context) {
		fired <- struct{}{}
	})
	be.Err(t, err, nil)
	be.Err(t, s.Cancel(entry.ID), nil)
	be.True(t, errors.Is(s.Cancel(entry.ID), ErrUnknownEntry))

	select {
	case <-fired:
		t.Fatal("cancelled job fired")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPendingOrder(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop()

	later, err := s.At(time.Now().Add(time.Hour), "later", func(ctx context.Context) {})
	be.Err(t, err, nil)
	sooner, err := s.At(time.Now().Add(time.Minute), "sooner", func(ctx context.Context) {})
	be.Err(t, err, nil)

	pending := s.Pending()
	be.Equal(t, len(pending), 2)
	be.Equal(t, pending[0].ID, sooner.ID)
	be.Equal(t, pending[1].ID, later.ID)
}
