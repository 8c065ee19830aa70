package bridge

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ErrUnsupportedPlatform is returned when the automation runtime is unavailable
// on the current OS.
var ErrUnsupportedPlatform = errors.New("bridge: unsupported platform")

// Domain is one of the supported application categories.
type Domain string

const (
	// DomainContacts is the Contacts.app address book.
	DomainContacts Domain = "contacts"
	// DomainNotes is Notes.app.
	DomainNotes Domain = "notes"
	// DomainMessages is Messages.app and its chat database.
	DomainMessages Domain = "messages"
	// DomainReminders is Reminders.app.
	DomainReminders Domain = "reminders"
	// DomainCalendar is Calendar.app.
	DomainCalendar Domain = "calendar"
)

// Domains lists every supported domain in a stable order.
func Domains() []Domain {
	return []Domain{DomainContacts, DomainNotes, DomainMessages, DomainReminders, DomainCalendar}
}

// Valid reports whether d is a member of the closed domain set.
func (d Domain) Valid() bool {
	for _, known := range Domains() {
		if d == known {
			return true
		}
	}
	return false
}

// Handle addresses one backing store: a reminder list, a calendar, a notes
// folder, or an address book container. Handles are only valid for the call
// that obtained them.
type Handle struct {
	Domain Domain
	ID     string
	Name   string
}

// Record is one item as exchanged with the automation runtime.
type Record map[string]any

// ID returns the record's "id" field as a string.
func (r Record) ID() string {
	if v, ok := r["id"].(string); ok {
		return v
	}
	return ""
}

// Predicate narrows a store search.
//
// Text is matched as a substring against Fields. When Start or End is set the
// store filters by date intersection only and Text is left to the caller.
type Predicate struct {
	Text   string
	Fields []string
	Start  time.Time
	End    time.Time
}

// HasRange reports whether a date bound is set.
func (p Predicate) HasRange() bool {
	return !p.Start.IsZero() || !p.End.IsZero()
}

// Bridge is the capability surface consumed by collection sources.
type Bridge interface {
	// Probe performs a cheap read against the domain's application. Any error
	// means access is not granted.
	Probe(ctx context.Context, domain Domain) error
	// Stores lists the backing stores of a domain.
	Stores(ctx context.Context, domain Domain) ([]Handle, error)
	// ReadAll returns every item of a store.
	ReadAll(ctx context.Context, h Handle) ([]Record, error)
	// Search returns items of a store matching p.
	Search(ctx context.Context, h Handle, p Predicate) ([]Record, error)
	// Insert creates an item and returns it as stored.
	Insert(ctx context.Context, h Handle, rec Record) (Record, error)
	// SetField updates one field of an item. It reports false when the id is
	// not present in the store.
	SetField(ctx context.Context, h Handle, id string, field string, value any) (bool, error)
}

// Decode converts a record into the struct pointed to by out. Struct fields are
// matched by their `record` tag; ISO-8601 strings decode into time.Time.
func Decode(rec Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "record",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			emptyStringToZeroTime,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("bridge: building decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return fmt.Errorf("bridge: decoding record %q: %w", rec.ID(), err)
	}
	return nil
}

// DecodeAll decodes a slice of records into items of type T.
func DecodeAll[T any](records []Record) ([]T, error) {
	items := make([]T, 0, len(records))
	for _, rec := range records {
		var item T
		if err := Decode(rec, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FormatTime renders t the way records carry timestamps. Zero times become nil.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

var timeType = reflect.TypeOf(time.Time{})

func emptyStringToZeroTime(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	if data.(string) == "" {
		return time.Time{}, nil
	}
	return data, nil
}
