package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/spachava753/deskmcp/fault"
)

// Kind is the primitive type of an argument.
type Kind string

const (
	// KindString is a non-empty string.
	KindString Kind = "string"
	// KindNumber is a non-negative finite number.
	KindNumber Kind = "number"
	// KindTime is an ISO-8601 date or timestamp string.
	KindTime Kind = "time"
	// KindEndTime is a KindTime closing an inclusive range. A bare date
	// stands for the last instant of that day.
	KindEndTime Kind = "end_time"
)

// Field declares one argument of an operation.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Description string
	// Max bounds a KindNumber field when positive.
	Max float64
}

// Args is the raw argument object of a tool call.
type Args map[string]any

// Values holds validated arguments: string, float64, or time.Time, keyed by
// field name. Absent optional fields are not present.
type Values map[string]any

// timeLayouts are tried in order. Layouts without a zone are read in local
// time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime parses an ISO-8601 timestamp or date.
func ParseTime(s string) (time.Time, error) {
	t, _, err := ParseDate(s)
	return t, err
}

// ParseDate is ParseTime that also reports whether s carried only a date.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, layout == time.DateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%q is not an ISO-8601 date", s)
}

// EndOfDay returns the last instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// Validate checks args against fields and returns the typed values. Every
// required field must be present; present fields must have the declared kind.
// Arguments not named by fields are ignored.
func Validate(fields []Field, args Args) (Values, error) {
	values := make(Values, len(fields))
	for _, f := range fields {
		raw, ok := args[f.Name]
		if ok && raw == nil {
			ok = false
		}
		if s, isString := raw.(string); ok && isString && strings.TrimSpace(s) == "" {
			ok = false
		}
		if !ok {
			if f.Required {
				return nil, fault.Validation(f.Name, "missing required argument %q", f.Name)
			}
			continue
		}
		v, err := convert(f, raw)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}
	return values, nil
}

func convert(f Field, raw any) (any, error) {
	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fault.Validation(f.Name, "argument %q must be a string, got %T", f.Name, raw)
		}
		return strings.TrimSpace(s), nil
	case KindNumber:
		n, ok := number(raw)
		if !ok {
			return nil, fault.Validation(f.Name, "argument %q must be a number, got %T", f.Name, raw)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return nil, fault.Validation(f.Name, "argument %q must be a non-negative number", f.Name)
		}
		if f.Max > 0 && n > f.Max {
			return nil, fault.Validation(f.Name, "argument %q must be at most %v", f.Name, f.Max)
		}
		return n, nil
	case KindTime, KindEndTime:
		s, ok := raw.(string)
		if !ok {
			return nil, fault.Validation(f.Name, "argument %q must be an ISO-8601 string, got %T", f.Name, raw)
		}
		t, dateOnly, err := ParseDate(s)
		if err != nil {
			return nil, fault.Validation(f.Name, "argument %q: %v", f.Name, err)
		}
		if dateOnly && f.Kind == KindEndTime {
			t = EndOfDay(t)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("tools: field %q has unknown kind %q", f.Name, f.Kind)
	}
}

func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// decode copies validated values into the `arg`-tagged fields of out.
func decode(values Values, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "arg",
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(values)); err != nil {
		return fmt.Errorf("tools: decoding arguments: %w", err)
	}
	return nil
}
