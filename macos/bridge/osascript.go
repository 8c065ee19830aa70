package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Runner executes a JXA script with positional arguments and returns its
// standard output.
type Runner func(ctx context.Context, script string, args ...string) (string, error)

// OSAScript is the osascript-backed [Bridge].
type OSAScript struct {
	run Runner
}

// NewOSAScript returns a bridge that runs scripts with run. A nil run uses the
// platform osascript binary.
func NewOSAScript(run Runner) *OSAScript {
	if run == nil {
		run = runOSAScript
	}
	return &OSAScript{run: run}
}

type request struct {
	Action    string         `json:"action"`
	Store     string         `json:"store,omitempty"`
	Predicate *predicateJSON `json:"predicate,omitempty"`
	Record    Record         `json:"record,omitempty"`
	ID        string         `json:"id,omitempty"`
	Field     string         `json:"field,omitempty"`
	Value     any            `json:"value,omitempty"`
}

type predicateJSON struct {
	Text   string   `json:"text"`
	Fields []string `json:"fields"`
	Start  string   `json:"start,omitempty"`
	End    string   `json:"end,omitempty"`
}

func (o *OSAScript) call(ctx context.Context, domain Domain, req request, out any) error {
	script, ok := scriptFor(domain)
	if !ok {
		return fmt.Errorf("bridge: no automation adapter for domain %q", domain)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("bridge: encoding %s request: %w", req.Action, err)
	}
	raw, err := o.run(ctx, script, string(payload))
	if err != nil {
		return fmt.Errorf("bridge: %s %s: %w", domain, req.Action, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("bridge: decoding %s %s output: %w", domain, req.Action, err)
	}
	return nil
}

// Probe implements [Bridge].
func (o *OSAScript) Probe(ctx context.Context, domain Domain) error {
	return o.call(ctx, domain, request{Action: "probe"}, nil)
}

// Stores implements [Bridge].
func (o *OSAScript) Stores(ctx context.Context, domain Domain) ([]Handle, error) {
	var rows []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := o.call(ctx, domain, request{Action: "stores"}, &rows); err != nil {
		return nil, err
	}
	handles := make([]Handle, 0, len(rows))
	for _, row := range rows {
		handles = append(handles, Handle{Domain: domain, ID: row.ID, Name: row.Name})
	}
	return handles, nil
}

// ReadAll implements [Bridge].
func (o *OSAScript) ReadAll(ctx context.Context, h Handle) ([]Record, error) {
	var records []Record
	err := o.call(ctx, h.Domain, request{Action: "readAll", Store: h.ID}, &records)
	return records, err
}

// Search implements [Bridge].
func (o *OSAScript) Search(ctx context.Context, h Handle, p Predicate) ([]Record, error) {
	pj := &predicateJSON{Text: p.Text, Fields: p.Fields}
	if !p.Start.IsZero() {
		pj.Start = p.Start.UTC().Format(time.RFC3339)
	}
	if !p.End.IsZero() {
		pj.End = p.End.UTC().Format(time.RFC3339)
	}
	var records []Record
	err := o.call(ctx, h.Domain, request{Action: "search", Store: h.ID, Predicate: pj}, &records)
	return records, err
}

// Insert implements [Bridge].
func (o *OSAScript) Insert(ctx context.Context, h Handle, rec Record) (Record, error) {
	var created Record
	if err := o.call(ctx, h.Domain, request{Action: "insert", Store: h.ID, Record: rec}, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// SetField implements [Bridge].
func (o *OSAScript) SetField(ctx context.Context, h Handle, id string, field string, value any) (bool, error) {
	var res struct {
		Updated bool `json:"updated"`
	}
	req := request{Action: "setField", Store: h.ID, ID: id, Field: field, Value: value}
	if err := o.call(ctx, h.Domain, req, &res); err != nil {
		return false, err
	}
	return res.Updated, nil
}
