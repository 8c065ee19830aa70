// Package notes reads and creates Notes.app notes through the automation
// bridge. Every folder is a store.
package notes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/collection"
	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
)

const domain = bridge.DomainNotes

var textFields = []string{"title", "body"}

// Note is one note.
type Note struct {
	ID         string    `record:"id"`
	Title      string    `record:"title"`
	Body       string    `record:"body"`
	Folder     string    `record:"folder"`
	ModifiedAt time.Time `record:"modifiedAt"`
}

// Draft is the create model.
type Draft struct {
	Title  string
	Body   string
	Folder string
}

// Service implements the notes operations.
type Service struct {
	bridge        bridge.Bridge
	gate          access.Checker
	defaultFolder string
	logger        zerolog.Logger
}

// New returns a Service that creates notes in defaultFolder unless a draft
// names another folder.
func New(b bridge.Bridge, gate access.Checker, defaultFolder string, logger zerolog.Logger) *Service {
	return &Service{
		bridge:        b,
		gate:          gate,
		defaultFolder: strings.TrimSpace(defaultFolder),
		logger:        logger.With().Str("domain", string(domain)).Logger(),
	}
}

func (s *Service) aggregator() collection.Aggregator[Note] {
	return collection.Aggregator[Note]{
		Domain: string(domain),
		Fields: func(n Note) []string { return []string{n.Title, n.Body} },
		Logger: s.logger,
	}
}

func (s *Service) sources(ctx context.Context) ([]collection.Source[Note], error) {
	return collection.Open(ctx, s.bridge, domain, func(h bridge.Handle) collection.Source[Note] {
		return collection.StoreSource[Note]{Bridge: s.bridge, Handle: h, TextFields: textFields}
	})
}

// All returns every note in every folder.
func (s *Service) All(ctx context.Context) ([]Note, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().List(ctx, sources)
	return res.Items, err
}

// Find returns notes whose title or body contains text.
func (s *Service) Find(ctx context.Context, text string) ([]Note, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().Find(ctx, sources, collection.Query{Text: text})
	return res.Items, err
}

// Create writes a note. An explicitly named folder must exist; the default
// folder falls back to the first folder when missing.
func (s *Service) Create(ctx context.Context, d Draft) (Note, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return Note{}, err
	}
	handles, err := s.bridge.Stores(ctx, domain)
	if err != nil {
		return Note{}, fault.Wrap(err, fault.KindDomainAccess, string(domain), "listing folders failed")
	}
	if len(handles) == 0 {
		return Note{}, &fault.Error{Kind: fault.KindCreateFailed, Domain: string(domain), Message: "no folders available"}
	}

	target := handles[0]
	if name := strings.TrimSpace(d.Folder); name != "" {
		h, ok := byName(handles, name)
		if !ok {
			return Note{}, fault.NotFound(string(domain), "folder %q not found", name)
		}
		target = h
	} else if h, ok := byName(handles, s.defaultFolder); ok {
		target = h
	}

	created, err := s.bridge.Insert(ctx, target, bridge.Record{"title": d.Title, "body": d.Body})
	if err != nil {
		return Note{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), fmt.Sprintf("creating note in %q failed", target.Name))
	}
	var out Note
	if err := bridge.Decode(created, &out); err != nil {
		return Note{}, fault.Wrap(err, fault.KindCreateFailed, string(domain), "reading created note failed")
	}
	if out.Folder == "" {
		out.Folder = target.Name
	}
	return out, nil
}

func byName(handles []bridge.Handle, name string) (bridge.Handle, bool) {
	if name == "" {
		return bridge.Handle{}, false
	}
	for _, h := range handles {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return bridge.Handle{}, false
}
