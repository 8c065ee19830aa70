package contacts

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/access"
	"github.com/spachava753/deskmcp/collection"
	"github.com/spachava753/deskmcp/macos/bridge"
)

const domain = bridge.DomainContacts

// Contact is one address book entry.
type Contact struct {
	ID           string   `record:"id"`
	Name         string   `record:"name"`
	Organization string   `record:"organization"`
	Phones       []string `record:"phones"`
	Emails       []string `record:"emails"`
	// Container names the address book container, when the backend reports it.
	Container string `record:"container"`
}

// Service implements contact lookups.
type Service struct {
	bridge bridge.Bridge
	gate   access.Checker
	logger zerolog.Logger
}

// New returns a Service.
func New(b bridge.Bridge, gate access.Checker, logger zerolog.Logger) *Service {
	return &Service{bridge: b, gate: gate, logger: logger.With().Str("domain", string(domain)).Logger()}
}

func (s *Service) aggregator() collection.Aggregator[Contact] {
	return collection.Aggregator[Contact]{
		Domain: string(domain),
		Fields: func(c Contact) []string {
			fields := append([]string{c.Name, c.Organization}, c.Emails...)
			return append(fields, c.Phones...)
		},
		Logger: s.logger,
	}
}

func (s *Service) sources(ctx context.Context) ([]collection.Source[Contact], error) {
	return collection.Open(ctx, s.bridge, domain, func(h bridge.Handle) collection.Source[Contact] {
		return collection.StoreSource[Contact]{Bridge: s.bridge, Handle: h, TextFields: []string{"name"}}
	})
}

// All returns every contact.
func (s *Service) All(ctx context.Context) ([]Contact, error) {
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

// Find returns contacts matching name.
func (s *Service) Find(ctx context.Context, name string) ([]Contact, error) {
	if err := s.gate.Check(ctx, domain); err != nil {
		return nil, err
	}
	sources, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.aggregator().Find(ctx, sources, collection.Query{Text: strings.TrimSpace(name)})
	return res.Items, err
}
