// Package access implements the per-domain capability gate.
//
// macOS offers no API to ask whether automation of another application is
// permitted, so the gate probes instead: a cheap read against the domain's
// application. A failed probe is a denial, reported with the System Settings
// path the user has to visit. Results are never cached because permission can
// be granted while the server is running.
package access

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
)

// Prober performs a read-only probe against a domain.
type Prober interface {
	Probe(ctx context.Context, domain bridge.Domain) error
}

// ProberFunc adapts a function to [Prober].
type ProberFunc func(ctx context.Context, domain bridge.Domain) error

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, domain bridge.Domain) error {
	return f(ctx, domain)
}

// Checker is the contract consumed by domain services.
type Checker interface {
	Check(ctx context.Context, domain bridge.Domain) error
}

var settingsPaths = map[bridge.Domain]string{
	bridge.DomainContacts:  "System Settings > Privacy & Security > Contacts",
	bridge.DomainNotes:     "System Settings > Privacy & Security > Automation (allow control of Notes)",
	bridge.DomainMessages:  "System Settings > Privacy & Security > Full Disk Access",
	bridge.DomainReminders: "System Settings > Privacy & Security > Reminders",
	bridge.DomainCalendar:  "System Settings > Privacy & Security > Calendars",
}

// SettingsPath returns the privacy setting that grants access to domain.
func SettingsPath(domain bridge.Domain) string {
	return settingsPaths[domain]
}

// Gate checks domain access through a Prober.
type Gate struct {
	prober Prober
	logger zerolog.Logger
}

// NewGate returns a gate backed by prober.
func NewGate(prober Prober, logger zerolog.Logger) *Gate {
	return &Gate{prober: prober, logger: logger.With().Str("component", "access").Logger()}
}

// Check returns nil when domain is accessible and a fault.KindAccessDenied
// error otherwise. It never reports partial access.
func (g *Gate) Check(ctx context.Context, domain bridge.Domain) error {
	if !domain.Valid() {
		return &fault.Error{Kind: fault.KindAccessDenied, Domain: string(domain), Message: "unknown domain"}
	}
	if err := g.prober.Probe(ctx, domain); err != nil {
		g.logger.Debug().Err(err).Str("domain", string(domain)).Msg("probe failed")
		msg := fmt.Sprintf("cannot access %s. Grant access in %s, then try again", appName(domain), SettingsPath(domain))
		return &fault.Error{Kind: fault.KindAccessDenied, Domain: string(domain), Message: msg, Err: err}
	}
	return nil
}

func appName(domain bridge.Domain) string {
	switch domain {
	case bridge.DomainContacts:
		return "Contacts"
	case bridge.DomainNotes:
		return "Notes"
	case bridge.DomainMessages:
		return "Messages"
	case bridge.DomainReminders:
		return "Reminders"
	case bridge.DomainCalendar:
		return "Calendar"
	default:
		return string(domain)
	}
}

// Router sends probes for some domains to dedicated probers and the rest to a
// fallback.
type Router struct {
	Default Prober
	Routes  map[bridge.Domain]Prober
}

// Probe implements [Prober].
func (r Router) Probe(ctx context.Context, domain bridge.Domain) error {
	if p, ok := r.Routes[domain]; ok {
		return p.Probe(ctx, domain)
	}
	if r.Default == nil {
		return fmt.Errorf("access: no prober for %s", domain)
	}
	return r.Default.Probe(ctx, domain)
}
