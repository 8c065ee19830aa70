package access

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/macos/bridge"
	"github.com/spachava753/deskmcp/macos/bridge/bridgetest"
)

func TestCheckGranted(t *testing.T) {
	b := bridgetest.New()
	g := NewGate(b, zerolog.Nop())
	be.Err(t, g.Check(context.Background(), bridge.DomainReminders), nil)
}

func TestCheckDeniedNamesSettingsPath(t *testing.T) {
	for _, domain := range bridge.Domains() {
		t.Run(string(domain), func(t *testing.T) {
			b := bridgetest.New()
			b.DenyProbe(domain, errors.New("not authorized (-1743)"))
			g := NewGate(b, zerolog.Nop())

			err := g.Check(context.Background(), domain)
			be.True(t, fault.Is(err, fault.KindAccessDenied))
			be.True(t, strings.Contains(err.Error(), SettingsPath(domain)))
			be.True(t, SettingsPath(domain) != "")
		})
	}
}

func TestCheckIsNotCached(t *testing.T) {
	denied := true
	g := NewGate(ProberFunc(func(ctx context.Context, domain bridge.Domain) error {
		if denied {
			return errors.New("denied")
		}
		return nil
	}), zerolog.Nop())

	be.True(t, g.Check(context.Background(), bridge.DomainCalendar) != nil)
	denied = false
	be.Err(t, g.Check(context.Background(), bridge.DomainCalendar), nil)
}

func TestCheckUnknownDomain(t *testing.T) {
	g := NewGate(bridgetest.New(), zerolog.Nop())
	err := g.Check(context.Background(), bridge.Domain("mail"))
	be.True(t, fault.Is(err, fault.KindAccessDenied))
}

func TestRouter(t *testing.T) {
	var routed []string
	r := Router{
		Default: ProberFunc(func(ctx context.Context, d bridge.Domain) error {
			routed = append(routed, "default:"+string(d))
			return nil
		}),
		Routes: map[bridge.Domain]Prober{
			bridge.DomainMessages: ProberFunc(func(ctx context.Context, d bridge.Domain) error {
				routed = append(routed, "messages")
				return errors.New("chat.db unreadable")
			}),
		},
	}

	be.Err(t, r.Probe(context.Background(), bridge.DomainNotes), nil)
	be.True(t, r.Probe(context.Background(), bridge.DomainMessages) != nil)
	be.Equal(t, routed, []string{"default:notes", "messages"})

	be.True(t, Router{}.Probe(context.Background(), bridge.DomainNotes) != nil)
}
