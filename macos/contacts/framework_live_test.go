//go:build darwin && cgo

package contacts

import (
	"context"
	"os"
	"testing"

	"github.com/nalgeon/be"

	"github.com/spachava753/deskmcp/macos/bridge"
)

const liveTestFlagEnv = "DESKMCP_LIVE_TEST"

func TestLiveFrameworkContainers(t *testing.T) {
	if os.Getenv(liveTestFlagEnv) != "1" {
		t.Skipf("set %s=1 to run live Contacts integration tests", liveTestFlagEnv)
	}
	ctx := context.Background()
	f := &Framework{native: newNative()}

	if err := f.Probe(ctx, bridge.DomainContacts); err != nil {
		t.Skipf("contacts permission is required: %v", err)
	}

	handles, err := f.Stores(ctx, bridge.DomainContacts)
	be.Err(t, err, nil)
	for _, h := range handles {
		records, err := f.ReadAll(ctx, h)
		be.Err(t, err, nil)
		for _, rec := range records {
			be.True(t, rec.ID() != "")
		}
	}
}
