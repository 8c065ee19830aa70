package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nalgeon/be"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{Kind: KindNotFound, Domain: "reminders", Message: `reminder "x" not found`}
	be.Equal(t, err.Error(), `reminders: reminder "x" not found`)

	err = &Error{Kind: KindCreateFailed, Message: "insert rejected", Err: errors.New("boom")}
	be.Equal(t, err.Error(), "insert rejected: boom")

	err = &Error{Kind: KindDomainAccess}
	be.Equal(t, err.Error(), "domain_access")
}

func TestKindOfLooksThroughWrapping(t *testing.T) {
	base := Validation("title", "title is required")
	wrapped := fmt.Errorf("routing: %w", base)

	be.Equal(t, KindOf(wrapped), KindValidation)
	be.True(t, Is(wrapped, KindValidation))
	be.Equal(t, KindOf(errors.New("plain")), KindUnknown)
	be.Equal(t, KindOf(nil), Kind(""))
}

func TestWrapNil(t *testing.T) {
	be.Err(t, Wrap(nil, KindCreateFailed, "notes", "create"), nil)

	cause := errors.New("osascript exited 1")
	err := Wrap(cause, KindCreateFailed, "notes", "create note failed")
	be.True(t, errors.Is(err, cause))
	be.Equal(t, KindOf(err), KindCreateFailed)
}
