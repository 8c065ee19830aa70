package contacts

import (
	"context"
	"fmt"

	"github.com/spachava753/deskmcp/macos/bridge"
)

// AuthStatus describes Contacts permission state for the current process.
type AuthStatus string

const (
	// AuthStatusNotDetermined indicates access has not been requested yet.
	AuthStatusNotDetermined AuthStatus = "not_determined"
	// AuthStatusRestricted indicates policy restrictions prevent access.
	AuthStatusRestricted AuthStatus = "restricted"
	// AuthStatusDenied indicates the user denied access.
	AuthStatusDenied AuthStatus = "denied"
	// AuthStatusAuthorized indicates Contacts access is granted.
	AuthStatusAuthorized AuthStatus = "authorized"
)

// ErrorCode classifies errors reported by Contacts.framework.
type ErrorCode string

const (
	// ErrorCodePermissionDenied indicates authorization is missing.
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	// ErrorCodeNotFound indicates a referenced container does not exist.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeReadOnly indicates a write was attempted.
	ErrorCodeReadOnly ErrorCode = "read_only"
	// ErrorCodeStore indicates a storage/backend failure.
	ErrorCodeStore ErrorCode = "store"
	// ErrorCodeUnknown indicates an unmapped error.
	ErrorCodeUnknown ErrorCode = "unknown"
)

// Error is a typed framework error.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("contacts: %s", e.Code)
	}
	return fmt.Sprintf("contacts: %s: %s", e.Code, e.Message)
}

type container struct {
	ID   string
	Name string
}

// fetchQuery selects people of one container. NameContains is a
// case-sensitive substring of the formatted full name. Limit <= 0 is
// unbounded.
type fetchQuery struct {
	ContainerID  string
	NameContains string
	Limit        int
}

type person struct {
	ID           string
	ContainerID  string
	Name         string
	Organization string
	Emails       []string
	Phones       []string
}

// native is the Contacts.framework surface the bridge is built on.
type native interface {
	authorization() (AuthStatus, error)
	containers() ([]container, error)
	fetch(q fetchQuery) ([]person, error)
}

// Framework is a read-only [bridge.Bridge] for the contacts domain backed by
// Contacts.framework. Every address book container (iCloud, Exchange, local)
// is its own store.
type Framework struct {
	native native
}

// NewBridge returns the contacts bridge for this build. Builds with cgo on
// Darwin use Contacts.framework; every other build uses fallback.
func NewBridge(fallback bridge.Bridge) bridge.Bridge {
	if !nativeAvailable {
		return fallback
	}
	return &Framework{native: newNative()}
}

func (f *Framework) checkDomain(domain bridge.Domain) error {
	if domain != bridge.DomainContacts {
		return fmt.Errorf("contacts: framework bridge cannot serve domain %q", domain)
	}
	return nil
}

// Probe checks authorization and reads one contact.
func (f *Framework) Probe(ctx context.Context, domain bridge.Domain) error {
	if err := f.checkDomain(domain); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	status, err := f.native.authorization()
	if err != nil {
		return err
	}
	if status != AuthStatusAuthorized {
		return &Error{Code: ErrorCodePermissionDenied, Message: "authorization status is " + string(status)}
	}
	containers, err := f.native.containers()
	if err != nil {
		return err
	}
	if len(containers) == 0 {
		return nil
	}
	_, err = f.native.fetch(fetchQuery{ContainerID: containers[0].ID, Limit: 1})
	return err
}

// Stores lists the address book containers.
func (f *Framework) Stores(ctx context.Context, domain bridge.Domain) ([]bridge.Handle, error) {
	if err := f.checkDomain(domain); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	containers, err := f.native.containers()
	if err != nil {
		return nil, err
	}
	handles := make([]bridge.Handle, 0, len(containers))
	for _, c := range containers {
		handles = append(handles, bridge.Handle{Domain: domain, ID: c.ID, Name: firstNonEmpty(c.Name, c.ID)})
	}
	return handles, nil
}

// ReadAll returns every contact of the container h.
func (f *Framework) ReadAll(ctx context.Context, h bridge.Handle) ([]bridge.Record, error) {
	return f.read(ctx, h, fetchQuery{ContainerID: h.ID})
}

// Search matches p.Text against contact names in the container h. Date ranges
// are not supported.
func (f *Framework) Search(ctx context.Context, h bridge.Handle, p bridge.Predicate) ([]bridge.Record, error) {
	if p.HasRange() {
		return nil, &Error{Code: ErrorCodeUnknown, Message: "contacts do not support date range search"}
	}
	return f.read(ctx, h, fetchQuery{ContainerID: h.ID, NameContains: p.Text})
}

// Insert is not supported.
func (f *Framework) Insert(ctx context.Context, h bridge.Handle, rec bridge.Record) (bridge.Record, error) {
	_, _, _ = ctx, h, rec
	return nil, &Error{Code: ErrorCodeReadOnly, Message: "contacts are read-only"}
}

// SetField is not supported.
func (f *Framework) SetField(ctx context.Context, h bridge.Handle, id string, field string, value any) (bool, error) {
	_, _, _, _, _ = ctx, h, id, field, value
	return false, &Error{Code: ErrorCodeReadOnly, Message: "contacts are read-only"}
}

func (f *Framework) read(ctx context.Context, h bridge.Handle, q fetchQuery) ([]bridge.Record, error) {
	if err := f.checkDomain(h.Domain); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	people, err := f.native.fetch(q)
	if err != nil {
		return nil, err
	}
	records := make([]bridge.Record, 0, len(people))
	for _, p := range people {
		records = append(records, bridge.Record{
			"id":           p.ID,
			"name":         p.Name,
			"organization": p.Organization,
			"container":    h.Name,
			"phones":       p.Phones,
			"emails":       p.Emails,
		})
	}
	return records, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
