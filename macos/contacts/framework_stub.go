//go:build !darwin || !cgo

package contacts

import "github.com/spachava753/deskmcp/macos/bridge"

const nativeAvailable = false

type unsupported struct{}

func newNative() native {
	return unsupported{}
}

func (unsupported) authorization() (AuthStatus, error) {
	return "", bridge.ErrUnsupportedPlatform
}

func (unsupported) containers() ([]container, error) {
	return nil, bridge.ErrUnsupportedPlatform
}

func (unsupported) fetch(q fetchQuery) ([]person, error) {
	_ = q
	return nil, bridge.ErrUnsupportedPlatform
}
