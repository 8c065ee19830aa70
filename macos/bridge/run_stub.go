//go:build !darwin

package bridge

import "context"

func runOSAScript(ctx context.Context, script string, args ...string) (string, error) {
	_, _, _ = ctx, script, args
	return "", ErrUnsupportedPlatform
}
