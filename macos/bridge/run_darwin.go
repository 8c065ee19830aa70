//go:build darwin

package bridge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func runOSAScript(ctx context.Context, script string, args ...string) (string, error) {
	cmdArgs := make([]string, 0, 4+len(args))
	cmdArgs = append(cmdArgs, "-l", "JavaScript", "-e", script)
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "/usr/bin/osascript", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
