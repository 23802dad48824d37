package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// runFunc invokes the backend executable with the given arguments and
// extra environment, bounded by timeout, returning stdout. Tests swap
// this out; production uses execBackend.
type runFunc func(ctx context.Context, bin string, args []string, extraEnv []string, timeout time.Duration) ([]byte, error)

// execBackend runs the backend as a scoped subprocess. On timeout the
// process is killed and a timeout error is returned; on nonzero exit the
// error carries the process's stderr.
func execBackend(ctx context.Context, bin string, args []string, extraEnv []string, timeout time.Duration) ([]byte, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, bin, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	output, err := cmd.Output()

	if execCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s %s timed out after %s", bin, firstArg(args), timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if stderr == "" {
				stderr = exitErr.String()
			}
			return nil, fmt.Errorf("%s %s failed: %s", bin, firstArg(args), stderr)
		}
		return nil, fmt.Errorf("%s %s failed: %w", bin, firstArg(args), err)
	}

	return output, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
