package telemetry

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

const unknown = "unknown"

// gitTimeout bounds each git config lookup.
const gitTimeout = 2 * time.Second

// Globals is the user context attached to every event.
type Globals struct {
	UserShell      string
	GithubUsername string
	GitEmail       string
}

// CollectGlobals reads $SHELL and the github.user and user.email git
// settings. Anything unavailable is reported as "unknown".
func CollectGlobals(ctx context.Context) Globals {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = unknown
	}

	return Globals{
		UserShell:      shell,
		GithubUsername: gitConfig(ctx, "github.user"),
		GitEmail:       gitConfig(ctx, "user.email"),
	}
}

func gitConfig(ctx context.Context, key string) string {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "config", "get", key).Output()
	if err != nil {
		return unknown
	}

	value := strings.TrimSpace(string(out))
	if value == "" {
		return unknown
	}
	return value
}
