package regolith

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshError is returned when the refresh command exits with a non-zero code.
type RefreshError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *RefreshError) Error() string {
	msg := fmt.Sprintf("refresh command %q exited with code %d", e.Command, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// CommandRefresher runs an external command and waits for it.
type CommandRefresher struct {
	Argv []string
}

func (r CommandRefresher) Refresh(ctx context.Context) error {
	if len(r.Argv) == 0 {
		return errors.New("no refresh command configured")
	}

	command := strings.Join(r.Argv, " ")
	log.Info("Running refresh command", "command", command)

	cmd := exec.CommandContext(ctx, r.Argv[0], r.Argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Error("Refresh command failed", "command", command, "code", exitErr.ExitCode())
			return &RefreshError{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
				Output:   strings.TrimSpace(string(output)),
			}
		}
		return fmt.Errorf("failed to run refresh command %q: %w", command, err)
	}

	log.Info("Refresh command finished", "command", command)
	return nil
}
