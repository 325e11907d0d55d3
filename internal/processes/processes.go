package processes

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"syscall"

	"github.com/charmbracelet/log"
)

var placeholderRegex = regexp.MustCompile(`%([a-z_]+)%`)

// Starts a process with it's own process group so it outlives the picker.
//
// If discardLogs is true, it will also pipe the inputs and outputs of the process into /dev/null
//
// Returns the PID of the detached process as the first return value, and any error as the second. If there is an error, PID will be -1
func RunDetached(discardLogs bool, command ...string) (int, error) {
	if len(command) == 0 || command[0] == "" {
		return -1, errors.New("no command given")
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if discardLogs {
		devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			log.Warn("Could not open /dev/null for detaching process I/O", "err", err)
		} else {
			cmd.Stdin = devNull
			cmd.Stdout = devNull
			cmd.Stderr = devNull
			defer devNull.Close()
		}
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("error starting detached process: %w", err)
	}

	pid := cmd.Process.Pid
	// reap it in the background so it does not linger as a zombie
	go cmd.Wait()

	log.Debug("Detached process started", "pid", pid)
	return pid, nil
}

// ExpandPlaceholders replaces every %name% in command with values[name].
// Unknown placeholders are left untouched.
func ExpandPlaceholders(command string, values map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(command, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := values[name]; ok {
			return value
		}
		return match
	})
}

// RunPostCommand runs the user's post command through sh after a wallpaper was applied.
// An empty command is a no-op and returns -1.
func RunPostCommand(command string, wallpaper string, discardLogs bool) (int, error) {
	if command == "" {
		return -1, nil
	}

	expanded := ExpandPlaceholders(command, map[string]string{
		"wallpaper": wallpaper,
	})

	log.Info("Running post command", "command", expanded)
	return RunDetached(discardLogs, "sh", "-c", expanded)
}
