package host

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Runner executes shell commands on the target machine. The SSH client and
// the local runner both implement it, so step actions and probes never care
// where the host actually is.
type Runner interface {
	// Run executes a command and fails on non-zero exit.
	Run(ctx context.Context, command string) error

	// Output executes a command and returns its stdout.
	Output(ctx context.Context, command string) (string, error)

	// Test executes a command and maps its exit status to a boolean. The
	// returned error is non-nil only when the command could not be executed
	// at all (transport failure), never for a plain non-zero exit.
	Test(ctx context.Context, command string) (bool, error)

	Close() error
}

// LocalRunner runs commands on the machine the tool itself runs on.
type LocalRunner struct {
	Verbose bool
}

func NewLocalRunner(verbose bool) *LocalRunner {
	return &LocalRunner{Verbose: verbose}
}

func (l *LocalRunner) Run(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)

	if l.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v: %s", err, lastLines(buf.String()))
	}
	return nil
}

func (l *LocalRunner) Output(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to execute command: %v", err)
	}
	return string(out), nil
}

func (l *LocalRunner) Test(ctx context.Context, command string) (bool, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, err
}

func (l *LocalRunner) Close() error {
	return nil
}

// lastLines trims long command output down to what is useful in an error
// message.
func lastLines(s string) string {
	const max = 400
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
