// Package notification raises a desktop notification when a long provisioning
// run finishes, so the operator does not have to watch the terminal.
package notification

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Notify is best-effort: provisioning never fails because the desktop has no
// notification daemon.
func Notify(title, message string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		return exec.Command("notify-send", title, message).Run()
	default:
		return fmt.Errorf("no notifier for %s", runtime.GOOS)
	}
}
