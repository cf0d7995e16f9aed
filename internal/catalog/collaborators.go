package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundworkhq/provision/internal/host"
)

// The step catalog talks to the host through four opaque capabilities:
// the package installer, the service manager, the application CLI and the
// config file writer. Each one is a thin wrapper over the command runner so
// tests can substitute a fake runner and observe the exact commands issued.

type Apt struct {
	runner host.Runner
}

func (a Apt) Update(ctx context.Context) error {
	return a.runner.Run(ctx, "sudo DEBIAN_FRONTEND=noninteractive apt-get update -q")
}

func (a Apt) Upgrade(ctx context.Context) error {
	return a.runner.Run(ctx, "sudo DEBIAN_FRONTEND=noninteractive apt-get upgrade -y -q")
}

func (a Apt) Install(ctx context.Context, packages ...string) error {
	cmd := "sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -q " + strings.Join(packages, " ")
	if err := a.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("apt install %s: %w", strings.Join(packages, " "), err)
	}
	return nil
}

type Systemd struct {
	runner host.Runner
}

func (s Systemd) Enable(ctx context.Context, service string) error {
	return s.runner.Run(ctx, fmt.Sprintf("sudo systemctl enable --now %s", service))
}

func (s Systemd) Restart(ctx context.Context, service string) error {
	return s.runner.Run(ctx, fmt.Sprintf("sudo systemctl restart %s", service))
}

func (s Systemd) Reload(ctx context.Context, service string) error {
	return s.runner.Run(ctx, fmt.Sprintf("sudo systemctl reload %s", service))
}

func (s Systemd) IsActive(ctx context.Context, service string) (bool, error) {
	return s.runner.Test(ctx, fmt.Sprintf("systemctl is-active --quiet %s", service))
}

// Occ invokes the application CLI as the web server user.
type Occ struct {
	runner  host.Runner
	webRoot string
}

func (o Occ) command(args ...string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}
	return fmt.Sprintf("sudo -u www-data php %s/occ %s", o.webRoot, strings.Join(quoted, " "))
}

func (o Occ) Run(ctx context.Context, args ...string) error {
	return o.runner.Run(ctx, o.command(args...))
}

func (o Occ) Output(ctx context.Context, args ...string) (string, error) {
	return o.runner.Output(ctx, o.command(args...))
}

// SetSystemConfig sets one config:system value. Extra occ flags (e.g.
// --type integer) go in flags.
func (o Occ) SetSystemConfig(ctx context.Context, key, value string, flags ...string) error {
	args := append([]string{"config:system:set", key}, flags...)
	args = append(args, "--value="+value)
	return o.Run(ctx, args...)
}

// Files writes rendered config content to the host. The write goes through a
// temp file and a rename so a half-written config never lands at the target
// path.
type Files struct {
	runner host.Runner
}

func (f Files) Write(ctx context.Context, target, content, owner, mode string) error {
	tmp := target + ".provision.tmp"
	heredoc := fmt.Sprintf("sudo tee %s >/dev/null << 'PROVISION_EOF'\n%s\nPROVISION_EOF", tmp, strings.TrimRight(content, "\n"))

	commands := []string{
		heredoc,
		fmt.Sprintf("sudo chmod %s %s", mode, tmp),
		fmt.Sprintf("sudo chown %s %s", owner, tmp),
		fmt.Sprintf("sudo mv -f %s %s", tmp, target),
	}
	for _, cmd := range commands {
		if err := f.runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}
	return nil
}

// shellQuote single-quotes a string for safe interpolation into a shell
// command line.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$`&|;<>(){}*?#~=%!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
