package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundworkhq/provision/internal/pipeline"
)

// Probe answers read-only questions about live host state. Every query maps
// transport failures to StatusUnknown rather than guessing; the engine treats
// unknown as unsatisfied, so the worst case is a redundant re-attempt.
type Probe struct {
	runner Runner
}

func NewProbe(runner Runner) *Probe {
	return &Probe{runner: runner}
}

func (p *Probe) check(ctx context.Context, command string) (pipeline.Status, error) {
	ok, err := p.runner.Test(ctx, command)
	if err != nil {
		return pipeline.StatusUnknown, err
	}
	if ok {
		return pipeline.StatusSatisfied, nil
	}
	return pipeline.StatusUnsatisfied, nil
}

func (p *Probe) PackageInstalled(ctx context.Context, name string) (pipeline.Status, error) {
	cmd := fmt.Sprintf(`dpkg-query -W -f='${Status}' %s 2>/dev/null | grep -q "install ok installed"`, name)
	return p.check(ctx, cmd)
}

func (p *Probe) ServiceActive(ctx context.Context, name string) (pipeline.Status, error) {
	return p.check(ctx, fmt.Sprintf("systemctl is-active --quiet %s", name))
}

func (p *Probe) FileExists(ctx context.Context, path string) (pipeline.Status, error) {
	return p.check(ctx, fmt.Sprintf("sudo test -f %s", path))
}

func (p *Probe) PathIsDirectory(ctx context.Context, path string) (pipeline.Status, error) {
	return p.check(ctx, fmt.Sprintf("sudo test -d %s", path))
}

func (p *Probe) CommandAvailable(ctx context.Context, name string) (pipeline.Status, error) {
	return p.check(ctx, fmt.Sprintf("command -v %s >/dev/null 2>&1", name))
}

// OSRelease returns the distribution ID and version from /etc/os-release,
// e.g. ("ubuntu", "24.04").
func (p *Probe) OSRelease(ctx context.Context) (string, string, error) {
	out, err := p.runner.Output(ctx, `. /etc/os-release && echo "$ID $VERSION_ID"`)
	if err != nil {
		return "", "", fmt.Errorf("failed to read os-release: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("unexpected os-release output: %q", out)
	}
	return fields[0], fields[1], nil
}
