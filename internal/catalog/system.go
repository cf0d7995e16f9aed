package catalog

import (
	"context"
	"fmt"

	"github.com/groundworkhq/provision/internal/pipeline"
)

var supportedUbuntuVersions = map[string]bool{
	"22.04": true,
	"24.04": true,
}

// checkConnectivity aborts the run before any mutating step when the host
// cannot reach the package mirrors. No precondition: it runs every time.
func checkConnectivity(deps Deps) pipeline.Step {
	return pipeline.Step{
		Name: "check-connectivity",
		Action: func(ctx context.Context) error {
			cmd := "getent hosts archive.ubuntu.com >/dev/null && timeout 15 bash -c 'exec 3<>/dev/tcp/archive.ubuntu.com/80' 2>/dev/null"
			if err := deps.Runner.Run(ctx, cmd); err != nil {
				return fmt.Errorf("no network reachability to package mirrors: %w", err)
			}
			return nil
		},
	}
}

// checkOSRelease warns on unsupported distributions but never fails the run.
func checkOSRelease(deps Deps) pipeline.Step {
	return pipeline.Step{
		Name: "check-os-release",
		Action: func(ctx context.Context) error {
			id, version, err := deps.Probe.OSRelease(ctx)
			if err != nil {
				deps.Logger.Warn("could not determine OS release, continuing", "error", err)
				return nil
			}
			if id != "ubuntu" || !supportedUbuntuVersions[version] {
				deps.Logger.Warn("unsupported OS release, continuing anyway",
					"id", id, "version", version)
			}
			return nil
		},
	}
}

func updateSystem(deps Deps) pipeline.Step {
	apt := deps.apt()
	return pipeline.Step{
		Name: "update-system",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			// Skip when the apt lists were refreshed within the last hour.
			cmd := `test -n "$(find /var/lib/apt/lists -maxdepth 1 -mmin -60 2>/dev/null | head -1)"`
			ok, err := deps.Runner.Test(ctx, cmd)
			if err != nil {
				return pipeline.StatusUnknown, err
			}
			if ok {
				return pipeline.StatusSatisfied, nil
			}
			return pipeline.StatusUnsatisfied, nil
		},
		Action: func(ctx context.Context) error {
			if err := apt.Update(ctx); err != nil {
				return err
			}
			if err := apt.Upgrade(ctx); err != nil {
				return err
			}
			return apt.Install(ctx, "curl", "wget", "ca-certificates", "bzip2", "unzip", "cron")
		},
	}
}
