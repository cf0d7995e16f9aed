// Package catalog defines the ordered provisioning steps for the groupware
// stack profile: Apache, PHP, MariaDB and the application itself on a single
// Ubuntu host.
package catalog

import (
	"log/slog"

	"github.com/groundworkhq/provision/internal/host"
	"github.com/groundworkhq/provision/internal/pipeline"
	"github.com/groundworkhq/provision/internal/types"
)

// Deps carries the immutable run configuration and the host collaborators
// into the step closures. Credentials are resolved before assembly so every
// step sees the same values.
type Deps struct {
	Config *types.Config
	Runner host.Runner
	Probe  *host.Probe
	Logger *slog.Logger

	AdminPassword    string
	DatabasePassword string
}

func (d Deps) apt() Apt         { return Apt{runner: d.Runner} }
func (d Deps) systemd() Systemd { return Systemd{runner: d.Runner} }
func (d Deps) files() Files     { return Files{runner: d.Runner} }
func (d Deps) occ() Occ         { return Occ{runner: d.Runner, webRoot: d.Config.WebRoot} }

// Steps assembles the fixed, ordered step list. Pure data assembly, no I/O:
// ordering is the dependency encoding, so the system update precedes the
// installs, the installs precede configuration templating, the database
// exists before the application installer runs, and tuning follows the
// install.
func Steps(deps Deps) []pipeline.Step {
	return []pipeline.Step{
		checkConnectivity(deps),
		checkOSRelease(deps),
		updateSystem(deps),
		installWebServer(deps),
		installRuntime(deps),
		tuneRuntime(deps),
		installDatabase(deps),
		createDatabase(deps),
		downloadApplication(deps),
		createDataDirectory(deps),
		installApplication(deps),
		configureWebServer(deps),
		configureTrustedDomains(deps),
		scheduleBackgroundJobs(deps),
		tuneApplication(deps),
		enableExtraApps(deps),
		issueTLSCertificate(deps),
		verifyInstallation(deps),
	}
}
