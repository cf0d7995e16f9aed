package catalog

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/groundworkhq/provision/internal/pipeline"
	"github.com/groundworkhq/provision/internal/render"
)

func releaseURL(version string) string {
	if version == "" {
		return "https://download.nextcloud.com/server/releases/latest.tar.bz2"
	}
	return fmt.Sprintf("https://download.nextcloud.com/server/releases/nextcloud-%s.tar.bz2", version)
}

func downloadApplication(deps Deps) pipeline.Step {
	cfg := deps.Config
	return pipeline.Step{
		Name: "download-application",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.PathIsDirectory(ctx, cfg.WebRoot)
		},
		Action: func(ctx context.Context) error {
			parent := path.Dir(cfg.WebRoot)
			commands := []string{
				fmt.Sprintf("curl -fsSL -o /tmp/nextcloud.tar.bz2 %s", releaseURL(cfg.App.Version)),
				fmt.Sprintf("sudo mkdir -p %s", parent),
				fmt.Sprintf("sudo tar -xjf /tmp/nextcloud.tar.bz2 -C %s", parent),
			}
			if extracted := path.Join(parent, "nextcloud"); extracted != cfg.WebRoot {
				commands = append(commands, fmt.Sprintf("sudo mv %s %s", extracted, cfg.WebRoot))
			}
			commands = append(commands,
				fmt.Sprintf("sudo chown -R www-data:www-data %s", cfg.WebRoot),
				"rm -f /tmp/nextcloud.tar.bz2",
			)
			for _, cmd := range commands {
				if err := deps.Runner.Run(ctx, cmd); err != nil {
					return fmt.Errorf("downloading application: %w", err)
				}
			}
			return nil
		},
	}
}

func createDataDirectory(deps Deps) pipeline.Step {
	dataDir := deps.Config.DataDir
	return pipeline.Step{
		Name: "create-data-directory",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.PathIsDirectory(ctx, dataDir)
		},
		Action: func(ctx context.Context) error {
			commands := []string{
				fmt.Sprintf("sudo mkdir -p %s", dataDir),
				fmt.Sprintf("sudo chown www-data:www-data %s", dataDir),
				fmt.Sprintf("sudo chmod 0750 %s", dataDir),
			}
			for _, cmd := range commands {
				if err := deps.Runner.Run(ctx, cmd); err != nil {
					return fmt.Errorf("creating data directory: %w", err)
				}
			}
			return nil
		},
	}
}

func installApplication(deps Deps) pipeline.Step {
	cfg := deps.Config
	occ := deps.occ()
	return pipeline.Step{
		Name: "install-application",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.FileExists(ctx, path.Join(cfg.WebRoot, "config", "config.php"))
		},
		Action: func(ctx context.Context) error {
			return occ.Run(ctx,
				"maintenance:install",
				"--database", "mysql",
				"--database-name", cfg.Database.Name,
				"--database-user", cfg.Database.User,
				"--database-pass", deps.DatabasePassword,
				"--data-dir", cfg.DataDir,
				"--admin-user", cfg.Admin.User,
				"--admin-pass", deps.AdminPassword,
			)
		},
	}
}

func vhostPath(domain string) string {
	return fmt.Sprintf("/etc/apache2/sites-available/%s.conf", domain)
}

func configureWebServer(deps Deps) pipeline.Step {
	cfg := deps.Config
	files := deps.files()
	systemd := deps.systemd()
	target := vhostPath(cfg.Domain)
	return pipeline.Step{
		Name: "configure-web-server",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.FileExists(ctx, target)
		},
		Action: func(ctx context.Context) error {
			content, err := render.File("vhost.conf.tmpl", map[string]string{
				"Domain":  cfg.Domain,
				"WebRoot": cfg.WebRoot,
			})
			if err != nil {
				return err
			}
			if err := files.Write(ctx, target, content, "root:root", "0644"); err != nil {
				return err
			}
			commands := []string{
				fmt.Sprintf("sudo a2ensite %s.conf", cfg.Domain),
				"sudo a2dissite 000-default.conf || true",
				"sudo apachectl configtest",
			}
			for _, cmd := range commands {
				if err := deps.Runner.Run(ctx, cmd); err != nil {
					return fmt.Errorf("configuring web server: %w", err)
				}
			}
			return systemd.Reload(ctx, "apache2")
		},
	}
}

func configureTrustedDomains(deps Deps) pipeline.Step {
	cfg := deps.Config
	occ := deps.occ()
	return pipeline.Step{
		Name: "configure-trusted-domains",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			cmd := fmt.Sprintf("%s | grep -q %s",
				occ.command("config:system:get", "trusted_domains"), cfg.Domain)
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
			for i, domain := range cfg.AllTrustedDomains() {
				if err := occ.Run(ctx, "config:system:set", "trusted_domains", strconv.Itoa(i), "--value="+domain); err != nil {
					return fmt.Errorf("setting trusted domain %s: %w", domain, err)
				}
			}
			if err := occ.SetSystemConfig(ctx, "loglevel", strconv.Itoa(cfg.App.LogLevel), "--type=integer"); err != nil {
				return err
			}
			if err := occ.SetSystemConfig(ctx, "default_locale", cfg.App.Locale); err != nil {
				return err
			}
			if cfg.App.PhoneRegion != "" {
				if err := occ.SetSystemConfig(ctx, "default_phone_region", cfg.App.PhoneRegion); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func scheduleBackgroundJobs(deps Deps) pipeline.Step {
	cfg := deps.Config
	occ := deps.occ()
	return pipeline.Step{
		Name: "schedule-background-jobs",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			cmd := "sudo crontab -u www-data -l 2>/dev/null | grep -q cron.php"
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
			entry := fmt.Sprintf("*/5 * * * * php -f %s/cron.php", cfg.WebRoot)
			// sort -u keeps the entry unique across re-runs.
			cmd := fmt.Sprintf(`( sudo crontab -u www-data -l 2>/dev/null ; echo "%s" ) | sort -u | sudo crontab -u www-data -`, entry)
			if err := deps.Runner.Run(ctx, cmd); err != nil {
				return fmt.Errorf("installing cron entry: %w", err)
			}
			return occ.Run(ctx, "background:cron")
		},
	}
}

func tuneApplication(deps Deps) pipeline.Step {
	occ := deps.occ()
	return pipeline.Step{
		Name: "tune-application",
		// db:add-missing-indices is a no-op once the indices exist, so the
		// step re-runs safely without a precondition.
		Action: func(ctx context.Context) error {
			return occ.Run(ctx, "db:add-missing-indices")
		},
	}
}

func enableExtraApps(deps Deps) pipeline.Step {
	cfg := deps.Config
	occ := deps.occ()
	return pipeline.Step{
		Name:     "enable-extra-apps",
		Optional: true,
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			if len(cfg.App.ExtraApps) == 0 {
				return pipeline.StatusSatisfied, nil
			}
			return pipeline.StatusUnsatisfied, nil
		},
		Action: func(ctx context.Context) error {
			for _, app := range cfg.App.ExtraApps {
				if err := occ.Run(ctx, "app:enable", app); err != nil {
					return fmt.Errorf("enabling app %s: %w", app, err)
				}
			}
			return nil
		},
	}
}

func issueTLSCertificate(deps Deps) pipeline.Step {
	cfg := deps.Config
	apt := deps.apt()
	return pipeline.Step{
		Name:     "issue-tls-certificate",
		Optional: true,
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			// A bare IP or single-label host cannot get a certificate; skip
			// without failing the run.
			if !cfg.DomainIsFQDN() {
				deps.Logger.Warn("domain is not a fully qualified name, skipping TLS certificate",
					"domain", cfg.Domain)
				return pipeline.StatusSatisfied, nil
			}
			return deps.Probe.FileExists(ctx, fmt.Sprintf("/etc/letsencrypt/live/%s/fullchain.pem", cfg.Domain))
		},
		Action: func(ctx context.Context) error {
			if err := apt.Install(ctx, "certbot", "python3-certbot-apache"); err != nil {
				return err
			}
			email := cfg.App.TLSEmail
			if email == "" {
				email = "admin@" + cfg.Domain
			}
			cmd := fmt.Sprintf("sudo certbot --apache --non-interactive --agree-tos -m %s -d %s --redirect",
				shellQuote(email), shellQuote(cfg.Domain))
			return deps.Runner.Run(ctx, cmd)
		},
	}
}

func verifyInstallation(deps Deps) pipeline.Step {
	occ := deps.occ()
	systemd := deps.systemd()
	return pipeline.Step{
		Name: "verify-installation",
		Action: func(ctx context.Context) error {
			out, err := occ.Output(ctx, "status")
			if err != nil {
				return fmt.Errorf("querying application status: %w", err)
			}
			if !containsInstalled(out) {
				return fmt.Errorf("application reports not installed: %s", out)
			}
			active, err := systemd.IsActive(ctx, "apache2")
			if err != nil {
				return fmt.Errorf("checking web server state: %w", err)
			}
			if !active {
				return fmt.Errorf("web server is not active after provisioning")
			}
			return nil
		},
	}
}

func containsInstalled(statusOutput string) bool {
	for _, line := range []string{"installed: true", "installed: 1"} {
		if strings.Contains(statusOutput, line) {
			return true
		}
	}
	return false
}
