package catalog

import (
	"context"
	"fmt"

	"github.com/groundworkhq/provision/internal/pipeline"
	"github.com/groundworkhq/provision/internal/render"
)

func installWebServer(deps Deps) pipeline.Step {
	apt := deps.apt()
	systemd := deps.systemd()
	return pipeline.Step{
		Name: "install-web-server",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.PackageInstalled(ctx, "apache2")
		},
		Action: func(ctx context.Context) error {
			if err := apt.Install(ctx, "apache2"); err != nil {
				return err
			}
			if err := deps.Runner.Run(ctx, "sudo a2enmod rewrite headers env dir mime"); err != nil {
				return fmt.Errorf("enabling apache modules: %w", err)
			}
			return systemd.Enable(ctx, "apache2")
		},
	}
}

func installRuntime(deps Deps) pipeline.Step {
	apt := deps.apt()
	systemd := deps.systemd()
	php := deps.Config.App.PHPVersion
	return pipeline.Step{
		Name: "install-runtime",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.PackageInstalled(ctx, "php"+php)
		},
		Action: func(ctx context.Context) error {
			packages := []string{
				"php" + php,
				"libapache2-mod-php" + php,
			}
			for _, ext := range []string{"gd", "curl", "mbstring", "intl", "xml", "zip", "mysql", "bcmath", "gmp"} {
				packages = append(packages, fmt.Sprintf("php%s-%s", php, ext))
			}
			if err := apt.Install(ctx, packages...); err != nil {
				return err
			}
			return systemd.Restart(ctx, "apache2")
		},
	}
}

func phpTuningPath(phpVersion string) string {
	return fmt.Sprintf("/etc/php/%s/apache2/conf.d/99-groupware-tuning.ini", phpVersion)
}

func tuneRuntime(deps Deps) pipeline.Step {
	files := deps.files()
	systemd := deps.systemd()
	target := phpTuningPath(deps.Config.App.PHPVersion)
	return pipeline.Step{
		Name: "tune-runtime",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.FileExists(ctx, target)
		},
		Action: func(ctx context.Context) error {
			content, err := render.File("php-tuning.ini.tmpl", map[string]string{})
			if err != nil {
				return err
			}
			if err := files.Write(ctx, target, content, "root:root", "0644"); err != nil {
				return err
			}
			return systemd.Restart(ctx, "apache2")
		},
	}
}

func installDatabase(deps Deps) pipeline.Step {
	apt := deps.apt()
	systemd := deps.systemd()
	return pipeline.Step{
		Name: "install-database",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			return deps.Probe.PackageInstalled(ctx, "mariadb-server")
		},
		Action: func(ctx context.Context) error {
			if err := apt.Install(ctx, "mariadb-server"); err != nil {
				return err
			}
			return systemd.Enable(ctx, "mariadb")
		},
	}
}

func createDatabase(deps Deps) pipeline.Step {
	db := deps.Config.Database
	return pipeline.Step{
		Name: "create-database",
		Precondition: func(ctx context.Context) (pipeline.Status, error) {
			cmd := fmt.Sprintf(`sudo mysql -N -B -e "SHOW DATABASES LIKE '%s'" | grep -q %s`, db.Name, db.Name)
			ok, err := deps.Runner.Test(ctx, cmd)
			if err != nil {
				return pipeline.StatusUnknown, err
			}
			if ok {
				return pipeline.StatusSatisfied, nil
			}
			return pipeline.StatusUnsatisfied, nil
		},
		// The SQL itself is conditional (IF NOT EXISTS), so re-execution on a
		// coarse precondition miss is harmless.
		Action: func(ctx context.Context) error {
			sql, err := render.File("create-database.sql.tmpl", map[string]string{
				"Name":     db.Name,
				"User":     db.User,
				"Password": deps.DatabasePassword,
			})
			if err != nil {
				return err
			}
			cmd := fmt.Sprintf("sudo mysql --batch << 'PROVISION_SQL'\n%s\nPROVISION_SQL", sql)
			if err := deps.Runner.Run(ctx, cmd); err != nil {
				return fmt.Errorf("creating database %s: %w", db.Name, err)
			}
			return nil
		},
	}
}
