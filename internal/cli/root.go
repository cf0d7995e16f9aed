package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/groundworkhq/provision/internal/catalog"
	"github.com/groundworkhq/provision/internal/db"
	"github.com/groundworkhq/provision/internal/host"
	"github.com/groundworkhq/provision/internal/logging"
	"github.com/groundworkhq/provision/internal/notification"
	"github.com/groundworkhq/provision/internal/pipeline"
	"github.com/groundworkhq/provision/internal/report"
	"github.com/groundworkhq/provision/internal/secrets"
	"github.com/groundworkhq/provision/internal/ssh"
	"github.com/groundworkhq/provision/internal/types"
	"github.com/groundworkhq/provision/internal/ui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// The literal fallback admin password is the recognized degraded mode: it is
// only used when the operator explicitly configures "default", and the final
// report flags it for rotation.
const defaultAdminPassword = "nextcloud-admin"

var (
	configPath  string
	hostAddress string
	hostUser    string
	hostKeyPath string
	hostPort    int
	localMode   bool
	domain      string

	adminUser     string
	adminPassword string
	dbPassword    string

	stateDB        string
	secretsProject string
	secretsEnv     string

	interactive bool
	verbose     bool
	logLevel    string

	rootCmd = &cobra.Command{
		Use:   "provision",
		Short: "Unattended groupware stack provisioning",
		Long: `Provisions a complete groupware stack (Apache, PHP, MariaDB and the
application) onto a single Ubuntu host. Safe to re-run: steps whose effect is
already present are skipped.`,
		RunE: runProvision,
	}

	stepsCmd = &cobra.Command{
		Use:   "steps",
		Short: "List the provisioning steps in execution order",
		RunE:  runSteps,
	}
)

func Execute() {
	rootCmd.SilenceErrors = false
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "./provision.yaml", "Path to config file")
	flags.StringVar(&hostAddress, "host", "", "Target host address")
	flags.StringVar(&hostUser, "user", "", "SSH user on the target host")
	flags.StringVar(&hostKeyPath, "key", "", "Path to the SSH private key")
	flags.IntVar(&hostPort, "port", 0, "SSH port on the target host")
	flags.BoolVar(&localMode, "local", false, "Provision the local machine instead of SSH")
	flags.StringVar(&domain, "domain", "", "Domain or IP the installation is served on")
	flags.StringVar(&adminUser, "admin-user", "", "Administrator account name")
	flags.StringVar(&adminPassword, "admin-password", "", `Administrator password ("generate" for a random one)`)
	flags.StringVar(&dbPassword, "db-password", "", `Database password ("generate" for a random one)`)
	flags.StringVar(&stateDB, "state-db", "", "Postgres URI for the optional step-state ledger")
	flags.StringVar(&secretsProject, "secrets-project", "", "Infisical project ID to pull credentials from")
	flags.StringVar(&secretsEnv, "secrets-env", "prod", "Infisical environment slug")
	flags.BoolVar(&interactive, "interactive", false, "Prompt for missing settings")
	flags.BoolVar(&verbose, "verbose", false, "Stream remote command output")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(stepsCmd)
}

func loadConfig() (*types.Config, error) {
	var config *types.Config

	if _, err := os.Stat(configPath); err == nil {
		config, err = types.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		config = &types.Config{}
	}

	// Flags override file values.
	if hostAddress != "" {
		config.Host.Address = hostAddress
	}
	if hostUser != "" {
		config.Host.Username = hostUser
	}
	if hostKeyPath != "" {
		config.Host.KeyPath = hostKeyPath
	}
	if hostPort != 0 {
		config.Host.Port = hostPort
	}
	if localMode {
		config.Host.Local = true
	}
	if domain != "" {
		config.Domain = domain
	}
	if adminUser != "" {
		config.Admin.User = adminUser
	}
	if adminPassword != "" {
		config.Admin.Password = adminPassword
	}
	if dbPassword != "" {
		config.Database.Password = dbPassword
	}
	if stateDB != "" {
		config.StateDB = stateDB
	}

	config.ApplyDefaults()
	return config, nil
}

func resolveCredentials(ctx context.Context, config *types.Config) ([]secrets.Credential, error) {
	if secretsProject != "" {
		source, err := secrets.NewInfisicalSource(ctx, secretsProject, secretsEnv)
		if err != nil {
			return nil, err
		}
		adminCred, err := source.Retrieve("ADMIN_PASSWORD")
		if err != nil {
			return nil, err
		}
		adminCred.Name = "admin password"
		dbCred, err := source.Retrieve("DB_PASSWORD")
		if err != nil {
			return nil, err
		}
		dbCred.Name = "database password"
		return []secrets.Credential{adminCred, dbCred}, nil
	}

	adminFallback := ""
	if config.Admin.Password == "default" {
		config.Admin.Password = ""
		adminFallback = defaultAdminPassword
	}

	adminCred, err := secrets.Resolve("admin password", config.Admin.Password, adminFallback)
	if err != nil {
		return nil, err
	}
	dbCred, err := secrets.Resolve("database password", config.Database.Password, "")
	if err != nil {
		return nil, err
	}
	return []secrets.Credential{adminCred, dbCred}, nil
}

func connectRunner(config *types.Config) (host.Runner, error) {
	if config.Host.Local {
		return host.NewLocalRunner(verbose), nil
	}
	return ssh.Dial(config.Host, verbose)
}

func targetName(config *types.Config) string {
	if config.Host.Local {
		return "localhost"
	}
	return config.Host.Address
}

func runProvision(cmd *cobra.Command, args []string) error {
	godotenv.Load()

	if err := logging.Initialize(logLevel); err != nil {
		return err
	}
	logger := slog.Default()

	ui.PrintBanner(true)

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if interactive {
		if err := ui.InteractiveSetup(config); err != nil {
			return err
		}
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if interactive {
		ok, err := ui.ConfirmProvisioning(targetName(config), config.Domain)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 60*time.Minute)
	defer cancel()

	creds, err := resolveCredentials(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %v", err)
	}

	runner, err := connectRunner(config)
	if err != nil {
		return err
	}
	defer runner.Close()

	runID := uuid.New().String()
	listeners := []pipeline.Listener{ui.NewStepSpinner(targetName(config))}

	if config.StateDB != "" {
		store, err := db.NewStateStore(config.StateDB)
		if err != nil {
			return fmt.Errorf("failed to connect to state ledger: %v", err)
		}
		defer store.Close()

		if previous, err := store.LastOutcomes(targetName(config)); err == nil && len(previous) > 0 {
			logger.Info("ledger has previous state for this host, resuming",
				"host", targetName(config), "recorded_steps", len(previous))
		}
		listeners = append(listeners, &db.Ledger{
			Store:  store,
			Host:   targetName(config),
			RunID:  runID,
			Logger: logger,
		})
	}

	deps := catalog.Deps{
		Config:           config,
		Runner:           runner,
		Probe:            host.NewProbe(runner),
		Logger:           logger,
		AdminPassword:    creds[0].Value,
		DatabasePassword: creds[1].Value,
	}

	engine := pipeline.NewEngine(catalog.Steps(deps),
		pipeline.WithRunID(runID),
		pipeline.WithListener(pipeline.Listeners(listeners...)),
		pipeline.WithLogger(logger),
	)

	run, runErr := engine.Execute(ctx)
	report.Write(os.Stdout, run, creds, config.AccessURL())

	if runErr != nil {
		notification.Notify("Provisioning failed", runErr.Error())
		return runErr
	}

	notification.Notify("Provisioning complete", fmt.Sprintf("%s is ready at %s", config.Domain, config.AccessURL()))
	return nil
}

// runSteps prints the catalog without touching any host. Step assembly is
// pure data construction, so a nil runner never gets exercised.
func runSteps(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	config.ApplyDefaults()

	deps := catalog.Deps{
		Config: config,
		Logger: slog.Default(),
	}
	for i, step := range catalog.Steps(deps) {
		marker := ""
		if step.Optional {
			marker = " (optional)"
		}
		fmt.Printf("%2d. %s%s\n", i+1, step.Name, marker)
	}
	return nil
}
