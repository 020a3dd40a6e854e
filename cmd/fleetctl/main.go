package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fleetdash/internal/pkg/jwt"
	"fleetdash/internal/repository/file"
	authUsecase "fleetdash/internal/service/auth"
	dashboardUsecase "fleetdash/internal/service/dashboard"
	recordsUsecase "fleetdash/internal/service/records"
	"fleetdash/internal/upstream"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	apiURL  string
	dataDir string
	timeout time.Duration

	// Logger
	logger *zap.Logger

	// Wired in PersistentPreRunE
	cli *clientApp
)

// clientApp holds what every command needs.
type clientApp struct {
	api       *upstream.Client
	session   *authUsecase.Session
	dashboard *dashboardUsecase.DashboardService
	records   *recordsUsecase.RecordsService
}

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "Fleet dashboard in the terminal",
	Long: `fleetctl talks to the fleet API directly: it signs in, shows vehicles,
drivers and users as filtered tables with status bars, and keeps trip and
maintenance logs on this machine.

The login is stored under --data-dir and reused until the token expires.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cli, err = newClientApp(cmd.Context())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newClientApp(ctx context.Context) (*clientApp, error) {
	api := upstream.NewClient(strings.TrimRight(apiURL, "/"), timeout, logger)

	records, err := file.NewRecordsRepository(filepath.Join(dataDir, "records"))
	if err != nil {
		return nil, err
	}

	authService := authUsecase.NewAuthService(api, jwt.NewInspector(os.Getenv("JWT_SECRET")), nil, logger)
	session := authService.Open(file.NewStateRepository(filepath.Join(dataDir, "session.json")), "")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := session.Init(ctx); err != nil {
		return nil, err
	}

	return &clientApp{
		api:       api,
		session:   session,
		dashboard: dashboardUsecase.NewDashboardService(api, logger),
		records:   recordsUsecase.NewRecordsService(records, logger),
	}, nil
}

// requireLogin returns the access token or a hint to log in.
func (a *clientApp) requireLogin() (string, error) {
	if !a.session.IsAuthenticated() {
		return "", fmt.Errorf("not logged in; run `fleetctl login`")
	}
	return a.session.Token(), nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fleetctl")
	}
	return ".fleetctl"
}

func init() {
	_ = godotenv.Load()

	defaultAPI := os.Getenv("UPSTREAM_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:5000/api"
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "Fleet API base URL (or set UPSTREAM_URL)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Where the login and local records are kept")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(overviewCmd, vehiclesCmd, driversCmd, usersCmd)
	rootCmd.AddCommand(vehicleCmd, driverCmd)
	rootCmd.AddCommand(tripsCmd, maintenanceCmd, fuelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
