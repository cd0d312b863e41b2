package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/fuellog/internal/config"
	"github.com/ogulcanaydogan/fuellog/pkg/alerts"
	"github.com/ogulcanaydogan/fuellog/pkg/metrics"
	"github.com/ogulcanaydogan/fuellog/pkg/storage"
	"github.com/ogulcanaydogan/fuellog/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fuellog",
	Short: "fuellog - fuel log with tank-to-tank consumption tracking",
	Long: `fuellog records refuelings and works out fuel consumption from the
distance driven between two full fills. Partial fills in between are added
to the cycle they belong to.

It keeps the log in SQLite, prints per-cycle, monthly and overall figures,
imports and exports CSV or YAML, tracks spending budgets, and can serve the
same data as a JSON API for a dashboard.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.fuellog/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", cfg.Storage.Path, err)
	}
	return store, nil
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
			cfg.Display.Currency,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return notifiers
}

// app bundles the wired services a command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Storage
	book   *tracker.Logbook
	budget *tracker.BudgetManager
}

func (a *app) Close() error {
	return a.store.Close()
}

// initApp loads config and wires storage, alerts, metrics and the logbook.
// reg may be nil, in which case nothing is recorded.
func initApp(reg prometheus.Registerer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return nil, err
	}

	var recorder *metrics.Recorder
	if reg != nil {
		if recorder, err = metrics.NewRecorder(reg); err != nil {
			store.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	notifiers := initNotifiers(cfg)
	budgetMgr := tracker.NewBudgetManager(store, notifiers, logger)
	book := tracker.NewLogbook(store, budgetMgr, notifiers, recorder, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		book:   book,
		budget: budgetMgr,
	}, nil
}
