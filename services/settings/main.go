package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"settings-hub/pkg/db/postgres"
	"settings-hub/pkg/env"
	"settings-hub/pkg/logger"
	"settings-hub/pkg/secrets"
	"settings-hub/pkg/settings"
	"settings-hub/pkg/telemetry"
)

const (
	serviceName = "settings"
	redacted    = "***"
)

var (
	errKeyNotFound   = errors.New("setting not found")
	errUnknownFormat = errors.New("unknown output format")
)

// App holds dependencies for the settings CLI
type App struct {
	EnvironmentFn  func() settings.EnvironmentProvider
	SecretClientFn func(timeout time.Duration) secrets.Client
	HistoryConnFn  func(driver string, s postgres.SettingsReader) (*postgres.HistoryStore, error)

	Out    io.Writer
	LogOut io.Writer
}

type loadOptions struct {
	appName string
	timeout time.Duration
	history bool
}

func main() {
	app := &App{
		EnvironmentFn: func() settings.EnvironmentProvider {
			return env.NewOSProvider()
		},
		SecretClientFn: func(timeout time.Duration) secrets.Client {
			return secrets.NewVaultClient(secrets.WithRequestTimeout(timeout))
		},
		HistoryConnFn: func(driver string, s postgres.SettingsReader) (*postgres.HistoryStore, error) {
			conn, err := postgres.ConnectPostgres(driver, s)
			if err != nil {
				return nil, err
			}
			return postgres.NewHistoryStore(conn), nil
		},
		Out:    os.Stdout,
		LogOut: os.Stderr,
	}

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("settings_failed", "error", err)
		os.Exit(1)
	}
}

func (a *App) Run(ctx context.Context, args []string) error {
	logger.Setup(a.LogOut, serviceName)

	shutdownTracer, shutdownMeter, shutdownLogger, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		slog.Warn("otel_init_failed, continuing without full observability", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownTelemetry(shutdownCtx, []shutdownStep{
			{component: "tracer", fn: shutdownTracer},
			{component: "meter", fn: shutdownMeter},
			{component: "logger", fn: shutdownLogger},
		})
	}()

	cmd := a.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.LogOut)
	return cmd.ExecuteContext(ctx)
}

type shutdownStep struct {
	component string
	fn        telemetry.ShutdownFunc
}

// shutdownTelemetry runs steps in order. The logger step must come last so
// failures from the other providers are still exported.
func shutdownTelemetry(ctx context.Context, steps []shutdownStep) {
	for _, step := range steps {
		if step.fn == nil {
			continue
		}
		if err := step.fn(ctx); err != nil {
			slog.Error("otel_shutdown_failed", "component", step.component, "error", err)
		}
	}
}

// NewRootCmd builds the command tree. Every subcommand loads the settings first.
func (a *App) NewRootCmd() *cobra.Command {
	opts := &loadOptions{}

	root := &cobra.Command{
		Use:           "settings",
		Short:         "Aggregate environment variables and Vault secrets into one settings view",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.appName, "app-name", "", "application bucket to read from Vault (default: derived from the binary)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", settings.DefaultFetchTimeout, "timeout for each Vault bucket fetch")
	root.PersistentFlags().BoolVar(&opts.history, "history", false, "record the load report to PostgreSQL")

	root.AddCommand(
		a.newKeysCmd(opts),
		a.newGetCmd(opts),
		a.newDumpCmd(opts),
		a.newReportCmd(opts),
	)
	return root
}

func (a *App) newKeysCmd(opts *loadOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every setting key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.Load(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			for _, key := range svc.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func (a *App) newGetCmd(opts *loadOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value of one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.Load(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			value, ok := svc.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", errKeyNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func (a *App) newDumpCmd(opts *loadOptions) *cobra.Command {
	var (
		format string
		reveal bool
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print all settings, values redacted unless --reveal is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.Load(cmd.Context(), *opts)
			if err != nil {
				return err
			}

			values := svc.Snapshot()
			if !reveal {
				for k := range values {
					values[k] = redacted
				}
			}

			out, err := render(values, format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "dotenv", "output format: dotenv or yaml")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print values instead of redacting them")
	return cmd
}

func (a *App) newReportCmd(opts *loadOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the load report as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.Load(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(svc.Report())
			if err != nil {
				return fmt.Errorf("report_encode_failed: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

// Load aggregates the settings and, when asked, records the run.
func (a *App) Load(ctx context.Context, opts loadOptions) (*settings.Service, error) {
	svc := settings.New(ctx,
		settings.WithLogger(slog.Default()),
		settings.WithEnvironmentProvider(a.EnvironmentFn()),
		settings.WithSecretClient(a.SecretClientFn(opts.timeout)),
		settings.WithFetchTimeout(opts.timeout),
		settings.WithAppName(opts.appName),
	)

	if opts.history {
		if err := a.recordHistory(ctx, svc); err != nil {
			return nil, fmt.Errorf("history_record_failed: %w", err)
		}
	}
	return svc, nil
}

func (a *App) recordHistory(ctx context.Context, svc *settings.Service) error {
	store, err := a.HistoryConnFn("postgres", svc)
	if err != nil {
		return fmt.Errorf("postgres_connection_failed: %w", err)
	}
	defer store.DB.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := store.RecordLoad(ctx, svc.Report()); err != nil {
		return err
	}

	slog.Info("load_history_recorded", "run_id", svc.Report().RunID)
	return nil
}

func render(values map[string]string, format string) (string, error) {
	switch format {
	case "dotenv":
		out, err := env.Render(values)
		if err != nil {
			return "", fmt.Errorf("dotenv_encode_failed: %w", err)
		}
		if out != "" {
			out += "\n"
		}
		return out, nil
	case "yaml":
		out, err := yaml.Marshal(values)
		if err != nil {
			return "", fmt.Errorf("yaml_encode_failed: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%w: %s", errUnknownFormat, format)
	}
}
