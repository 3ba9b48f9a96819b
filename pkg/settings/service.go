package settings

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"settings-hub/pkg/telemetry"
)

// Service is the aggregated settings surface handed to the rest of a program.
// It embeds the Store, so Get, TryGet, Set and SetAll are available directly.
type Service struct {
	*Store

	gate   *Gate
	remote *RemoteLoader
	logger *slog.Logger
	report LoadReport

	loaded telemetry.Int64Counter
}

// New builds the Store and runs the initialization sequence once, synchronously.
// It never fails: unavailable sources contribute nothing and are logged.
func New(ctx context.Context, opts ...Option) *Service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	store := NewStore(cfg.logger)
	gate := NewGate(store, cfg.logger)

	meter := telemetry.GetMeter(telemetry.ScopeName)
	loaded, _ := telemetry.NewInt64Counter(meter, "settings.loaded.total", "Settings applied to the store, by source")

	s := &Service{
		Store:  store,
		gate:   gate,
		remote: NewRemoteLoader(gate, cfg.secretClient, cfg.mount, cfg.fetchTimeout, cfg.logger),
		logger: cfg.logger,
		loaded: loaded,
	}
	s.initialize(ctx, cfg)
	return s
}

func (s *Service) initialize(ctx context.Context, cfg config) {
	ctx, span := telemetry.GetTracer(telemetry.ScopeName).Start(ctx, "settings.initialize")
	defer span.End()

	s.report = LoadReport{
		RunID:     uuid.NewString(),
		StartedAt: cfg.now(),
	}
	logger := s.logger.With("run_id", s.report.RunID)

	// 1. Environment
	envVars := NewEnvironmentLoader(cfg.environment, s.logger).Load()
	s.apply(ctx, SourceEnvironment, envVars, nil)

	// 2. Registered credentials
	if registered := registration(cfg); len(registered) > 0 {
		s.apply(ctx, SourceRegistration, registered, nil)
	}

	// 3. Gate
	s.report.Environment = s.gate.Environment()
	s.report.AppName = cfg.appName()
	s.report.RemoteEligible = s.gate.CredentialsAvailable()
	span.SetAttributes(
		telemetry.String("environment", s.report.Environment),
		telemetry.Bool("remote_eligible", s.report.RemoteEligible),
	)

	// 4. Vault
	if s.report.RemoteEligible {
		common := s.remote.Fetch(ctx, CommonBucket)
		s.apply(ctx, SourceVaultCommon, common.Settings(), common.Err)

		app := s.remote.Fetch(ctx, s.report.AppName)
		s.apply(ctx, SourceVaultApp, app.Settings(), app.Err)

		if err := s.Set(KeyAppName, s.report.AppName, SourceAppName); err != nil {
			logger.Warn("settings_source_rejected", "source", SourceAppName, "error", err)
		} else {
			s.record(ctx, SourceReport{Label: SourceAppName, Count: 1})
		}
	} else {
		logger.Warn("vault_settings_skipped", "environment", s.report.Environment)
	}

	s.report.FinishedAt = cfg.now()
	logger.Info("settings_initialized",
		"environment", s.report.Environment,
		"app_name", s.report.AppName,
		"remote_eligible", s.report.RemoteEligible,
		"count", s.Len(),
		"duration", s.report.Duration().String(),
	)
}

// apply merges one layer and records it in the report. cause is the reason a
// layer came back empty, if any.
func (s *Service) apply(ctx context.Context, source string, values map[string]string, cause error) {
	entry := SourceReport{Label: source, Count: len(values)}
	if cause != nil {
		entry.Error = cause.Error()
	}

	if err := s.SetAll(values, source); err != nil {
		s.logger.Warn("settings_source_rejected", "source", source, "error", err)
		entry.Count = 0
		entry.Error = err.Error()
	}
	s.record(ctx, entry)
}

func (s *Service) record(ctx context.Context, entry SourceReport) {
	s.report.Sources = append(s.report.Sources, entry)
	telemetry.AddInt64Counter(ctx, s.loaded, int64(entry.Count), telemetry.String("source", entry.Label))
}

func registration(cfg config) map[string]string {
	registered := make(map[string]string, 2)
	if cfg.roleID != "" {
		registered[KeyVaultRoleID] = cfg.roleID
	}
	if cfg.secretID != "" {
		registered[KeyVaultSecretID] = cfg.secretID
	}
	return registered
}

// Gate exposes the eligibility and resolution logic bound to this Service's Store.
func (s *Service) Gate() *Gate {
	return s.gate
}

// Remote exposes the loader so callers can fetch additional buckets on demand.
func (s *Service) Remote() *RemoteLoader {
	return s.remote
}

// Report returns a copy of the initialization summary.
func (s *Service) Report() LoadReport {
	r := s.report
	r.Sources = append([]SourceReport(nil), s.report.Sources...)
	return r
}
