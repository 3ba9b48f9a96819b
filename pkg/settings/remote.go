package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"settings-hub/pkg/secrets"
	"settings-hub/pkg/telemetry"
)

// DefaultFetchTimeout bounds one bucket fetch, login included.
const DefaultFetchTimeout = 5 * time.Second

var (
	// ErrNoSecretClient is reported when remote fetching is eligible but no client was configured.
	ErrNoSecretClient = errors.New("no secret client configured")
	// ErrEmptyBucket is reported for a fetch without a bucket name.
	ErrEmptyBucket = errors.New("bucket name must not be empty")
)

// FetchResult is the outcome of one bucket fetch: either settings or a cause.
// Skipped marks the non-error case where the Gate refused the fetch.
type FetchResult struct {
	Bucket  string
	Path    string
	Address string
	Skipped bool
	Err     error

	values map[string]string
}

// OK reports whether the fetch ran and succeeded.
func (r FetchResult) OK() bool {
	return !r.Skipped && r.Err == nil
}

// Settings returns the fetched settings, or an empty map when the fetch was
// skipped or failed.
func (r FetchResult) Settings() map[string]string {
	if !r.OK() || r.values == nil {
		return map[string]string{}
	}
	return r.values
}

// RemoteLoader fetches one Vault bucket at a time for the Store behind gate.
type RemoteLoader struct {
	gate    *Gate
	client  secrets.Client
	mount   string
	timeout time.Duration
	logger  *slog.Logger

	fetchErrors   telemetry.Int64Counter
	fetchDuration telemetry.Int64Histogram
}

// NewRemoteLoader creates a RemoteLoader. A zero timeout means DefaultFetchTimeout
// and an empty mount means secrets.DefaultMount.
func NewRemoteLoader(gate *Gate, client secrets.Client, mount string, timeout time.Duration, logger *slog.Logger) *RemoteLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if mount == "" {
		mount = secrets.DefaultMount
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	meter := telemetry.GetMeter(telemetry.ScopeName)
	fetchErrors, _ := telemetry.NewInt64Counter(meter, "settings.remote.fetch.errors", "Total failed secret-store bucket fetches")
	fetchDuration, _ := telemetry.NewInt64Histogram(meter, "settings.remote.fetch.duration.ms", "Secret-store bucket fetch duration in milliseconds", "ms")

	return &RemoteLoader{
		gate:          gate,
		client:        client,
		mount:         mount,
		timeout:       timeout,
		logger:        logger,
		fetchErrors:   fetchErrors,
		fetchDuration: fetchDuration,
	}
}

// Load returns the settings of bucket, or an empty map on any failure.
func (r *RemoteLoader) Load(ctx context.Context, bucket string) map[string]string {
	return r.Fetch(ctx, bucket).Settings()
}

// Fetch reads <environment>/<bucket> from the secret store. It re-checks the
// Gate first; an ineligible Store yields a skipped result, not an error.
func (r *RemoteLoader) Fetch(ctx context.Context, bucket string) FetchResult {
	result := FetchResult{Bucket: bucket}
	if bucket == "" {
		result.Err = ErrEmptyBucket
		r.logger.Warn("vault_settings_load_failed", "bucket", bucket, "error", result.Err)
		return result
	}

	if !r.gate.CredentialsAvailable() {
		result.Skipped = true
		return result
	}

	roleID, secretID, _ := r.gate.Credentials()
	environment := r.gate.Environment()
	result.Address = r.gate.StoreAddress()
	result.Path = environment + "/" + bucket

	ctx, span := telemetry.GetTracer(telemetry.ScopeName).Start(ctx, "settings.remote.fetch",
		telemetry.WithAttributes(
			telemetry.String("bucket", bucket),
			telemetry.String("path", result.Path),
		))
	defer span.End()

	start := time.Now()
	result.values, result.Err = r.fetch(ctx, secrets.Request{
		Address:  result.Address,
		RoleID:   roleID,
		SecretID: secretID,
		Mount:    r.mount,
		Path:     result.Path,
	})
	telemetry.RecordInt64Histogram(ctx, r.fetchDuration, time.Since(start).Milliseconds(),
		telemetry.String("bucket", bucket),
		telemetry.Bool("ok", result.Err == nil),
	)

	if result.Err != nil {
		span.SetStatus(telemetry.CodeError, result.Err.Error())
		telemetry.AddInt64Counter(ctx, r.fetchErrors, 1, telemetry.String("bucket", bucket))
		r.logger.Warn("vault_settings_load_failed",
			"bucket", bucket,
			"path", result.Path,
			"address", result.Address,
			"error", result.Err,
		)
		result.values = nil
		return result
	}

	span.SetStatus(telemetry.CodeOk, "")
	r.logger.Info("vault_settings_loaded", "bucket", bucket, "path", result.Path, "count", len(result.values))
	return result
}

type fetchOutcome struct {
	values map[string]string
	err    error
}

// fetch runs the client call under the loader timeout. A client that ignores
// its context is abandoned once the timeout passes.
func (r *RemoteLoader) fetch(ctx context.Context, req secrets.Request) (map[string]string, error) {
	if r.client == nil {
		return nil, ErrNoSecretClient
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan fetchOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fetchOutcome{err: fmt.Errorf("secret client panicked: %v", p)}
			}
		}()
		values, err := r.client.Fetch(ctx, req)
		done <- fetchOutcome{values: values, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.values == nil {
			out.values = map[string]string{}
		}
		return out.values, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("secret fetch for %s abandoned: %w", req.Path, ctx.Err())
	}
}
