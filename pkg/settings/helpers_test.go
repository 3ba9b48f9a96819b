package settings

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"settings-hub/pkg/secrets"
)

// logCapture collects JSON log lines so tests can assert on diagnostics.
type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func newLogCapture() (*slog.Logger, *logCapture) {
	c := &logCapture{}
	return slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})), c
}

func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(c.buf.Bytes()))
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("failed to parse log line %q: %v", scanner.Text(), err)
		}
		out = append(out, entry)
	}
	return out
}

// find returns every entry whose msg equals msg.
func (c *logCapture) find(t *testing.T, msg string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range c.entries(t) {
		if e["msg"] == msg {
			out = append(out, e)
		}
	}
	return out
}

func (c *logCapture) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}

// mockSecretClient implements secrets.Client for unit testing.
type mockSecretClient struct {
	mu       sync.Mutex
	FetchFn  func(ctx context.Context, req secrets.Request) (map[string]string, error)
	requests []secrets.Request
}

func (m *mockSecretClient) Fetch(ctx context.Context, req secrets.Request) (map[string]string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.FetchFn != nil {
		return m.FetchFn(ctx, req)
	}
	return map[string]string{}, nil
}

func (m *mockSecretClient) Close() error { return nil }

func (m *mockSecretClient) Requests() []secrets.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]secrets.Request(nil), m.requests...)
}

// bucketClient serves fixed settings per path.
func bucketClient(buckets map[string]map[string]string) *mockSecretClient {
	return &mockSecretClient{
		FetchFn: func(ctx context.Context, req secrets.Request) (map[string]string, error) {
			values, ok := buckets[req.Path]
			if !ok {
				return nil, secrets.ErrIncompleteRequest
			}
			out := make(map[string]string, len(values))
			for k, v := range values {
				out[k] = v
			}
			return out, nil
		},
	}
}

type funcProvider func() (map[string]string, error)

func (f funcProvider) Enumerate() (map[string]string, error) { return f() }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
