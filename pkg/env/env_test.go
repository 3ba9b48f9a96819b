package env

import (
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSProvider_Enumerate(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:    "Plain variables",
			environ: []string{"CRDS_ENV=int", "VAULT_URI=https://vault.local:8200"},
			want: map[string]string{
				"CRDS_ENV":  "int",
				"VAULT_URI": "https://vault.local:8200",
			},
		},
		{
			name:    "Value containing separator",
			environ: []string{"DATABASE_URL=postgres://u:p@h/db?sslmode=disable"},
			want: map[string]string{
				"DATABASE_URL": "postgres://u:p@h/db?sslmode=disable",
			},
		},
		{
			name:    "Empty value kept",
			environ: []string{"EMPTY="},
			want:    map[string]string{"EMPTY": ""},
		},
		{
			name:    "Malformed entry skipped",
			environ: []string{"NOSEPARATOR", "A=1"},
			want:    map[string]string{"A": "1"},
		},
		{
			name:    "Unavailable",
			environ: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &OSProvider{environ: func() []string { return tt.environ }}

			got, err := p.Enumerate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEnvironmentUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOSProvider_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("SETTINGS_HUB_TEST_VAR", "from-process")

	got, err := NewOSProvider().Enumerate()
	require.NoError(t, err)
	assert.Equal(t, "from-process", got["SETTINGS_HUB_TEST_VAR"])
}

func TestStaticProvider_ReturnsCopy(t *testing.T) {
	p := StaticProvider{"A": "1"}

	got, err := p.Enumerate()
	require.NoError(t, err)
	got["A"] = "changed"

	assert.Equal(t, "1", p["A"])
}

func TestRender(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		out, err := Render(nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("Round trips through dotenv", func(t *testing.T) {
		values := map[string]string{
			"CRDS_ENV": "int",
			"GREETING": "hello world",
		}

		out, err := Render(values)
		require.NoError(t, err)

		parsed, err := godotenv.Unmarshal(out)
		require.NoError(t, err)
		assert.Equal(t, values, parsed)
	})
}
