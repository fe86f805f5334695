package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
format_version = "0.1.0"
server_hostname = "localhost"
server_port = "8678"
handle_cors = true

[upstream]
url = "http://localhost:8000"
token = "svc-token"

[db]
driver = "memory"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tradegatesrv.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvUpstreamURL, EnvUpstreamToken, EnvCORSOrigin, EnvCORSHeaders} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnvOverrides(t)
	require.NoError(t, LoadConfig(writeConfig(t, baseConfig)))

	c := Config()
	assert.Equal(t, "8678", c.ServerPort)
	assert.Equal(t, "http://localhost:8000", c.Upstream.URL)
	assert.Equal(t, "svc-token", c.Upstream.Token)
	assert.True(t, c.HandleCORS)

	// defaults fill in what the file left out
	assert.Equal(t, DefaultCORSOrigin, c.CORS.AllowOrigin)
	assert.Equal(t, DefaultCORSHeaders, c.CORS.AllowHeaders)
	assert.Equal(t, int64(DefaultMaxRequestBodySize), c.MaxRequestBodySize)
	assert.Equal(t, 30*time.Second, c.GetRequestTimeoutOrDefault())
}

func TestEnvOverrides(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv(EnvUpstreamURL, "https://classify.internal:9000")
	t.Setenv(EnvUpstreamToken, "env-token")
	t.Setenv(EnvCORSOrigin, "https://app.example.com")
	t.Setenv(EnvCORSHeaders, "authorization,content-type")

	require.NoError(t, LoadConfig(writeConfig(t, baseConfig)))

	c := Config()
	assert.Equal(t, "https://classify.internal:9000", c.Upstream.URL)
	assert.Equal(t, "env-token", c.Upstream.Token)
	assert.Equal(t, "https://app.example.com", c.CORS.AllowOrigin)
	assert.Equal(t, "authorization,content-type", c.CORS.AllowHeaders)
}

func TestEmptyUpstreamURLAllowed(t *testing.T) {
	clearEnvOverrides(t)
	cfgText := `
format_version = "0.1.0"
server_port = "8678"

[db]
driver = "memory"
`
	require.NoError(t, LoadConfig(writeConfig(t, cfgText)))
	assert.Empty(t, Config().Upstream.URL)
}

func TestValidationFailures(t *testing.T) {
	clearEnvOverrides(t)
	tests := []struct {
		name string
		conf string
	}{
		{
			name: "bad format version",
			conf: `
format_version = "9.9.9"
server_port = "8678"
[db]
driver = "memory"
`,
		},
		{
			name: "missing server port",
			conf: `
format_version = "0.1.0"
[db]
driver = "memory"
`,
		},
		{
			name: "bad upstream scheme",
			conf: `
format_version = "0.1.0"
server_port = "8678"
[upstream]
url = "ftp://classify.internal"
[db]
driver = "memory"
`,
		},
		{
			name: "unknown db driver",
			conf: `
format_version = "0.1.0"
server_port = "8678"
[db]
driver = "sqlite"
`,
		},
		{
			name: "postgres driver missing fields",
			conf: `
format_version = "0.1.0"
server_port = "8678"
[db]
driver = "postgres"
host = "localhost"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, LoadConfig(writeConfig(t, tt.conf)))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"30s", 30 * time.Second, true},
		{"5m", 5 * time.Minute, true},
		{"2h", 2 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"1y", 365 * 24 * time.Hour, true},
		{"30", 0, false},
		{"s", 0, false},
		{"30x", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.ok {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestDSN(t *testing.T) {
	clearEnvOverrides(t)
	cfgText := `
format_version = "0.1.0"
server_port = "8678"

[db]
driver = "postgres"
host = "db.internal"
port = 5432
dbname = "tradegate"
user = "gw"
password = "secret"
sslmode = "disable"
`
	require.NoError(t, LoadConfig(writeConfig(t, cfgText)))
	assert.Equal(t,
		"host=db.internal port=5432 user=gw password=secret dbname=tradegate sslmode=disable",
		Config().DSN())
}
