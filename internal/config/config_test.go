package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimal = `
telegram:
  token: "12345:token"
  alert_chat_id: "-100111"
  report_chat_id: "-100222"
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "domain_state.json", cfg.StateFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.Monitoring.CheckIntervalDur)
	assert.Equal(t, 120, cfg.Monitoring.ReportEvery)
	assert.Equal(t, 5, cfg.Monitoring.MaxConcurrent)
	assert.Equal(t, 10*time.Second, cfg.Monitoring.RDAPTimeoutDur)
	assert.Equal(t, 20*time.Second, cfg.Monitoring.WhoisTimeoutDur)
	assert.Equal(t, 15*time.Second, cfg.Telegram.SendTimeoutDur)
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  token: "12345:token"
  alert_chat_id: "-100111"
  report_chat_id: "-100222"
  send_timeout: "5s"
monitoring:
  check_interval: "2m"
  report_every: 30
  max_concurrent: 10
  rdap_timeout: "3s"
  whois_timeout: "8s"
server:
  addr: ":9090"
state_file: "/var/lib/tracker/state.json"
default_domains: ["Example.COM", "other.net"]
log_level: "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Monitoring.CheckIntervalDur)
	assert.Equal(t, 30, cfg.Monitoring.ReportEvery)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"example.com", "other.net"}, cfg.DefaultDomains)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestTokenFromEnvOverridesFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env:token")

	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, "env:token", cfg.Telegram.Token)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	tests := []struct {
		name    string
		content string
	}{
		{"missing token", `
telegram:
  alert_chat_id: "-100111"
  report_chat_id: "-100222"
`},
		{"missing alert chat", `
telegram:
  token: "t"
  report_chat_id: "-100222"
`},
		{"bad interval", minimal + `
monitoring:
  check_interval: "soon"
`},
		{"negative interval", minimal + `
monitoring:
  check_interval: "-5s"
`},
		{"bad log level", minimal + `
log_level: "verbose"
`},
		{"bad default domain", minimal + `
default_domains: ["nodot"]
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
