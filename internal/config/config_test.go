package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jamshid2204/msg-sender-bot/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
telegram:
  token: "123:abc"
  operator_ids: [42]
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Logger.Level != config.DefaultLogLevel {
		t.Errorf("Logger.Level = %q, want default %q", cfg.Logger.Level, config.DefaultLogLevel)
	}
	if cfg.Database.Path != config.DefaultDBPath {
		t.Errorf("Database.Path = %q, want default %q", cfg.Database.Path, config.DefaultDBPath)
	}
	if cfg.Broadcast.AlbumWindow != config.DefaultAlbumWindow {
		t.Errorf("Broadcast.AlbumWindow = %v, want default %v", cfg.Broadcast.AlbumWindow, config.DefaultAlbumWindow)
	}
	if cfg.Messages.Broadcasted != config.DefaultMsgBroadcasted {
		t.Errorf("Messages.Broadcasted = %q, want default %q", cfg.Messages.Broadcasted, config.DefaultMsgBroadcasted)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
logger:
  level: debug
  json: true
telegram:
  token: "123:abc"
  operator_ids: [42, 77]
broadcast:
  album_window: 2s
  attempt_timeout: 10s
messages:
  welcome: "hello"
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Logger.Level != "debug" || !cfg.Logger.JSON {
		t.Errorf("logger config = %+v, want debug/json", cfg.Logger)
	}
	if len(cfg.Telegram.OperatorIDs) != 2 {
		t.Errorf("OperatorIDs = %v, want two entries", cfg.Telegram.OperatorIDs)
	}
	if cfg.Broadcast.AlbumWindow != 2*time.Second {
		t.Errorf("AlbumWindow = %v, want 2s", cfg.Broadcast.AlbumWindow)
	}
	if cfg.Messages.Welcome != "hello" {
		t.Errorf("Messages.Welcome = %q, want %q", cfg.Messages.Welcome, "hello")
	}
	// Untouched strings keep their defaults.
	if cfg.Messages.NotAuthorized != config.DefaultMsgNotAuthorized {
		t.Errorf("Messages.NotAuthorized = %q, want default", cfg.Messages.NotAuthorized)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing token",
			content: `
telegram:
  operator_ids: [42]
`,
		},
		{
			name: "empty operator set",
			content: `
telegram:
  token: "123:abc"
  operator_ids: []
`,
		},
		{
			name: "negative operator id",
			content: `
telegram:
  token: "123:abc"
  operator_ids: [-5]
`,
		},
		{
			name: "album window out of range",
			content: `
telegram:
  token: "123:abc"
  operator_ids: [42]
broadcast:
  album_window: 10ms
`,
		},
		{
			name: "bad log level",
			content: `
logger:
  level: chatty
telegram:
  token: "123:abc"
  operator_ids: [42]
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfigFile(t, tc.content)
			if _, err := config.LoadConfig(path); err == nil {
				t.Error("LoadConfig() should fail validation")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	// A missing file still runs validation, which fails on the empty token.
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := config.LoadConfig(path); err == nil {
		t.Error("LoadConfig() without token should fail validation")
	}
}

func TestIsOperator(t *testing.T) {
	t.Parallel()

	cfg := config.TelegramConfig{OperatorIDs: []int64{42, 77}}

	tests := []struct {
		userID int64
		want   bool
	}{
		{userID: 42, want: true},
		{userID: 77, want: true},
		{userID: 100, want: false},
		{userID: 0, want: false},
	}

	for _, tc := range tests {
		if got := cfg.IsOperator(tc.userID); got != tc.want {
			t.Errorf("IsOperator(%d) = %v, want %v", tc.userID, got, tc.want)
		}
	}
}
