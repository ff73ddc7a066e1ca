package bot

import (
	"errors"
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_ADMIN_ID", "42")
	t.Setenv("DATABASE_URL", "postgres://localhost/accessbot")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL_MINUTES", "15")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Token != "123:abc" || cfg.AdminID != 42 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Fatalf("SessionTTL = %v, want 15m", cfg.SessionTTL)
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_ADMIN_ID", "42")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SESSION_TTL_MINUTES", "")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.SessionTTL != defaultSessionTTL {
		t.Fatalf("SessionTTL = %v, want default %v", cfg.SessionTTL, defaultSessionTTL)
	}
}

func TestConfigFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_ADMIN_ID", "42")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("missing token accepted")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_ADMIN_ID", "not-a-number")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("malformed admin id accepted")
	}

	t.Setenv("BOT_ADMIN_ID", "42")
	t.Setenv("SESSION_TTL_MINUTES", "-5")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("negative session TTL accepted")
	}
}

func TestParseUserID(t *testing.T) {
	tests := []struct {
		raw   string
		want  int64
		valid bool
	}{
		{"42", 42, true},
		{"  42  ", 42, true},
		{"0", 0, false},
		{"-7", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"42abc", 0, false},
	}

	for _, tc := range tests {
		got, err := parseUserID(tc.raw)
		if tc.valid {
			if err != nil {
				t.Errorf("parseUserID(%q) failed: %v", tc.raw, err)
				continue
			}
			if got != tc.want {
				t.Errorf("parseUserID(%q) = %d, want %d", tc.raw, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("parseUserID(%q) = %v, want ErrInvalidInput", tc.raw, err)
		}
	}
}
