package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Http:      HttpConfig{Port: ":8080", WriteTimeout: time.Minute, ReviewWriteTimeout: 15 * time.Minute},
		Postgres:  PostgresConfig{Host: "localhost"},
		Redis:     RedisConfig{LedgerTTL: 72 * time.Hour},
		APIKey:    "key",
		JWTSecret: "secret",
		Alert: AlertConfig{
			RadiusM:       1000,
			BatchSize:     50,
			BatchInterval: time.Second,
			SendTimeout:   15 * time.Second,
			AvgSpeedKmh:   40,

			RecoverAfter:    30 * time.Minute,
			RecoverInterval: time.Minute,
		},
		Report:  ReportConfig{DefaultDurationSec: 15},
		Webhook: WebhookConfig{URL: "http://localhost/hook"},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"port_without_colon", func(c *Config) { c.Http.Port = "8080" }, true},
		{"batch_too_small", func(c *Config) { c.Alert.BatchSize = 9 }, true},
		{"batch_upper_bound", func(c *Config) { c.Alert.BatchSize = 100 }, false},
		{"batch_too_big", func(c *Config) { c.Alert.BatchSize = 101 }, true},
		{"timeout_too_short", func(c *Config) { c.Alert.SendTimeout = 5 * time.Second }, true},
		{"timeout_too_long", func(c *Config) { c.Alert.SendTimeout = 31 * time.Second }, true},
		{"no_jwt_secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"no_api_key", func(c *Config) { c.APIKey = "" }, true},
		{"zero_radius", func(c *Config) { c.Alert.RadiusM = 0 }, true},
		{"duration_out_of_range", func(c *Config) { c.Report.DefaultDurationSec = 31 }, true},
		{"webhook_missing", func(c *Config) { c.Webhook.URL = "" }, true},
		{"webhook_disabled", func(c *Config) { c.Webhook = WebhookConfig{Disabled: true} }, false},
		{"review_deadline_cleared", func(c *Config) { c.Http.ReviewWriteTimeout = 0 }, false},
		{"recovery_disabled", func(c *Config) { c.Alert.RecoverInterval, c.Alert.RecoverAfter = 0, 0 }, false},
		{"recovery_before_review_deadline", func(c *Config) { c.Alert.RecoverAfter = 5 * time.Minute }, true},
		{"recovery_negative_interval", func(c *Config) { c.Alert.RecoverInterval = -time.Second }, true},
		{"recovery_outlives_ledger", func(c *Config) { c.Redis.LedgerTTL = 10 * time.Minute }, true},
		{"review_deadline_negative", func(c *Config) { c.Http.ReviewWriteTimeout = -time.Second }, true},
		{"review_deadline_below_write_timeout", func(c *Config) {
			c.Http.WriteTimeout = time.Minute
			c.Http.ReviewWriteTimeout = 30 * time.Second
		}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := validConfig()
			c.mutate(cfg)
			err := cfg.Validate()
			if c.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("EMERGENCY_WEBHOOK_URL", "http://localhost/hook")
	t.Setenv("ALERT_BATCH_SIZE", "20")
	t.Setenv("ALERT_SEND_TIMEOUT", "12s")
	t.Setenv("ALERT_RADIUS_M", "1500.5")
	t.Setenv("TWILIO_SMS_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Alert.BatchSize != 20 {
		t.Fatalf("batch size: got %d", cfg.Alert.BatchSize)
	}
	if cfg.Alert.SendTimeout != 12*time.Second {
		t.Fatalf("send timeout: got %s", cfg.Alert.SendTimeout)
	}
	if cfg.Alert.RadiusM != 1500.5 {
		t.Fatalf("radius: got %v", cfg.Alert.RadiusM)
	}
	if !cfg.Twilio.SMSMode {
		t.Fatalf("expected sms mode")
	}
	if cfg.Alert.BatchInterval != time.Second || cfg.Report.DefaultDurationSec != 15 {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Alert, cfg.Report)
	}
}
