package config_test

import (
	"testing"

	"github.com/radieske/p2p-wager-backend/internal/shared/config"
)

func TestDefaultsPerService(t *testing.T) {
	cases := []struct {
		service     string
		httpPort    string
		metricsPort string
	}{
		{"bet-service", "8083", "9099"},
		{"notification-service", "8084", "9095"},
		{"notification-worker", "", "9097"},
		{"", "8080", "9095"},
	}
	for _, c := range cases {
		t.Setenv("SERVICE_NAME", c.service)
		cfg := config.Load()
		if cfg.HTTPPort != c.httpPort {
			t.Errorf("%s: HTTPPort = %q, want %q", c.service, cfg.HTTPPort, c.httpPort)
		}
		if cfg.MetricsPort != c.metricsPort {
			t.Errorf("%s: MetricsPort = %q, want %q", c.service, cfg.MetricsPort, c.metricsPort)
		}
	}
}

func TestTopicAndTTLDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "bet-service")
	cfg := config.Load()
	if cfg.TopicBetActivity != "bet_activity" {
		t.Errorf("TopicBetActivity = %q", cfg.TopicBetActivity)
	}
	if cfg.TopicBetActivityDLQ != "bet_activity_dlq" {
		t.Errorf("TopicBetActivityDLQ = %q", cfg.TopicBetActivityDLQ)
	}
	if cfg.RedisPubSubChannel != "bet_activity_broadcast" {
		t.Errorf("RedisPubSubChannel = %q", cfg.RedisPubSubChannel)
	}
	if cfg.FeedCacheTTLSeconds != 60 {
		t.Errorf("FeedCacheTTLSeconds = %d, want 60", cfg.FeedCacheTTLSeconds)
	}
}

func TestTTLOverride(t *testing.T) {
	t.Setenv("FEED_CACHE_TTL_SECONDS", "120")
	cfg := config.Load()
	if cfg.FeedCacheTTLSeconds != 120 {
		t.Errorf("FeedCacheTTLSeconds = %d, want 120", cfg.FeedCacheTTLSeconds)
	}

	t.Setenv("FEED_CACHE_TTL_SECONDS", "abc")
	cfg = config.Load()
	if cfg.FeedCacheTTLSeconds != 60 {
		t.Errorf("invalid override: FeedCacheTTLSeconds = %d, want default 60", cfg.FeedCacheTTLSeconds)
	}
}
