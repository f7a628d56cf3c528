package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/toeic-session-service/internal/events"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_WARNINGS", "")
	t.Setenv("EVENTS_PUBLISHER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []time.Duration{5 * time.Minute, time.Minute}, cfg.Session.Warnings)
	assert.Equal(t, time.Second, cfg.Session.Tick)
	assert.True(t, cfg.Session.RequireConfirmation)
	assert.Equal(t, "gochannel", cfg.Events.Publisher)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_WARNINGS", "10m, 30s")
	t.Setenv("SESSION_TICK", "500ms")
	t.Setenv("FINAL_TEST_REQUIRE_CONFIRMATION", "false")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []time.Duration{10 * time.Minute, 30 * time.Second}, cfg.Session.Warnings)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.Tick)
	assert.False(t, cfg.Session.RequireConfirmation)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_BadWarnings(t *testing.T) {
	t.Setenv("SESSION_WARNINGS", "five minutes")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SESSION_WARNINGS")
}

func TestCreateEventPublisher(t *testing.T) {
	logger := slog.Default()

	pub, err := (&EventConfig{Enabled: false}).CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.MockEventPublisher{}, pub)

	pub, err = (&EventConfig{Enabled: true, Publisher: "gochannel", SessionTopic: "t"}).CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.WatermillPublisher{}, pub)
	assert.NoError(t, pub.Close())

	pub, err = (&EventConfig{Enabled: true, Publisher: "carrier-pigeon"}).CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.MockEventPublisher{}, pub)
}

func TestGetKafkaBrokers(t *testing.T) {
	c := EventConfig{KafkaBrokers: "a:9092, b:9092"}
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.GetKafkaBrokers())
}
