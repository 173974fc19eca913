package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 9, cfg.Schedule.StartHour)
	assert.Equal(t, 17, cfg.Schedule.EndHour)
	assert.Equal(t, 30, cfg.Schedule.SlotDurationMinutes)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, cfg.Schedule.DaysOff)
}

func TestLoadRejectsInvalidSlotDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0"},
		{"negative", "-15"},
		{"over an hour", "90"},
		{"garbage", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SLOT_DURATION_MINUTES", tt.value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, 30, cfg.Schedule.SlotDurationMinutes)
		})
	}
}

func TestLoadRejectsInvertedBusinessHours(t *testing.T) {
	t.Setenv("BUSINESS_HOURS_START", "18")
	t.Setenv("BUSINESS_HOURS_END", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Schedule.StartHour)
	assert.Equal(t, 17, cfg.Schedule.EndHour)
}

func TestParseDaysOff(t *testing.T) {
	assert.Equal(t, []time.Weekday{time.Sunday, time.Saturday}, parseDaysOff("0,6"))
	assert.Equal(t, []time.Weekday{time.Monday}, parseDaysOff("1, 9, x"))
	assert.Nil(t, parseDaysOff(""))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b,"))
	assert.Nil(t, splitList(""))
}
