package helpers

import (
	"testing"

	"github.com/reaver89/time-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration_Valid(t *testing.T) {
	cases := map[string]int{
		"2h":       7200,
		"30m":      1800,
		"1h30m":    5400,
		"1.5h":     5400,
		"1h 30m":   5400,
		" 2H ":     7200,
		"1H15M":    4500,
		".25h":     900,
		"0.1h":     360,
		"45 m":     2700,
		"8h0m":     28800,
		"1.333h":   4799,
		"0m":       0,
		"10h 5m":   36300,
		"1.5h 10m": 6000,
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			got, err := ParseDuration(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "h", "m", "2", "1.5m", "2h30", "-1h", "1d", "30m2h"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDuration(input)
			require.Error(t, err)

			var perr *models.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "duration", perr.Kind)
			assert.Equal(t, input, perr.Input)
			assert.Contains(t, err.Error(), "1h30m")
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "2h", FormatSeconds(7200))
	assert.Equal(t, "0m", FormatSeconds(0))
	assert.Equal(t, "1h 30m", FormatSeconds(90*60))
	assert.Equal(t, "0m", FormatSeconds(59))
	assert.Equal(t, "45m", FormatSeconds(45*60+59))
	assert.Equal(t, "26h 1m", FormatSeconds(26*3600+61))
	assert.Equal(t, "0m", FormatSeconds(-120))
}

func TestFormatSignedSeconds(t *testing.T) {
	assert.Equal(t, "+1h 30m", FormatSignedSeconds(5400))
	assert.Equal(t, "-2h", FormatSignedSeconds(-7200))
	assert.Equal(t, "0m", FormatSignedSeconds(0))
	assert.Equal(t, "0m", FormatSignedSeconds(-30))
}

func TestNormalizeStartTime(t *testing.T) {
	got, err := NormalizeStartTime("09:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", got)

	got, err = NormalizeStartTime("13:45:30")
	require.NoError(t, err)
	assert.Equal(t, "13:45:30", got)

	for _, bad := range []string{"", "9:00", "24:00", "12:60", "noon", "12:00:00:00"} {
		_, err := NormalizeStartTime(bad)
		var perr *models.ParseError
		assert.ErrorAs(t, err, &perr, bad)
	}
}
