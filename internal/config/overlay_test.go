package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides_Set(t *testing.T) {
	cfg := Default()
	v := NewViper()
	v.Set(KeyBill, "bill.csv")
	v.Set(KeyPercentage, 12.5)
	v.Set(KeyTolerance, "0")
	v.Set(KeyAbsentPolicy, "PASS")
	v.Set(KeyCoordinationMatch, "equals")
	v.Set(KeyCoordinationColumn, "Work code")
	v.Set(KeyCoordinationMarker, "C")

	require.NoError(t, ApplyOverrides(cfg, v))

	assert.Equal(t, "bill.csv", cfg.Files.Bill)
	assert.Equal(t, 12.5, cfg.Coordination.Percentage)
	assert.Equal(t, 0.0, cfg.Coordination.Tolerance)
	assert.Equal(t, AbsentPass, cfg.Coordination.AbsentPolicy)
	assert.Equal(t, MatchEquals, cfg.Coordination.Match)
	assert.Equal(t, "Work code", cfg.Coordination.Column)
	assert.Equal(t, "Cost", cfg.Columns.Cost, "untouched keys keep their value")
}

func TestApplyOverrides_Env(t *testing.T) {
	t.Setenv("BILLCHECK_FILES_ALLOWED_VALUES", "refs/allowed.csv")
	t.Setenv("BILLCHECK_COORDINATION_PERCENTAGE", "18")

	cfg := Default()
	require.NoError(t, ApplyOverrides(cfg, NewViper()))

	assert.Equal(t, "refs/allowed.csv", cfg.Files.AllowedValues)
	assert.Equal(t, 18.0, cfg.Coordination.Percentage)
}

func TestApplyOverrides_Flags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("percent", 15, "")
	flags.String("format", "text", "")
	require.NoError(t, flags.Parse([]string{"--percent", "20"}))

	v := NewViper()
	require.NoError(t, v.BindPFlag(KeyPercentage, flags.Lookup("percent")))
	require.NoError(t, v.BindPFlag(KeyOutputFormat, flags.Lookup("format")))

	cfg := Default()
	cfg.Output.Format = "json"
	require.NoError(t, ApplyOverrides(cfg, v))

	assert.Equal(t, 20.0, cfg.Coordination.Percentage)
	assert.Equal(t, "json", cfg.Output.Format, "unchanged flags do not override the file")
}

func TestApplyOverrides_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
	}{
		{KeyPercentage, "abc"},
		{KeyPercentage, 0},
		{KeyTolerance, -1},
		{KeyAbsentPolicy, "maybe"},
		{KeyOutputFormat, "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := NewViper()
			v.Set(tt.key, tt.value)
			assert.Error(t, ApplyOverrides(Default(), v))
		})
	}
}
