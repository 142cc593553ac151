package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BILLCHECK_FILES_BILL.
const EnvPrefix = "BILLCHECK"

// Override keys, in the dotted form of the YAML file. Flags and
// environment variables are bound to these keys.
const (
	KeyBill               = "files.bill"
	KeyAllowedValues      = "files.allowed_values"
	KeyExclusions         = "files.exclusions"
	KeyWorkCodes          = "files.work_codes"
	KeyPercentage         = "coordination.percentage"
	KeyTolerance          = "coordination.tolerance"
	KeyCoordinationColumn = "coordination.column"
	KeyCoordinationMatch  = "coordination.match"
	KeyCoordinationMarker = "coordination.marker"
	KeyAbsentPolicy       = "coordination.absent_policy"
	KeyDelimiter          = "table.delimiter"
	KeySheet              = "table.sheet"
	KeyOutputFormat       = "output.format"
	KeyOutputPath         = "output.path"
	KeyLogLevel           = "logging.level"
	KeyLogFile            = "logging.file"
	KeyLogFormat          = "logging.format"
)

// NewViper returns a viper instance reading BILLCHECK_* environment
// variables for every override key.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every key set in v (by flag, environment or
// explicit Set) onto cfg, then re-applies defaults and validates.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	strs := map[string]*string{
		KeyBill:               &cfg.Files.Bill,
		KeyAllowedValues:      &cfg.Files.AllowedValues,
		KeyExclusions:         &cfg.Files.Exclusions,
		KeyWorkCodes:          &cfg.Files.WorkCodes,
		KeyCoordinationColumn: &cfg.Coordination.Column,
		KeyCoordinationMarker: &cfg.Coordination.Marker,
		KeyDelimiter:          &cfg.Table.Delimiter,
		KeySheet:              &cfg.Table.Sheet,
		KeyOutputFormat:       &cfg.Output.Format,
		KeyOutputPath:         &cfg.Output.Path,
		KeyLogLevel:           &cfg.Logging.Level,
		KeyLogFile:            &cfg.Logging.File,
		KeyLogFormat:          &cfg.Logging.Format,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet(KeyCoordinationMatch) {
		cfg.Coordination.Match = MatchMode(strings.ToLower(v.GetString(KeyCoordinationMatch)))
	}
	if v.IsSet(KeyAbsentPolicy) {
		cfg.Coordination.AbsentPolicy = AbsentPolicy(strings.ToLower(v.GetString(KeyAbsentPolicy)))
	}

	floats := map[string]*float64{
		KeyPercentage: &cfg.Coordination.Percentage,
		KeyTolerance:  &cfg.Coordination.Tolerance,
	}
	for key, dst := range floats {
		if !v.IsSet(key) {
			continue
		}
		f, err := toFloat(v.Get(key))
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*dst = f
	}

	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func toFloat(value interface{}) (float64, error) {
	switch x := value.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("unsupported value %v", value)
}
