// =============================================================================
// Bill Validator - Reference Bundle
// =============================================================================
//
// The bundle holds every auxiliary table a validation run needs. It is
// built once, before any bill row is read, and is treated as read-only by
// every check afterwards.
//
// LOAD POLICY:
//   | Reference      | Absent             | Unreadable                     |
//   |----------------|--------------------|--------------------------------|
//   | allowed values | fatal              | fatal                          |
//   | exclusions     | no rules           | no rules + warning             |
//   | work codes     | no reference       | fatal (header contract broken) |
//
// =============================================================================

package reference

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/source"
)

// Bundle is the immutable set of references for one validation run.
type Bundle struct {
	Exclusions []ExclusionRule
	Allowed    *AllowedValues

	// WorkCodes is nil when no work-code reference was configured or found.
	WorkCodes *WorkCodeReference

	// Warnings carries non-fatal load problems for the report.
	Warnings []string
}

// Load builds the bundle from the configured files.
//
// PARAMETERS:
//   - files: The configured reference paths.
//   - settings: Shared table parsing settings.
//   - logger: Receives load progress and degrade warnings. May be nil.
//
// RETURNS:
//   - The loaded bundle.
//   - A *types.MissingReferenceError or *types.ReferenceLoadError when a
//     fatal reference problem is found.
func Load(files config.Files, settings config.Table, logger *zap.Logger) (*Bundle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	bundle := &Bundle{}

	allowed, err := LoadAllowedValues(files.AllowedValues, settings)
	if err != nil {
		return nil, err
	}
	bundle.Allowed = allowed
	logger.Info("Loaded allowed values",
		zap.String("path", files.AllowedValues),
		zap.Strings("columns", allowed.Columns))

	rules, err := LoadExclusionRules(files.Exclusions, settings)
	switch {
	case err != nil:
		warning := fmt.Sprintf("exclusions ignored: %v", err)
		bundle.Warnings = append(bundle.Warnings, warning)
		logger.Warn("Exclusion rules could not be loaded, continuing without exclusions",
			zap.String("path", files.Exclusions), zap.Error(err))
	case files.Exclusions != "" && !source.Exists(files.Exclusions):
		logger.Info("Exclusion file not found, continuing without exclusions",
			zap.String("path", files.Exclusions))
	default:
		bundle.Exclusions = rules
		logger.Info("Loaded exclusion rules", zap.Int("rules", len(rules)))
	}

	workCodes, err := LoadWorkCodeReference(files.WorkCodes, settings)
	if err != nil {
		return nil, err
	}
	bundle.WorkCodes = workCodes
	if workCodes != nil {
		logger.Info("Loaded work code reference",
			zap.String("path", files.WorkCodes),
			zap.Int("pairs", len(workCodes.Pairs)),
			zap.Bool("clean", workCodes.Diagnostics.Clean()))
	}

	return bundle, nil
}
