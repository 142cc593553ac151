// =============================================================================
// Bill Validator - Validation Engine
// =============================================================================
//
// This module orchestrates one validation run, from loading the references
// to assembling the final report.
//
// STAGES:
//   1. LoadingReferences  - allowed values, exclusions, work codes
//   2. LoadingBillTable   - parse the bill (CSV or XLSX)
//   3. GlobalColumnCheck  - every required column, plus the columns the
//      engine reads directly, must be in the header
//   4. PerInvoiceLoop     - group rows by invoice, run the check suite
//      (or ShortCircuitFail when columns are missing)
//   5. Assembled          - the report is returned
//
// FAILURES:
//   Stages 1 and 2 may fail with a *RunError wrapping a typed error (see
//   internal/types). Nothing after stage 2 fails: findings become report
//   content.
//
// CONCURRENCY:
//   A run is synchronous and single-threaded. The reference bundle is built
//   once and only read afterwards.
//
// =============================================================================

package engine

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/source"
	"github.com/ginjaninja78/bill-validator/internal/types"
	"github.com/ginjaninja78/bill-validator/internal/validation"
)

// =============================================================================
// STAGES
// =============================================================================

// Stage is a state of the validation state machine.
type Stage int

const (
	LoadingReferences Stage = iota
	LoadingBillTable
	GlobalColumnCheck
	PerInvoiceLoop
	ShortCircuitFail
	Assembled
)

var stageNames = [...]string{
	"LoadingReferences",
	"LoadingBillTable",
	"GlobalColumnCheck",
	"PerInvoiceLoop",
	"ShortCircuitFail",
	"Assembled",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s]
}

// MarshalText renders a stage by name in JSON and YAML reports.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ProgressFunc observes the invoice loop. It is called once per invoice,
// after that invoice's checks complete, with a 1-based current index.
type ProgressFunc func(current, total int, invoiceID string)

// =============================================================================
// ENGINE STRUCTURE
// =============================================================================

// Engine runs validations for one configuration. It holds no per-run
// state, so one Engine may run any number of times.
type Engine struct {
	cfg    *config.Config
	logger *zap.Logger
}

// RunError is returned when a run stops before a report exists. Err is
// one of the typed errors of internal/types.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string { return e.Err.Error() }

func (e *RunError) Unwrap() error { return e.Err }

// New creates a new Engine.
//
// PARAMETERS:
//   - cfg: The finalized run configuration.
//   - logger: Receives stage transitions and counts. May be nil.
//
// RETURNS:
//   - A new Engine instance.
func New(cfg *config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes one validation.
//
// PARAMETERS:
//   - progress: Optional observer of the invoice loop. May be nil.
//
// RETURNS:
//   - The complete report, with the stages passed through in Stages.
//   - A *RunError wrapping a *types.MissingReferenceError,
//     *types.ReferenceLoadError or *types.SourceReadError when the run
//     cannot start. No report is returned in that case.
func (e *Engine) Run(progress ProgressFunc) (*Report, error) {
	var stages []Stage
	enter := func(stage Stage) {
		stages = append(stages, stage)
		e.logger.Debug("Entering stage", zap.Stringer("stage", stage))
	}
	fail := func(err error) error {
		return &RunError{Stage: stages[len(stages)-1], Err: err}
	}

	// =========================================================================
	// STAGE 1: LOAD REFERENCES
	// =========================================================================

	enter(LoadingReferences)

	bundle, err := reference.Load(e.cfg.Files, e.cfg.Table, e.logger)
	if err != nil {
		e.logger.Error("Reference loading failed", zap.Error(err))
		return nil, fail(err)
	}

	required := reference.RequiredColumns(bundle.Allowed, e.cfg.Columns.Cost)
	suite := validation.NewSuite(e.cfg, bundle, required)

	// =========================================================================
	// STAGE 2: LOAD BILL TABLE
	// =========================================================================

	enter(LoadingBillTable)

	table, err := e.loadBill()
	if err != nil {
		e.logger.Error("Bill table could not be read", zap.Error(err))
		return nil, fail(err)
	}
	e.logger.Info("Loaded bill table",
		zap.String("path", table.Source),
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(table.Headers)))

	report := newReport(e.cfg, bundle, required, suite.Coordination())

	// =========================================================================
	// STAGE 3: GLOBAL COLUMN CHECK
	// =========================================================================

	enter(GlobalColumnCheck)

	report.MissingColumns = MissingColumns(table, e.checkedColumns(bundle, required))
	report.GlobalColumnsOK = len(report.MissingColumns) == 0

	if !report.GlobalColumnsOK {
		enter(ShortCircuitFail)
		e.logger.Warn("Required columns missing, skipping per-bill checks",
			zap.Strings("missing", report.MissingColumns))
		enter(Assembled)
		report.Stages = stages
		return report, nil
	}

	// =========================================================================
	// STAGE 4: PER-INVOICE LOOP
	// =========================================================================

	enter(PerInvoiceLoop)

	groups := GroupInvoices(table, e.cfg.Columns.Invoice)
	for i, group := range groups {
		result := suite.Run(table, group, true)

		report.Invoices = append(report.Invoices, group.InvoiceID)
		report.Results[group.InvoiceID] = result

		e.logger.Debug("Checked invoice",
			zap.String("invoice", group.InvoiceID),
			zap.Int("rows", result.RowCount),
			zap.Bool("passed", result.Passed()))

		if progress != nil {
			progress(i+1, len(groups), group.InvoiceID)
		}
	}
	report.TotalBills = len(groups)

	// =========================================================================
	// COMPLETE
	// =========================================================================

	enter(Assembled)
	report.Stages = stages
	e.logger.Info("Validation complete",
		zap.Int("bills", report.TotalBills),
		zap.Int("passed", len(report.Passed())))

	return report, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadBill reads the configured bill table. Every failure is reported as a
// SourceReadError naming the file.
func (e *Engine) loadBill() (*types.Table, error) {
	path := e.cfg.Files.Bill
	if strings.TrimSpace(path) == "" {
		return nil, &types.SourceReadError{Path: path, Err: errors.New("no bill file configured")}
	}

	table, err := source.Read(path, e.cfg.Table)
	if err != nil {
		return nil, &types.SourceReadError{Path: path, Err: err}
	}
	return table, nil
}

// checkedColumns is the set of columns the header must carry: the required
// set, then the invoice and coordination columns, then both work columns
// when a work-code reference is loaded.
func (e *Engine) checkedColumns(bundle *reference.Bundle, required []string) []string {
	columns := append([]string{}, required...)
	add := func(column string) {
		for _, c := range columns {
			if c == column {
				return
			}
		}
		columns = append(columns, column)
	}

	add(e.cfg.Columns.Invoice)
	add(e.cfg.Coordination.Column)
	if bundle.WorkCodes != nil {
		add(e.cfg.Columns.WorkCode)
		add(e.cfg.Columns.Work)
	}
	return columns
}

// MissingColumns returns the columns absent from the table header, in the
// order given.
func MissingColumns(table *types.Table, required []string) []string {
	missing := []string{}
	for _, column := range required {
		if !table.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	return missing
}

// GroupInvoices groups rows by invoice id in first-seen order. Rows with
// an empty invoice id (or a spreadsheet "NaN") belong to no invoice and
// are dropped.
func GroupInvoices(table *types.Table, invoiceColumn string) []validation.Group {
	index := make(map[string]int)
	var groups []validation.Group

	for i, row := range table.Rows {
		id := table.Trimmed(row, invoiceColumn)
		if id == "" || strings.EqualFold(id, "nan") {
			continue
		}

		pos, seen := index[id]
		if !seen {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, validation.Group{InvoiceID: id})
		}
		groups[pos].Rows = append(groups[pos].Rows, i)
	}

	return groups
}
