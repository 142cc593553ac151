package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/engine"
	"github.com/ginjaninja78/bill-validator/internal/reference"
	"github.com/ginjaninja78/bill-validator/internal/types"
	"github.com/ginjaninja78/bill-validator/internal/validation"
)

func sampleReport() *engine.Report {
	pass := &validation.BillResult{
		InvoiceID: "B1",
		RowCount:  2,
		Checks: map[validation.CheckName]bool{
			validation.ColumnsPresent:      true,
			validation.NoMissingValues:     true,
			validation.CoordinationCorrect: true,
			validation.AllowedValues:       true,
			validation.NumericValues:       true,
		},
		Details: validation.Details{
			Coordination: validation.CoordinationDetail{
				HasCoordination:  true,
				CoordinationRows: []int{3},
				BaseAmount:       decimal.NewFromInt(1000),
				Expected:         decimal.NewFromInt(150),
				Actual:           decimal.NewFromInt(150),
			},
		},
	}
	fail := &validation.BillResult{
		InvoiceID: "B2",
		RowCount:  3,
		Checks: map[validation.CheckName]bool{
			validation.ColumnsPresent:      true,
			validation.NoMissingValues:     false,
			validation.CoordinationCorrect: false,
			validation.AllowedValues:       false,
			validation.NumericValues:       false,
		},
		Details: validation.Details{
			MissingValues: map[string][]int{"Unit": {4}},
			Coordination: validation.CoordinationDetail{
				HasCoordination:  true,
				CoordinationRows: []int{6},
				BaseAmount:       decimal.NewFromInt(1000),
				Expected:         decimal.NewFromInt(150),
				Actual:           decimal.NewFromInt(300),
				Difference:       decimal.NewFromInt(150),
				ExcludedItems: []validation.ExcludedItem{
					{Row: 5, Item: "Supervisor", WorkCode: "S1", Cost: decimal.NewFromInt(50), Rule: "Item = Supervisor"},
				},
			},
			AllowedViolations: map[string][]string{"Unit": {"C", "kg"}},
			NumericViolations: map[string][]int{"Cost": {5}},
		},
	}

	return &engine.Report{
		Source:             "bill.csv",
		GlobalColumnsOK:    true,
		MissingColumns:     []string{},
		RequiredColumns:    []string{"Unit", "Cost"},
		Exclusions:         []reference.ExclusionRule{{Row: 2, Conditions: []reference.Condition{{Column: "Item", Value: "Supervisor"}}}},
		Allowed:            &reference.AllowedValues{Columns: []string{"Unit"}, Rules: map[string]reference.ColumnRule{"Unit": reference.NewColumnRule("Unit", []string{"m3", "blank"})}},
		Percentage:         15,
		Tolerance:          10,
		AbsentCoordination: config.AbsentFail,
		CoordinationRule:   `Item contains "coordination charge"`,
		Invoices:           []string{"B1", "B2"},
		Results:            map[string]*validation.BillResult{"B1": pass, "B2": fail},
		TotalBills:         2,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatText))
	out := buf.String()

	assert.Contains(t, out, "✓ All required columns present.")
	assert.Contains(t, out, "row 2: Item = Supervisor")
	assert.Contains(t, out, "Unit: m3 (blank allowed)")
	assert.Contains(t, out, "using 15% of base amount")
	assert.Contains(t, out, "✓ Bill B1")
	assert.Contains(t, out, "✗ Bill B2")
	assert.Contains(t, out, "Missing in 'Unit' at rows: 4")
	assert.Contains(t, out, "Expected: 150.00, Actual: 300.00, Diff: 150.00")
	assert.Contains(t, out, "- row 5: Supervisor (Code: S1): 50.00")
	assert.Contains(t, out, "Invalid values in 'Unit': C, kg")
	assert.Contains(t, out, "Non-numeric values in 'Cost' at rows: 5")
	assert.Contains(t, out, "Bills passed all checks: 1 - B1")
	assert.Contains(t, out, "Bills failed one or more checks: 1 - B2")
	assert.Contains(t, out, "1 out of 2 bills passed.")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Bill B1")), bytes.Index(buf.Bytes(), []byte("Bill B2")))
}

func TestWriteText_ShortCircuit(t *testing.T) {
	r := sampleReport()
	r.GlobalColumnsOK = false
	r.MissingColumns = []string{"Unit", "Work code"}
	r.Invoices = []string{}
	r.Results = map[string]*validation.BillResult{}
	r.TotalBills = 0

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))

	assert.Contains(t, buf.String(), "✗ Missing columns: Unit, Work code")
	assert.Contains(t, buf.String(), "Per-bill checks skipped.")
	assert.NotContains(t, buf.String(), "FINAL SUMMARY")
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, true, decoded["global_columns_ok"])
	assert.Equal(t, float64(2), decoded["total_bills"])
	results := decoded["results"].(map[string]interface{})
	b2 := results["B2"].(map[string]interface{})
	checks := b2["checks"].(map[string]interface{})
	assert.Equal(t, false, checks["coordination_correct"])
	coordination := b2["details"].(map[string]interface{})["coordination"].(map[string]interface{})
	assert.Equal(t, "150", coordination["difference"])
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatYAML))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, []interface{}{"B1", "B2"}, decoded["invoices"])
	assert.Equal(t, "fail", decoded["absent_coordination"])
}

func TestRender_Idempotent(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON, FormatYAML} {
		var a, b bytes.Buffer
		require.NoError(t, Render(&a, sampleReport(), format))
		require.NoError(t, Render(&b, sampleReport(), format))
		assert.Equal(t, a.String(), b.String(), string(format))
	}
}

func TestRenderFile_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	require.NoError(t, RenderFile(path, sampleReport(), FormatXLSX))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 3)
	assert.Equal(t, "Contract Bill No", summary[0][0])
	assert.Equal(t, "B1", summary[1][0])
	assert.Equal(t, "B2", summary[2][0])
	assert.Equal(t, "no_missing_values, coordination_correct, allowed_values, numeric_values", summary[2][3])
	assert.Equal(t, "1 out of 2 bills passed.", summary[len(summary)-1][0])

	findings, err := f.GetRows(FindingsSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(findings), 2)
	require.GreaterOrEqual(t, len(findings[1]), 4)
	assert.Equal(t, []string{"B2", "no_missing_values", "Unit", "4"}, findings[1][:4])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteReferences(t *testing.T) {
	codes, err := reference.BuildWorkCodeReference(mustTable())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteReferences(&buf, &reference.Bundle{
		Allowed:   sampleReport().Allowed,
		WorkCodes: codes,
		Warnings:  []string{"exclusions ignored: broken"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Warning: exclusions ignored: broken")
	assert.Contains(t, out, "Work code reference: 2 pairs")
	assert.Contains(t, out, "'Survey' has codes C1, C2 at rows: 2, 3")
}

func mustTable() *types.Table {
	return types.NewTable("workcodes.csv", []string{"Work code", "Work"}, []types.Row{
		{Number: 2, Cells: []string{"C1", "Survey"}},
		{Number: 3, Cells: []string{"C2", "Survey"}},
	})
}
