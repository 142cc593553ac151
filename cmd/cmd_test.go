package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bill-validator/internal/types"
)

const (
	testAllowed = "Unit\nm3\nnos\n"
	testBill    = "S.n,Contract Bill No,Item,Work code,Work,Unit,Quantity,Rate per unit,Cost\n" +
		"1,B1,Concrete,W1,Civil,m3,10,100,1000\n" +
		"2,B1,Coordination charge,C,Coordination,nos,1,150,150\n" +
		"3,B2,Paint,W2,Finishing,m3,1,100,100\n"
)

func writeInputs(t *testing.T) (dir, bill, allowed string) {
	t.Helper()
	dir = t.TempDir()
	bill = filepath.Join(dir, "bill.csv")
	allowed = filepath.Join(dir, "allowed.csv")
	require.NoError(t, os.WriteFile(bill, []byte(testBill), 0o644))
	require.NoError(t, os.WriteFile(allowed, []byte(testAllowed), 0o644))
	return dir, bill, allowed
}

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidate_Text(t *testing.T) {
	_, bill, allowed := writeInputs(t)

	out, err := execute(t, "validate", "--bill", bill, "--allowed", allowed)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Bill B1")
	assert.Contains(t, out, "✗ Bill B2")
	assert.Contains(t, out, "No coordination charge found")
	assert.Contains(t, out, "1 out of 2 bills passed.")
}

func TestValidate_JSONWithOverrides(t *testing.T) {
	_, bill, allowed := writeInputs(t)

	out, err := execute(t, "validate", "--bill", bill, "--allowed", allowed,
		"--format", "json", "--absent-coordination", "pass", "--percent", "15")
	require.NoError(t, err)

	var decoded struct {
		Invoices   []string `json:"invoices"`
		TotalBills int      `json:"total_bills"`
		Absent     string   `json:"absent_coordination"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []string{"B1", "B2"}, decoded.Invoices)
	assert.Equal(t, "pass", decoded.Absent)
}

func TestValidate_OutputDirectory(t *testing.T) {
	dir, bill, allowed := writeInputs(t)
	reports := filepath.Join(dir, "reports") + string(os.PathSeparator)

	_, err := execute(t, "validate", "--bill", bill, "--allowed", allowed, "--format", "xlsx", "--output", reports)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "reports", "*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestValidate_FailOnFindings(t *testing.T) {
	_, bill, allowed := writeInputs(t)

	_, err := execute(t, "validate", "--bill", bill, "--allowed", allowed, "--fail-on-findings")

	var findings *FindingsError
	require.ErrorAs(t, err, &findings)
	assert.Equal(t, 1, findings.Failed)
	assert.Equal(t, 2, findings.Total)
}

func TestValidate_FailOnFindings_MissingInvoiceColumn(t *testing.T) {
	dir, _, allowed := writeInputs(t)
	bill := filepath.Join(dir, "noinvoice.csv")
	require.NoError(t, os.WriteFile(bill, []byte("S.n,Item,Work code,Work,Unit,Cost\n1,Paint,W2,Finishing,kg,abc\n"), 0o644))

	out, err := execute(t, "validate", "--bill", bill, "--allowed", allowed, "--fail-on-findings")

	var findings *FindingsError
	require.ErrorAs(t, err, &findings)
	assert.Equal(t, []string{"Contract Bill No"}, findings.MissingColumns)
	assert.Contains(t, out, "Missing columns: Contract Bill No")
}

func TestValidate_FatalErrors(t *testing.T) {
	dir, bill, allowed := writeInputs(t)

	_, err := execute(t, "validate", "--bill", bill, "--allowed", filepath.Join(dir, "none.csv"))
	var missing *types.MissingReferenceError
	assert.ErrorAs(t, err, &missing)

	_, err = execute(t, "validate", "--bill", filepath.Join(dir, "none.csv"), "--allowed", allowed)
	var readErr *types.SourceReadError
	assert.ErrorAs(t, err, &readErr)

	_, err = execute(t, "validate", "--bill", bill, "--allowed", allowed, "--format", "xlsx")
	assert.ErrorContains(t, err, "need --output")

	_, err = execute(t, "validate", "--config", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestValidate_ConfigFile(t *testing.T) {
	dir, bill, allowed := writeInputs(t)
	configPath := filepath.Join(dir, "billcheck.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"files:\n  bill: "+bill+"\n  allowed_values: "+allowed+"\ncoordination:\n  absent_policy: pass\n"), 0o644))

	out, err := execute(t, "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 out of 2 bills passed.")
}

func TestReferences(t *testing.T) {
	dir, _, allowed := writeInputs(t)
	codes := filepath.Join(dir, "codes.csv")
	require.NoError(t, os.WriteFile(codes, []byte("Work code,Work\nC1,Survey\nC2,Survey\n"), 0o644))

	out, err := execute(t, "references", "--allowed", allowed, "--workcodes", codes)
	require.NoError(t, err)

	assert.Contains(t, out, "Unit: m3, nos")
	assert.Contains(t, out, "'Survey' has codes C1, C2 at rows: 2, 3")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Bill Validator "+Version)
	assert.Contains(t, out, "work_pairs_valid")
	assert.Contains(t, out, "Env prefix: BILLCHECK_")

	out, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}
