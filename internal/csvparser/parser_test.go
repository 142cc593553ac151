package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commaSettings = config.Table{Delimiter: ","}

func TestParseReader(t *testing.T) {
	t.Run("numbers rows from display row 2", func(t *testing.T) {
		input := "S.n,Item,Cost\n1,Cement,100\n2,Sand,50\n"

		table, err := ParseReader(strings.NewReader(input), "bill.csv", commaSettings)
		require.NoError(t, err)

		assert.Equal(t, []string{"S.n", "Item", "Cost"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 2, table.Rows[0].Number)
		assert.Equal(t, 3, table.Rows[1].Number)

		v, ok := table.Value(table.Rows[1], "Item")
		assert.True(t, ok)
		assert.Equal(t, "Sand", v)
	})

	t.Run("keeps all-empty rows so numbering stays aligned", func(t *testing.T) {
		input := "A,B\n1,2\n,\n3,4\n"

		table, err := ParseReader(strings.NewReader(input), "t.csv", commaSettings)
		require.NoError(t, err)

		require.Len(t, table.Rows, 3)
		assert.Equal(t, 4, table.Rows[2].Number)
		assert.Equal(t, "3", table.Trimmed(table.Rows[2], "A"))
	})

	t.Run("blank lines take no row number", func(t *testing.T) {
		input := "A,B\n1,2\n\n3,4\n"

		table, err := ParseReader(strings.NewReader(input), "t.csv", commaSettings)
		require.NoError(t, err)

		require.Len(t, table.Rows, 2)
		assert.Equal(t, 3, table.Rows[1].Number)
		assert.Equal(t, "3", table.Trimmed(table.Rows[1], "A"))
	})

	t.Run("strips byte order mark and trims headers", func(t *testing.T) {
		input := "\xEF\xBB\xBF Work code , Work\nC1,Survey\n"

		table, err := ParseReader(strings.NewReader(input), "t.csv", commaSettings)
		require.NoError(t, err)

		assert.Equal(t, []string{"Work code", "Work"}, table.Headers)
	})

	t.Run("names blank headers by position", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("A,,C\n1,2,3\n"), "t.csv", commaSettings)
		require.NoError(t, err)

		assert.Equal(t, "Column_2", table.Headers[1])
	})

	t.Run("short rows read as empty trailing cells", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("A,B,C\n1\n"), "t.csv", commaSettings)
		require.NoError(t, err)

		v, ok := table.Value(table.Rows[0], "C")
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("semicolon delimiter", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("A;B\nx;y\n"), "t.csv", config.Table{Delimiter: "semicolon"})
		require.NoError(t, err)

		assert.Equal(t, "y", table.Trimmed(table.Rows[0], "B"))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader(""), "t.csv", commaSettings)
		assert.ErrorIs(t, err, types.ErrEmptyTable)
	})
}

func TestParse(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bill.csv")
		require.NoError(t, os.WriteFile(path, []byte("A\n1\n"), 0o644))

		table, err := Parse(path, commaSettings)
		require.NoError(t, err)
		assert.Equal(t, path, table.Source)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Parse(filepath.Join(t.TempDir(), "none.csv"), commaSettings)
		assert.ErrorContains(t, err, "failed to open file")
	})
}
