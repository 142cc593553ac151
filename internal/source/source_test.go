package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bill-validator/internal/config"
	"github.com/ginjaninja78/bill-validator/internal/types"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv by extension", func(t *testing.T) {
		path := filepath.Join(dir, "Bill.CSV")
		require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2\n"), 0o644))

		table, err := Read(path, config.Table{Delimiter: ","})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, table.Headers)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Read(filepath.Join(dir, "bill.json"), config.Table{})
		assert.ErrorIs(t, err, types.ErrUnsupportedFile)
	})
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.csv")
	require.NoError(t, os.WriteFile(path, []byte("A\n"), 0o644))

	assert.True(t, Exists(path))
	assert.False(t, Exists(""))
	assert.False(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "other.csv")))
}
