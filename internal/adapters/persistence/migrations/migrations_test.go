package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryUpHasDown(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		entries, err := fs.ReadDir(files, dialect)
		require.NoError(t, err)
		require.NotEmpty(t, entries)

		names := map[string]bool{}
		for _, e := range entries {
			names[e.Name()] = true
		}
		for name := range names {
			if strings.HasSuffix(name, ".up.sql") {
				down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
				assert.True(t, names[down], "%s/%s has no down migration", dialect, name)
			}
		}
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("sqlite", nil)
	assert.Error(t, err)
}
