package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingFileRollsAndPrunes(t *testing.T) {
	dir := t.TempDir()
	rf, err := OpenRotatingFile(dir, "console.log", 1, 2)
	require.NoError(t, err)
	defer rf.Close()

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rf.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	chunk := bytes.Repeat([]byte("x"), 700*1024)
	for i := 0; i < 4; i++ {
		_, err := rf.Write(chunk)
		require.NoError(t, err)
	}

	rolled, err := filepath.Glob(filepath.Join(dir, "console.log.*.gz"))
	require.NoError(t, err)
	assert.Len(t, rolled, 2)

	info, err := os.Stat(rf.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())

	require.NoError(t, rf.Close())
	_, err = rf.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
