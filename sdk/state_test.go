package sdk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStateRoundTripsBinaryKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	st, err := OpenFileState(path)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())

	st.Set("\x01\x00\x00\x00\x00\x00\x00\x00\x07", "\xff\x00bin")
	st.Set("w:0:hive:alice", "100")
	require.NoError(t, st.Flush())

	reopened, err := OpenFileState(path)
	require.NoError(t, err)
	assert.Equal(t, st.Keys(), reopened.Keys())
	assert.Equal(t, "\xff\x00bin", *reopened.Get("\x01\x00\x00\x00\x00\x00\x00\x00\x07"))
	assert.Equal(t, "100", *reopened.Get("w:0:hive:alice"))
}

func TestFileStateRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"zz":"00"}`), 0o644))
	_, err := OpenFileState(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err = OpenFileState(path)
	assert.Error(t, err)
}

func TestMemStateFlushIsNoop(t *testing.T) {
	st := NewMemState()
	st.Set("a", "b")
	assert.NoError(t, st.Flush())
	st.Delete("a")
	assert.Nil(t, st.Get("a"))
}
