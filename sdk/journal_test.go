package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJournalRevertRestoresPreviousValues(t *testing.T) {
	mem := NewMemState()
	mem.Set("a", "1")
	j := NewJournal(mem)

	snap := j.Snapshot()
	j.Set("a", "2")
	j.Set("b", "x")
	j.Delete("a")
	assert.Equal(t, 3, j.Dirty())

	j.RevertToSnapshot(snap)
	assert.Equal(t, "1", *mem.Get("a"))
	assert.Nil(t, mem.Get("b"))
	assert.Equal(t, 0, j.Dirty())
}

func TestJournalNestedSnapshots(t *testing.T) {
	j := NewJournal(NewMemState())
	j.Set("k", "outer")
	inner := j.Snapshot()
	j.Set("k", "inner")
	j.RevertToSnapshot(inner)
	assert.Equal(t, "outer", *j.Get("k"))

	j.Commit()
	assert.Equal(t, 0, j.Dirty())
	assert.Equal(t, "outer", *j.Get("k"))
}

func TestJournalInvalidSnapshotAborts(t *testing.T) {
	j := NewJournal(NewMemState())
	assert.PanicsWithValue(t, AbortError{Msg: "invalid journal snapshot"}, func() {
		j.RevertToSnapshot(1)
	})
}
