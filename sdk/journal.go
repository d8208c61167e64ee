package sdk

type journalEntry struct {
	key     string
	prev    string
	existed bool
}

// Journal records the previous value of every key it touches so a call can be
// rolled back to any earlier snapshot.
type Journal struct {
	backend State
	entries []journalEntry
}

func NewJournal(backend State) *Journal {
	return &Journal{backend: backend}
}

func (j *Journal) Get(key string) *string {
	return j.backend.Get(key)
}

func (j *Journal) Set(key, value string) {
	j.remember(key)
	j.backend.Set(key, value)
}

func (j *Journal) Delete(key string) {
	j.remember(key)
	j.backend.Delete(key)
}

func (j *Journal) remember(key string) {
	entry := journalEntry{key: key}
	if prev := j.backend.Get(key); prev != nil {
		entry.prev = *prev
		entry.existed = true
	}
	j.entries = append(j.entries, entry)
}

// Snapshot returns an identifier for the current journal position.
func (j *Journal) Snapshot() int {
	return len(j.entries)
}

// RevertToSnapshot undoes every write made after the snapshot, newest first.
func (j *Journal) RevertToSnapshot(id int) {
	if id < 0 || id > len(j.entries) {
		Abort("invalid journal snapshot")
	}
	for i := len(j.entries) - 1; i >= id; i-- {
		e := j.entries[i]
		if e.existed {
			j.backend.Set(e.key, e.prev)
		} else {
			j.backend.Delete(e.key)
		}
	}
	j.entries = j.entries[:id]
}

// Commit forgets the undo log; writes already live in the backend.
func (j *Journal) Commit() {
	j.entries = j.entries[:0]
}

// Dirty reports how many writes are pending since the last commit.
func (j *Journal) Dirty() int {
	return len(j.entries)
}
