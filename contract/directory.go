package contract

import (
	"fmt"

	"juice_treasury/sdk"
)

// Directory maps projects to the terminal holding their funds.
type Directory interface {
	TerminalOf(projectID uint64) sdk.Address
	SetTerminal(projectID uint64, terminal sdk.Address) error
}

// DirectoryStore keeps the directory in state. Projects without an entry use the
// fallback terminal.
type DirectoryStore struct {
	state    sdk.State
	fallback sdk.Address
}

func NewDirectoryStore(state sdk.State, fallback sdk.Address) *DirectoryStore {
	return &DirectoryStore{state: state, fallback: fallback}
}

func (d *DirectoryStore) TerminalOf(projectID uint64) sdk.Address {
	ptr := d.state.Get(projectTerminalKey(projectID))
	if ptr == nil || *ptr == "" {
		return d.fallback
	}
	return sdk.Address(*ptr)
}

func (d *DirectoryStore) SetTerminal(projectID uint64, terminal sdk.Address) error {
	if terminal.Domain() != sdk.AddressDomainContract || !terminal.IsValid() {
		return fmt.Errorf("%w: terminal %q", ErrInvalidAddress, terminal)
	}
	if terminal == d.fallback {
		if d.state.Get(projectTerminalKey(projectID)) != nil {
			d.state.Delete(projectTerminalKey(projectID))
		}
		return nil
	}
	stateSetIfChanged(d.state, projectTerminalKey(projectID), terminal.String())
	return nil
}
