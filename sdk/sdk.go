package sdk

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

// AbortError is the panic value raised by Abort; entry points recover it into an error.
type AbortError struct {
	Msg string
}

func (e AbortError) Error() string { return e.Msg }

// Abort stops execution immediately, the surrounding call reverts all writes.
// Example payload: sdk.Abort("corrupt funding cycle")
func Abort(msg string) {
	panic(AbortError{Msg: msg})
}

// Env is the per-call execution environment.
type Env struct {
	TxID      string
	Sender    Address
	Timestamp int64
}

// Time returns the call timestamp as a UTC time.
func (e Env) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// Snapshot marks the host position (state writes plus emitted events) to roll back to.
type Snapshot struct {
	entries int
	events  int
}

// Host bundles everything the engine needs from its runtime: state, clock, wallets and logs.
type Host struct {
	mem     *MemState
	journal *Journal
	clock   clockwork.Clock
	logger  *slog.Logger
	events  []string
}

// NewHost wires a journaled state over mem. A nil clock falls back to the wall clock.
func NewHost(mem *MemState, clock clockwork.Clock, logger *slog.Logger) *Host {
	if mem == nil {
		mem = NewMemState()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		mem:     mem,
		journal: NewJournal(mem),
		clock:   clock,
		logger:  logger,
	}
}

func (h *Host) State() State           { return h.journal }
func (h *Host) Clock() clockwork.Clock { return h.clock }
func (h *Host) Logger() *slog.Logger   { return h.logger }
func (h *Host) Mem() *MemState         { return h.mem }

// Now is the clock's current unix second.
func (h *Host) Now() int64 {
	return h.clock.Now().Unix()
}

// Events returns a copy of the event lines emitted since the last drain.
func (h *Host) Events() []string {
	return append([]string(nil), h.events...)
}

// DrainEvents hands out the pending event lines and clears them.
func (h *Host) DrainEvents() []string {
	out := h.events
	h.events = nil
	return out
}

func (h *Host) Snapshot() Snapshot {
	return Snapshot{entries: h.journal.Snapshot(), events: len(h.events)}
}

// NewEnv stamps a fresh tx id and the clock's current second.
func (h *Host) NewEnv(sender Address) Env {
	return Env{
		TxID:      uuid.NewString(),
		Sender:    sender,
		Timestamp: h.Now(),
	}
}

// Log appends an event line; it is dropped again if the call reverts.
func (h *Host) Log(s string) {
	h.events = append(h.events, s)
	h.logger.Debug("event", "line", s)
}

// RevertToSnapshot undoes state writes and events recorded after snap.
func (h *Host) RevertToSnapshot(snap Snapshot) {
	h.journal.RevertToSnapshot(snap.entries)
	if snap.events <= len(h.events) {
		h.events = h.events[:snap.events]
	}
}

// Commit drops the undo log and flushes the backing file if there is one.
func (h *Host) Commit() error {
	h.journal.Commit()
	return h.mem.Flush()
}

// walletKey is kept apart from engine keys by its ascii prefix.
func walletKey(addr Address, cur Currency) string {
	return fmt.Sprintf("w:%d:%s", cur, addr)
}

// BalanceOf reads a wallet balance, zero when unknown.
func (h *Host) BalanceOf(addr Address, cur Currency) *uint256.Int {
	ptr := h.journal.Get(walletKey(addr, cur))
	if ptr == nil || *ptr == "" {
		return new(uint256.Int)
	}
	v, err := uint256.FromDecimal(*ptr)
	if err != nil {
		Abort("invalid wallet balance")
	}
	return v
}

func (h *Host) setBalance(addr Address, cur Currency, v *uint256.Int) {
	if v.IsZero() {
		h.journal.Delete(walletKey(addr, cur))
		return
	}
	h.journal.Set(walletKey(addr, cur), v.Dec())
}

// Deposit mints wallet funds out of thin air, used by scenarios and tests to seed payers.
func (h *Host) Deposit(addr Address, amount *uint256.Int, cur Currency) {
	bal := h.BalanceOf(addr, cur)
	sum, overflow := new(uint256.Int).AddOverflow(bal, amount)
	if overflow {
		Abort("wallet overflow")
	}
	h.setBalance(addr, cur, sum)
}

// Transfer moves funds between wallets.
func (h *Host) Transfer(from, to Address, amount *uint256.Int, cur Currency) error {
	if amount.IsZero() || from == to {
		return nil
	}
	bal := h.BalanceOf(from, cur)
	if bal.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from, bal.Dec(), amount.Dec())
	}
	h.setBalance(from, cur, new(uint256.Int).Sub(bal, amount))
	h.Deposit(to, amount, cur)
	return nil
}
