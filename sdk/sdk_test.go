package sdk

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHost() (*Host, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewHost(nil, clock, NewLogger(false)), clock
}

func TestHostTransfer(t *testing.T) {
	h, _ := newTestHost()
	h.Deposit("hive:alice", uint256.NewInt(100), CurrencyETH)

	require.NoError(t, h.Transfer("hive:alice", "hive:bob", uint256.NewInt(30), CurrencyETH))
	assert.Equal(t, uint64(70), h.BalanceOf("hive:alice", CurrencyETH).Uint64())
	assert.Equal(t, uint64(30), h.BalanceOf("hive:bob", CurrencyETH).Uint64())
	assert.True(t, h.BalanceOf("hive:bob", CurrencyUSD).IsZero())

	err := h.Transfer("hive:bob", "hive:alice", uint256.NewInt(31), CurrencyETH)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, uint64(30), h.BalanceOf("hive:bob", CurrencyETH).Uint64())
}

func TestHostRevertDropsWritesAndEvents(t *testing.T) {
	h, _ := newTestHost()
	h.Log("keep")
	h.Deposit("hive:alice", uint256.NewInt(5), CurrencyETH)
	require.NoError(t, h.Commit())

	snap := h.Snapshot()
	h.Log("drop")
	h.Deposit("hive:alice", uint256.NewInt(5), CurrencyETH)
	h.RevertToSnapshot(snap)

	assert.Equal(t, []string{"keep"}, h.Events())
	assert.Equal(t, uint64(5), h.BalanceOf("hive:alice", CurrencyETH).Uint64())
	assert.Equal(t, []string{"keep"}, h.DrainEvents())
	assert.Empty(t, h.Events())
}

func TestHostEnvFollowsClock(t *testing.T) {
	h, clock := newTestHost()
	env := h.NewEnv("hive:alice")
	assert.NotEmpty(t, env.TxID)
	assert.Equal(t, Address("hive:alice"), env.Sender)

	clock.Advance(90 * time.Second)
	later := h.NewEnv("hive:alice")
	assert.Equal(t, env.Timestamp+90, later.Timestamp)
	assert.NotEqual(t, env.TxID, later.TxID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 1, 30, 0, time.UTC), later.Time())
}

func TestAddressDomains(t *testing.T) {
	assert.Equal(t, AddressDomainContract, Address("contract:terminal-eth").Domain())
	assert.Equal(t, AddressDomainUser, Address("hive:alice").Domain())
	assert.True(t, Address("hive:alice").IsValid())
	assert.False(t, Address("alice").IsValid())
	assert.False(t, Address("hive:").IsValid())
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" USD ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, c)
	_, err = ParseCurrency("btc")
	assert.Error(t, err)
}
