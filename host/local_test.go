package host

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_grants/sdk"
	"okinoko_grants/store"
)

func newTestHost(t *testing.T) *Local {
	t.Helper()
	fixed := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)
	return NewLocal(store.NewMemory(""), WithContractID("grants"), WithClock(func() time.Time { return fixed }))
}

func TestInvokeSetsEnv(t *testing.T) {
	h := newTestHost(t)
	var first, second sdk.Env
	require.NoError(t, h.Invoke("hive:alice", time.Time{}, func() error {
		first = h.Env()
		return nil
	}))
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.Invoke("hive:bob", at, func() error {
		second = h.Env()
		return h.Reenter("hive:carol", func() error {
			assert.Equal(t, sdk.Address("hive:carol"), h.Env().Sender)
			assert.Equal(t, second.TxID, h.Env().TxID)
			return nil
		})
	}))

	assert.Equal(t, sdk.Address("hive:alice"), first.Sender)
	assert.Equal(t, int64(1756857600), first.Timestamp)
	assert.Equal(t, "grants", first.ContractID)
	assert.Equal(t, at.Unix(), second.Timestamp)
	assert.NotEmpty(t, first.TxID)
	assert.NotEqual(t, first.TxID, second.TxID)
	assert.Equal(t, sdk.Env{}, h.Env())
}

func TestDrawAndTransfer(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.Credit("hive:alice", 1000, sdk.AssetHbd))

	require.NoError(t, h.Draw("hive:alice", 400, sdk.AssetHbd))
	require.NoError(t, h.Transfer("hive:bob", 150, sdk.AssetHbd))

	bal := func(addr sdk.Address) int64 {
		n, err := h.Balance(addr, sdk.AssetHbd)
		require.NoError(t, err)
		return n
	}
	assert.Equal(t, int64(600), bal("hive:alice"))
	assert.Equal(t, int64(250), bal(h.ContractAddress()))
	assert.Equal(t, int64(150), bal("hive:bob"))

	// assets are separate ledgers
	n, err := h.Balance("hive:alice", sdk.AssetHive)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	err = h.Transfer("hive:bob", 251, sdk.AssetHbd)
	assert.ErrorIs(t, err, sdk.ErrInsufficientFunds)
	err = h.Draw("hive:alice", 601, sdk.AssetHbd)
	assert.ErrorIs(t, err, sdk.ErrInsufficientFunds)
	assert.Equal(t, int64(250), bal(h.ContractAddress()))

	assert.Error(t, h.Transfer("hive:bob", 0, sdk.AssetHbd))
	assert.Error(t, h.Credit("hive:bob", -1, sdk.AssetHbd))
}

func TestTransferHook(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.Credit(h.ContractAddress(), 100, sdk.AssetHbd))

	refused := errors.New("refused")
	var seen sdk.Address
	h.OnTransfer(func(to sdk.Address, amount int64, asset sdk.Asset) error {
		seen = to
		return refused
	})
	assert.ErrorIs(t, h.Transfer("hive:bob", 10, sdk.AssetHbd), refused)
	assert.Equal(t, sdk.Address("hive:bob"), seen)
	n, _ := h.Balance("hive:bob", sdk.AssetHbd)
	assert.Equal(t, int64(0), n)

	h.OnTransfer(nil)
	require.NoError(t, h.Transfer("hive:bob", 10, sdk.AssetHbd))
}

func TestGenesisRunsOnce(t *testing.T) {
	h := newTestHost(t)
	seeded, err := h.Genesis(map[sdk.Address]int64{"hive:alice": 5, "hive:bob": 7}, sdk.AssetHbd)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = h.Genesis(map[sdk.Address]int64{"hive:alice": 5}, sdk.AssetHbd)
	require.NoError(t, err)
	assert.False(t, seeded)

	n, _ := h.Balance("hive:alice", sdk.AssetHbd)
	assert.Equal(t, int64(5), n)

	_, err = newTestHost(t).Genesis(map[sdk.Address]int64{"hive:alice": 0}, sdk.AssetHbd)
	assert.Error(t, err)
}

func TestLogLines(t *testing.T) {
	h := newTestHost(t)
	h.Log("v|id:1")
	h.Log("pd|id:1")
	logs := h.Logs()
	assert.Equal(t, []string{"v|id:1", "pd|id:1"}, logs)
	logs[0] = "changed"
	assert.Equal(t, "v|id:1", h.Logs()[0])
}

func TestInvokeBuffersLedger(t *testing.T) {
	h := newTestHost(t)
	require.NoError(t, h.Credit("hive:alice", 1000, sdk.AssetHbd))
	bal := func(addr sdk.Address) int64 {
		n, err := h.Balance(addr, sdk.AssetHbd)
		require.NoError(t, err)
		return n
	}

	failed := errors.New("step failed")
	err := h.Invoke("hive:alice", time.Time{}, func() error {
		require.NoError(t, h.Draw("hive:alice", 300, sdk.AssetHbd))
		assert.Equal(t, int64(700), bal("hive:alice"))
		return failed
	})
	assert.ErrorIs(t, err, failed)
	assert.Equal(t, int64(1000), bal("hive:alice"))
	assert.Equal(t, int64(0), bal(h.ContractAddress()))

	// pending moves ride along with the next contract commit
	v := "1"
	require.NoError(t, h.Invoke("hive:alice", time.Time{}, func() error {
		require.NoError(t, h.Draw("hive:alice", 300, sdk.AssetHbd))
		return h.Store().Commit([]sdk.Change{{Key: "state", Value: &v}})
	}))
	assert.Equal(t, int64(700), bal("hive:alice"))
	assert.Equal(t, int64(300), bal(h.ContractAddress()))

	// leftovers are written when fn succeeds without a commit
	require.NoError(t, h.Invoke("hive:alice", time.Time{}, func() error {
		return h.Transfer("hive:bob", 100, sdk.AssetHbd)
	}))
	assert.Equal(t, int64(100), bal("hive:bob"))
	assert.Equal(t, int64(200), bal(h.ContractAddress()))
}
