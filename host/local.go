// Package host provides an in-process execution host: it owns the contract
// store, a simple per-asset ledger of account balances and the invocation env.
package host

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"okinoko_grants/sdk"
)

// TransferHook runs inside Transfer before value moves. Returning an error
// makes the transfer fail.
type TransferHook func(to sdk.Address, amount int64, asset sdk.Asset) error

// Local serializes invocations the way a chain would: one at a time, each
// with its own tx id and block time.
type Local struct {
	mu         sync.Mutex
	store      sdk.Store
	log        *zap.Logger
	contractID string
	clock      func() time.Time

	env   sdk.Env
	hook  TransferHook
	lines []string
	// ledger buffers balance writes of the running invocation, nil outside Invoke.
	ledger *ledgerBuffer
}

// ledgerBuffer holds pending balance writes in first-write order.
type ledgerBuffer struct {
	writes map[string]string
	order  []string
}

func (b *ledgerBuffer) set(key, value string) {
	if _, ok := b.writes[key]; !ok {
		b.order = append(b.order, key)
	}
	b.writes[key] = value
}

// drain returns the pending writes as store changes and empties the buffer.
func (b *ledgerBuffer) drain() []sdk.Change {
	out := make([]sdk.Change, 0, len(b.order))
	for _, key := range b.order {
		v := b.writes[key]
		out = append(out, sdk.Change{Key: key, Value: &v})
	}
	b.writes = map[string]string{}
	b.order = nil
	return out
}

// invocationStore hands the contract a store whose commits carry the
// pending ledger writes in the same batch.
type invocationStore struct {
	h *Local
}

func (s invocationStore) Get(key string) (*string, error) { return s.h.store.Get(key) }

func (s invocationStore) Commit(changes []sdk.Change) error {
	if s.h.ledger == nil {
		return s.h.store.Commit(changes)
	}
	pending := s.h.ledger.drain()
	return s.h.store.Commit(append(pending, changes...))
}

func (s invocationStore) Close() error { return s.h.store.Close() }

type Option func(*Local)

func WithLogger(l *zap.Logger) Option {
	return func(h *Local) {
		if l != nil {
			h.log = l
		}
	}
}

func WithContractID(id string) Option {
	return func(h *Local) {
		if id != "" {
			h.contractID = id
		}
	}
}

// WithClock sets the time source used when Invoke gets a zero time.
func WithClock(clock func() time.Time) Option {
	return func(h *Local) {
		if clock != nil {
			h.clock = clock
		}
	}
}

func NewLocal(store sdk.Store, opts ...Option) *Local {
	h := &Local{
		store:      store,
		log:        zap.NewNop(),
		contractID: "okinoko_grants",
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ContractAddress is the ledger account holding the contract's funds.
func (h *Local) ContractAddress() sdk.Address {
	return sdk.Address("contract:" + h.contractID)
}

func (h *Local) Env() sdk.Env { return h.env }

// Store returns the contract store. Contract commits also flush the ledger
// writes buffered so far in the invocation.
func (h *Local) Store() sdk.Store { return invocationStore{h: h} }

func (h *Local) Log(line string) {
	h.lines = append(h.lines, line)
	h.log.Info("contract log", zap.String("tx", h.env.TxID), zap.String("line", line))
}

// Logs returns every console line written so far.
func (h *Local) Logs() []string {
	out := make([]string, len(h.lines))
	copy(out, h.lines)
	return out
}

// OnTransfer installs the transfer hook, nil removes it.
func (h *Local) OnTransfer(hook TransferHook) {
	h.hook = hook
}

// Invoke runs fn as one transaction sent by sender at the given time. A zero
// time means "now" from the host clock. Ledger moves made during fn are
// dropped when fn fails; leftovers no contract commit picked up are written
// when it succeeds.
func (h *Local) Invoke(sender sdk.Address, at time.Time, fn func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if at.IsZero() {
		at = h.clock()
	}
	h.env = sdk.Env{
		ContractID: h.contractID,
		TxID:       uuid.NewString(),
		Sender:     sender,
		Timestamp:  at.Unix(),
	}
	h.ledger = &ledgerBuffer{writes: map[string]string{}}
	defer func() {
		h.env = sdk.Env{}
		h.ledger = nil
	}()
	if err := fn(); err != nil {
		return err
	}
	if pending := h.ledger.drain(); len(pending) > 0 {
		if err := h.store.Commit(pending); err != nil {
			return fmt.Errorf("commit ledger: %w", err)
		}
	}
	return nil
}

// Reenter runs fn with a different sender inside the current invocation.
// Transfer hooks use it to act as the recipient calling back.
func (h *Local) Reenter(sender sdk.Address, fn func() error) error {
	prev := h.env
	h.env.Sender = sender
	defer func() { h.env = prev }()
	return fn()
}

// -----------------------------------------------------------------------------
// Ledger
// -----------------------------------------------------------------------------

func ledgerKey(addr sdk.Address, asset sdk.Asset) string {
	return "ledger:" + asset.String() + ":" + addr.String()
}

// Balance reads an account balance in raw scaled units.
func (h *Local) Balance(addr sdk.Address, asset sdk.Asset) (int64, error) {
	key := ledgerKey(addr, asset)
	if h.ledger != nil {
		if v, ok := h.ledger.writes[key]; ok {
			return strconv.ParseInt(v, 10, 64)
		}
	}
	ptr, err := h.store.Get(key)
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	if ptr == nil || *ptr == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(*ptr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance of %s: %w", addr, err)
	}
	return n, nil
}

// Credit mints amount into addr, used to seed genesis balances.
func (h *Local) Credit(addr sdk.Address, amount int64, asset sdk.Asset) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive")
	}
	bal, err := h.Balance(addr, asset)
	if err != nil {
		return err
	}
	return h.writeLedger(map[string]int64{ledgerKey(addr, asset): bal + amount})
}

// writeLedger buffers balances inside an invocation and commits them
// directly outside of one.
func (h *Local) writeLedger(balances map[string]int64) error {
	keys := make([]string, 0, len(balances))
	for k := range balances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if h.ledger != nil {
		for _, k := range keys {
			h.ledger.set(k, strconv.FormatInt(balances[k], 10))
		}
		return nil
	}
	changes := make([]sdk.Change, 0, len(keys))
	for _, k := range keys {
		v := strconv.FormatInt(balances[k], 10)
		changes = append(changes, sdk.Change{Key: k, Value: &v})
	}
	return h.store.Commit(changes)
}

// move shifts amount between two accounts as one ledger write.
func (h *Local) move(from, to sdk.Address, amount int64, asset sdk.Asset) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	if from == to {
		return nil
	}
	fromBal, err := h.Balance(from, asset)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%s holds %d %s, needs %d: %w", from, fromBal, asset, amount, sdk.ErrInsufficientFunds)
	}
	toBal, err := h.Balance(to, asset)
	if err != nil {
		return err
	}
	return h.writeLedger(map[string]int64{
		ledgerKey(from, asset): fromBal - amount,
		ledgerKey(to, asset):   toBal + amount,
	})
}

func (h *Local) Draw(from sdk.Address, amount int64, asset sdk.Asset) error {
	if err := h.move(from, h.ContractAddress(), amount, asset); err != nil {
		return err
	}
	h.log.Debug("draw", zap.String("from", from.String()), zap.Int64("amount", amount), zap.String("asset", asset.String()))
	return nil
}

func (h *Local) Transfer(to sdk.Address, amount int64, asset sdk.Asset) error {
	if h.hook != nil {
		if err := h.hook(to, amount, asset); err != nil {
			return err
		}
	}
	if err := h.move(h.ContractAddress(), to, amount, asset); err != nil {
		return err
	}
	h.log.Debug("transfer", zap.String("to", to.String()), zap.Int64("amount", amount), zap.String("asset", asset.String()))
	return nil
}

const genesisKey = "ledger:genesis"

// Genesis credits the given balances once per store. It reports false when
// the store was already seeded.
func (h *Local) Genesis(balances map[sdk.Address]int64, asset sdk.Asset) (bool, error) {
	marker, err := h.store.Get(genesisKey)
	if err != nil {
		return false, fmt.Errorf("read genesis marker: %w", err)
	}
	if marker != nil {
		return false, nil
	}
	changes := make([]sdk.Change, 0, len(balances)+1)
	for addr, amount := range balances {
		if amount <= 0 {
			return false, fmt.Errorf("genesis balance of %s must be positive", addr)
		}
		bal, err := h.Balance(addr, asset)
		if err != nil {
			return false, err
		}
		v := strconv.FormatInt(bal+amount, 10)
		changes = append(changes, sdk.Change{Key: ledgerKey(addr, asset), Value: &v})
	}
	done := strconv.FormatInt(h.clock().Unix(), 10)
	changes = append(changes, sdk.Change{Key: genesisKey, Value: &done})
	if err := h.store.Commit(changes); err != nil {
		return false, fmt.Errorf("commit genesis: %w", err)
	}
	return true, nil
}
