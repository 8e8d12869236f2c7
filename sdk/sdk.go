// Package sdk describes what the execution host hands to the contract: the
// caller env, a key/value store and value transfer primitives.
package sdk

import "errors"

// ErrInsufficientFunds is returned by Draw and Transfer when the paying
// account cannot cover the amount. Nothing moves in that case.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Env is the snapshot of the current invocation.
type Env struct {
	ContractID string
	TxID       string
	Sender     Address
	// Timestamp is the block time in unix seconds.
	Timestamp int64
}

// Change is a single pending write. A nil Value deletes the key.
type Change struct {
	Key   string
	Value *string
}

// Store is the key/value space owned by one contract instance.
type Store interface {
	// Get returns nil when the key is missing.
	Get(key string) (*string, error)
	// Commit applies all changes or none of them.
	Commit(changes []Change) error
	Close() error
}

// Host is the execution environment a contract runs in.
type Host interface {
	Env() Env
	Store() Store
	// Draw pulls amount of asset from the sender into the contract account.
	Draw(from Address, amount int64, asset Asset) error
	// Transfer moves amount of asset from the contract account to the
	// recipient. It either moves the full amount or reports an error.
	Transfer(to Address, amount int64, asset Asset) error
	// Log writes a line to the host console, indexers read these.
	Log(line string)
}
