package contract

import (
	"go.uber.org/zap"

	"okinoko_grants/sdk"
)

// Contract is one governance instance bound to a host. It is not safe for
// concurrent use: the host serializes invocations, and calls coming back in
// while a transfer is in flight run inside the outer step.
type Contract struct {
	host      sdk.Host
	log       *zap.Logger
	metrics   *Metrics
	observers []Observer

	// tx is the open step, nil between invocations.
	tx *txState
	// pending holds events of the open step until commit.
	pending []Event
	// executing is set while ExecuteProposal runs, it blocks re-entry and deposits.
	executing bool
}

type Option func(*Contract)

// WithLogger sets the zap logger, the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Contract) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *Contract) { c.metrics = m }
}

// WithObserver adds an event observer. Observers are called in the order added.
func WithObserver(o Observer) Option {
	return func(c *Contract) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

func New(host sdk.Host, opts ...Option) *Contract {
	c := &Contract{host: host, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sender returns the address of the current transaction sender.
func (c *Contract) sender() sdk.Address {
	return c.host.Env().Sender
}

// nowUnix returns the host block time.
func (c *Contract) nowUnix() int64 {
	return c.host.Env().Timestamp
}

// emit queues an event for delivery after commit.
func (c *Contract) emit(e Event) {
	c.pending = append(c.pending, e)
}

// step runs fn as one indivisible operation. Writes go to a txState and
// reach the store only if fn succeeds and this is the outermost step.
// Events are dropped on failure and delivered after the final commit.
func (c *Contract) step(op string, fn func(s *txState) error) error {
	parent := c.tx
	var s *txState
	if parent != nil {
		s = newTxState(parent)
	} else {
		s = newTxState(storeReader{store: c.host.Store()})
	}
	mark := len(c.pending)
	c.tx = s
	err := func() error {
		defer func() { c.tx = parent }()
		return fn(s)
	}()

	if err == nil {
		if parent != nil {
			parent.merge(s)
		} else if cerr := c.host.Store().Commit(s.changes()); cerr != nil {
			err = internal(cerr, "commit %s", op)
		}
	}
	c.metrics.observe(op, err)
	if err != nil {
		c.pending = c.pending[:mark]
		c.log.Debug("operation rejected",
			zap.String("op", op),
			zap.String("sender", c.sender().String()),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
		return err
	}
	c.log.Debug("operation committed",
		zap.String("op", op),
		zap.String("sender", c.sender().String()),
		zap.Bool("nested", parent != nil),
	)
	if parent == nil {
		events := c.pending
		c.pending = nil
		for _, e := range events {
			if d, ok := e.(Disbursed); ok {
				c.metrics.addDisbursed(d.Amount)
			}
			for _, o := range c.observers {
				o.Notify(e)
			}
		}
	}
	return nil
}

// view runs a read-only fn against the open step or the store.
func (c *Contract) view(fn func(s *txState) error) error {
	var parent reader = storeReader{store: c.host.Store()}
	if c.tx != nil {
		parent = c.tx
	}
	return fn(newTxState(parent))
}

// Init bootstraps the contract with the caller as the sole admin.
func (c *Contract) Init() error {
	return c.step("contract_init", func(s *txState) error {
		cfg, err := loadContractConfig(s)
		if err != nil {
			return err
		}
		if cfg != nil {
			return fail(KindAlreadyInitialized, "contract already initialized")
		}
		admin := c.sender()
		if admin.IsZero() {
			return fail(KindInvalidIdentity, "admin address is empty")
		}
		saveContractConfig(s, &ContractConfig{Admin: admin, InitializedAt: c.nowUnix()})
		c.emit(Initialized{Admin: admin})
		return nil
	})
}

// Admin returns the admin address or NotInitialized.
func (c *Contract) Admin() (sdk.Address, error) {
	var admin sdk.Address
	err := c.view(func(s *txState) error {
		cfg, err := requireConfig(s)
		if err != nil {
			return err
		}
		admin = cfg.Admin
		return nil
	})
	return admin, err
}
