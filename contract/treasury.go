package contract

import (
	"math"
)

// -----------------------------------------------------------------------------
// Treasury
// -----------------------------------------------------------------------------

// DepositFunds draws amount of TreasuryAsset from the caller into the pool.
// Anyone may deposit, but not from inside a disbursement transfer.
func (c *Contract) DepositFunds(amount Amount) error {
	return c.step("treasury_deposit", func(s *txState) error {
		if c.executing {
			return fail(KindReentrantCall, "deposit called while a disbursement is in flight")
		}
		if _, err := requireConfig(s); err != nil {
			return err
		}
		if amount <= 0 {
			return fail(KindAmountOutOfRange, "deposit must be positive")
		}
		current, err := getTreasuryBalance(s, TreasuryAsset)
		if err != nil {
			return err
		}
		if amount > math.MaxInt64-current {
			return fail(KindAmountOutOfRange, "deposit overflows the treasury")
		}
		from := c.sender()
		if err := c.host.Draw(from, int64(amount), TreasuryAsset); err != nil {
			return &Error{Kind: KindTransferFailed, Reason: "draw from " + from.String() + ": " + err.Error(), cause: err}
		}
		setTreasuryBalance(s, TreasuryAsset, current+amount)
		c.emit(Deposited{From: from, Amount: amount})
		return nil
	})
}

// TreasuryBalance returns the pooled balance available for disbursement.
func (c *Contract) TreasuryBalance() (Amount, error) {
	var balance Amount
	err := c.view(func(s *txState) (err error) {
		balance, err = getTreasuryBalance(s, TreasuryAsset)
		return err
	})
	return balance, err
}
