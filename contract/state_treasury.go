package contract

import (
	"strconv"

	"okinoko_grants/sdk"
)

// getTreasuryBalance retrieves the pooled balance of an asset.
func getTreasuryBalance(s *txState, asset sdk.Asset) (Amount, error) {
	key := treasuryKey(asset)
	ptr, err := s.get(key)
	if err != nil {
		return 0, internal(err, "read treasury")
	}
	if ptr == nil || *ptr == "" {
		return 0, nil
	}
	balance, err := strconv.ParseInt(*ptr, 10, 64)
	if err != nil {
		return 0, internal(err, "parse treasury balance")
	}
	return Amount(balance), nil
}

func setTreasuryBalance(s *txState, asset sdk.Asset, amount Amount) {
	s.set(treasuryKey(asset), strconv.FormatInt(int64(amount), 10))
}

// removeTreasuryFunds debits the pool and returns false if the balance is too low.
func removeTreasuryFunds(s *txState, asset sdk.Asset, amount Amount) (bool, error) {
	current, err := getTreasuryBalance(s, asset)
	if err != nil {
		return false, err
	}
	if current < amount {
		return false, nil
	}
	setTreasuryBalance(s, asset, current-amount)
	return true, nil
}
