package contract

import (
	"strconv"
	"strings"

	"okinoko_grants/sdk"
)

// -----------------------------------------------------------------------------
// Contract Configuration State
// -----------------------------------------------------------------------------

// loadContractConfig returns nil when Init never ran.
func loadContractConfig(s *txState) (*ContractConfig, error) {
	ptr, err := s.get(ContractConfigKey)
	if err != nil {
		return nil, internal(err, "read contract config")
	}
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	cfg, ok := decodeContractConfig(*ptr)
	if !ok {
		return nil, fail(KindInternal, "corrupt contract config")
	}
	return cfg, nil
}

// requireConfig loads the config and fails NotInitialized when absent.
func requireConfig(s *txState) (*ContractConfig, error) {
	cfg, err := loadContractConfig(s)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fail(KindNotInitialized, "contract not initialized")
	}
	return cfg, nil
}

// requireAdmin fails Unauthorized unless caller is the admin.
func requireAdmin(s *txState, caller sdk.Address) error {
	cfg, err := requireConfig(s)
	if err != nil {
		return err
	}
	if cfg.Admin != caller {
		return fail(KindUnauthorized, "only the admin can do this")
	}
	return nil
}

func saveContractConfig(s *txState, cfg *ContractConfig) {
	s.set(ContractConfigKey, encodeContractConfig(cfg))
}

// -----------------------------------------------------------------------------
// Contract Config Encoding
// -----------------------------------------------------------------------------

// encodeContractConfig serializes ContractConfig to a pipe-delimited string.
// Format: admin|initializedAt
func encodeContractConfig(cfg *ContractConfig) string {
	return cfg.Admin.String() + "|" + strconv.FormatInt(cfg.InitializedAt, 10)
}

// decodeContractConfig deserializes a pipe-delimited string to ContractConfig.
func decodeContractConfig(data string) (*ContractConfig, bool) {
	admin, at, ok := strings.Cut(data, "|")
	if !ok || admin == "" {
		return nil, false
	}
	ts, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return nil, false
	}
	return &ContractConfig{Admin: sdk.Address(admin), InitializedAt: ts}, true
}
