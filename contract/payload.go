package contract

import (
	"strconv"
	"strings"

	"okinoko_grants/sdk"
)

// unwrapPayload trims the payload and strips one level of JSON quoting, the
// host passes payloads either raw or as a JSON string.
func unwrapPayload(payload string) string {
	raw := strings.TrimSpace(payload)
	if len(raw) >= 2 {
		first := raw[0]
		last := raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			if unquoted, err := strconv.Unquote(raw); err == nil {
				return strings.TrimSpace(unquoted)
			}
			raw = strings.TrimSpace(raw[1 : len(raw)-1])
		}
	}
	return raw
}

// splitPayload cuts a pipe-delimited payload into exactly n fields.
func splitPayload(payload string, n int, usage string) ([]string, error) {
	raw := unwrapPayload(payload)
	if raw == "" {
		return nil, fail(KindInvalidPayload, "payload required: %s", usage)
	}
	parts := strings.Split(raw, "|")
	if len(parts) != n {
		return nil, fail(KindInvalidPayload, "expected %s", usage)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func parseUintField(val string, field string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0, fail(KindInvalidPayload, "invalid %s %q", field, val)
	}
	return n, nil
}

func parseIntField(val string, field string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0, fail(KindInvalidPayload, "invalid %s %q", field, val)
	}
	return n, nil
}

func parseAmountField(val string, field string) (Amount, error) {
	a, err := ParseAmount(val)
	if err != nil {
		return 0, fail(KindInvalidPayload, "invalid %s: %v", field, err)
	}
	return a, nil
}

// parseBoolField accepts 1/0 and the strconv spellings.
func parseBoolField(val string, field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "yes", "for":
		return true, nil
	case "0", "no", "against":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return false, fail(KindInvalidPayload, "invalid %s %q", field, val)
	}
	return b, nil
}

type SubmitProposalArgs struct {
	Recipient sdk.Address
	Amount    Amount
	Duration  int64
}

type VoteProposalArgs struct {
	ProposalID uint64
	Support    bool
}

type RegisterInstitutionArgs struct {
	Address sdk.Address
	Name    string
}

// decodeAddressArg reads a single address payload. Emptiness is left to the
// operation so it can report InvalidIdentity.
func decodeAddressArg(payload string) sdk.Address {
	return sdk.Address(unwrapPayload(payload))
}

// decodeRegisterInstitutionArgs expects `address|name`. The name may contain pipes.
func decodeRegisterInstitutionArgs(payload string) (*RegisterInstitutionArgs, error) {
	raw := unwrapPayload(payload)
	addr, name, ok := strings.Cut(raw, "|")
	if !ok {
		return nil, fail(KindInvalidPayload, "expected address|name")
	}
	return &RegisterInstitutionArgs{Address: sdk.Address(strings.TrimSpace(addr)), Name: name}, nil
}

// decodeSubmitProposalArgs expects `recipient|amount|durationSeconds`.
func decodeSubmitProposalArgs(payload string) (*SubmitProposalArgs, error) {
	parts, err := splitPayload(payload, 3, "recipient|amount|durationSeconds")
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountField(parts[1], "amount")
	if err != nil {
		return nil, err
	}
	duration, err := parseIntField(parts[2], "duration")
	if err != nil {
		return nil, err
	}
	return &SubmitProposalArgs{
		Recipient: sdk.Address(parts[0]),
		Amount:    amount,
		Duration:  duration,
	}, nil
}

// decodeVoteProposalArgs expects `proposalId|support`.
func decodeVoteProposalArgs(payload string) (*VoteProposalArgs, error) {
	parts, err := splitPayload(payload, 2, "proposalId|support")
	if err != nil {
		return nil, err
	}
	id, err := parseUintField(parts[0], "proposal id")
	if err != nil {
		return nil, err
	}
	support, err := parseBoolField(parts[1], "support")
	if err != nil {
		return nil, err
	}
	return &VoteProposalArgs{ProposalID: id, Support: support}, nil
}

// decodeProposalID expects a bare id.
func decodeProposalID(payload string) (uint64, error) {
	raw := unwrapPayload(payload)
	if raw == "" {
		return 0, fail(KindInvalidPayload, "proposal id required")
	}
	return parseUintField(raw, "proposal id")
}

// decodePageArgs expects `offset|limit`; an empty payload means the first page.
func decodePageArgs(payload string) (uint64, uint64, error) {
	if unwrapPayload(payload) == "" {
		return 0, 0, nil
	}
	parts, err := splitPayload(payload, 2, "offset|limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := parseUintField(parts[0], "offset")
	if err != nil {
		return 0, 0, err
	}
	limit, err := parseUintField(parts[1], "limit")
	if err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}
