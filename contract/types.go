package contract

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"okinoko_grants/sdk"
)

type Amount int64

// AmountToFloat converts back to float64 for reporting.
func AmountToFloat(v Amount) float64 {
	return float64(v) / AmountScale
}

// String prints the amount with the three fixed decimals, e.g. 12.500.
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/AmountScale, v%AmountScale)
}

// ParseAmount reads a decimal like "12.5" without going through floats.
// More than three fractional digits are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("amount is only a sign")
	}
	whole, frac, dot := strings.Cut(s, ".")
	if dot && frac == "" {
		return 0, fmt.Errorf("amount %q has a trailing dot", s)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 3 {
		return 0, fmt.Errorf("amount %q has more than 3 decimals", s)
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("amount %q is not a decimal", s)
	}
	frac += strings.Repeat("0", 3-len(frac))
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	if w > (math.MaxInt64-f)/AmountScale {
		return 0, fmt.Errorf("amount %q overflows", s)
	}
	v := w*AmountScale + f
	if neg {
		v = -v
	}
	return Amount(v), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ProposalState is the stored lifecycle state. Executed and Cancelled are
// terminal and a proposal can only ever reach one of them.
type ProposalState uint8

const (
	ProposalStateUnspecified ProposalState = 0
	ProposalOpen             ProposalState = 1
	ProposalExecuted         ProposalState = 2
	ProposalCancelled        ProposalState = 3
)

// String prints the proposal state as lower-case text for events and logs.
func (ps ProposalState) String() string {
	switch ps {
	case ProposalOpen:
		return "open"
	case ProposalExecuted:
		return "executed"
	case ProposalCancelled:
		return "cancelled"
	default:
		return "unspecified"
	}
}

// Finalized reports whether the state is terminal.
func (ps ProposalState) Finalized() bool {
	return ps == ProposalExecuted || ps == ProposalCancelled
}

// Phase is the lifecycle phase derived from state, deadline and tally.
type Phase uint8

const (
	PhaseOpen Phase = iota
	PhaseApprovedPending
	PhaseRejected
	PhaseExecuted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseApprovedPending:
		return "approved_pending"
	case PhaseRejected:
		return "rejected"
	case PhaseExecuted:
		return "executed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type Institution struct {
	Address      sdk.Address
	Name         string
	Registered   bool
	RegisteredAt int64
}

type Proposal struct {
	ID             uint64
	Institution    sdk.Address
	Recipient      sdk.Address
	Amount         Amount
	VotesFor       uint64
	VotesAgainst   uint64
	CreatedAt      int64
	VotingDeadline int64
	State          ProposalState
	Tx             string
}

// Approved uses a strict majority, ties are rejected.
func (p *Proposal) Approved() bool {
	return p.VotesFor > p.VotesAgainst
}

// Phase evaluates the proposal at the given unix time.
func (p *Proposal) Phase(now int64) Phase {
	switch p.State {
	case ProposalExecuted:
		return PhaseExecuted
	case ProposalCancelled:
		return PhaseCancelled
	}
	if now < p.VotingDeadline {
		return PhaseOpen
	}
	if p.Approved() {
		return PhaseApprovedPending
	}
	return PhaseRejected
}

// ContractConfig is written once by Init.
type ContractConfig struct {
	Admin         sdk.Address
	InitializedAt int64
}
