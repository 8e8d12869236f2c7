package contract_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_grants/contract"
	"okinoko_grants/sdk"
)

// =============================================================================
// Proposal Lifecycle Tests
// =============================================================================

// TestSubmitRequiresRegisteredInstitution checks the unregistered submit flow so we dont break it again.
func TestSubmitRequiresRegisteredInstitution(t *testing.T) {
	ct := setupGovernance(t)
	_, err := CallContract(t, ct, "proposals_submit", recipientAddress+"|100|864000", "hive:outsider", false)
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	count, err := ct.contract.ProposalCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

// TestApprovedProposalIsDisbursed checks the happy path from submit to payout.
func TestApprovedProposalIsDisbursed(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 10)
	assert.Equal(t, uint64(1), id)

	vote(t, ct, id, members[0], true, true)
	vote(t, ct, id, members[1], true, true)
	vote(t, ct, id, members[2], false, true)

	before := treasury(t, ct)
	out, err := CallContractAt(t, ct, "proposals_execute", "1", members[0], true, afterDeadline(10))
	require.NoError(t, err)
	assert.Equal(t, "executed", out)

	p := proposal(t, ct, id)
	assert.Equal(t, contract.ProposalExecuted, p.State)
	assert.Equal(t, uint64(2), p.VotesFor)
	assert.Equal(t, uint64(1), p.VotesAgainst)
	assert.Equal(t, before-contract.Amount(100_000), treasury(t, ct))
	assert.Equal(t, int64(100_000), ledger(t, ct, recipientAddress))
	assert.Contains(t, ct.events.Lines(), "pd|id:1|to:hive:student|am:100.000")
}

// TestTiedVoteIsRejected checks the strict majority rule.
func TestTiedVoteIsRejected(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 10)
	vote(t, ct, id, members[0], true, true)
	vote(t, ct, id, members[1], false, true)

	_, err := CallContractAt(t, ct, "proposals_execute", "1", members[0], false, afterDeadline(10))
	assert.ErrorIs(t, err, contract.ErrProposalRejected)
	assert.Equal(t, contract.ProposalOpen, proposal(t, ct, id).State)
	assert.Equal(t, contract.Amount(1_000_000), treasury(t, ct))
	assert.Equal(t, contract.PhaseRejected, proposal(t, ct, id).Phase(mustParse(afterDeadline(10)).Unix()))
}

// TestProposalWithoutVotesIsRejected checks the zero tally edge case.
func TestProposalWithoutVotesIsRejected(t *testing.T) {
	ct := setupGovernance(t)
	submitProposal(t, ct, "100", 1)
	_, err := CallContractAt(t, ct, "proposals_execute", "1", members[0], false, afterDeadline(1))
	assert.ErrorIs(t, err, contract.ErrProposalRejected)
}

// TestDuplicateVote checks the vote replay flow so we dont break it again.
func TestDuplicateVote(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 10)
	vote(t, ct, id, members[0], true, true)

	err := vote(t, ct, id, members[0], false, false)
	assert.ErrorIs(t, err, contract.ErrDuplicateVote)

	p := proposal(t, ct, id)
	assert.Equal(t, uint64(1), p.VotesFor)
	assert.Equal(t, uint64(0), p.VotesAgainst)

	voted, err := ct.contract.HasVoted(id, sdk.Address(members[0]))
	require.NoError(t, err)
	assert.True(t, voted)
	voted, err = ct.contract.HasVoted(id, sdk.Address(members[1]))
	require.NoError(t, err)
	assert.False(t, voted)
}

// TestCancelDuringVoting checks the cancel flow so we dont break it again.
func TestCancelDuringVoting(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 10)
	vote(t, ct, id, members[0], true, true)

	cancelAt := mustParse(defaultTimestamp).Add(72 * time.Hour).Format("2006-01-02T15:04:05")
	out, err := CallContractAt(t, ct, "proposals_cancel", "1", institutionAddress, true, cancelAt)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out)

	err = vote(t, ct, id, members[1], true, false)
	assert.ErrorIs(t, err, contract.ErrAlreadyFinalized)
	_, err = CallContractAt(t, ct, "proposals_execute", "1", members[0], false, afterDeadline(10))
	assert.ErrorIs(t, err, contract.ErrAlreadyFinalized)
	_, err = CallContract(t, ct, "proposals_cancel", "1", institutionAddress, false)
	assert.ErrorIs(t, err, contract.ErrAlreadyFinalized)
	assert.Equal(t, contract.ProposalCancelled, proposal(t, ct, id).State)
}

// TestExecuteBeforeDeadline checks that a full tally still waits for the deadline.
func TestExecuteBeforeDeadline(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 10)
	for _, m := range members {
		vote(t, ct, id, m, true, true)
	}
	_, err := CallContract(t, ct, "proposals_execute", "1", members[0], false)
	assert.ErrorIs(t, err, contract.ErrVotingStillActive)
	assert.Equal(t, contract.PhaseOpen, proposal(t, ct, id).Phase(mustParse(defaultTimestamp).Unix()))
}

// TestDeadlineBoundary checks that the deadline second closes voting and opens execution.
func TestDeadlineBoundary(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 1)
	vote(t, ct, id, members[0], true, true)

	deadline := mustParse(defaultTimestamp).Add(24 * time.Hour).Format("2006-01-02T15:04:05")
	_, err := CallContractAt(t, ct, "proposals_vote", "1|1", members[1], false, deadline)
	assert.ErrorIs(t, err, contract.ErrVotingClosed)

	_, err = CallContractAt(t, ct, "proposals_execute", "1", members[1], true, deadline)
	require.NoError(t, err)
}

// TestInsufficientTreasury checks that an approved proposal larger than the pool stays open.
func TestInsufficientTreasury(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "5000", 1)
	vote(t, ct, id, members[0], true, true)

	_, err := CallContractAt(t, ct, "proposals_execute", "1", members[0], false, afterDeadline(1))
	assert.ErrorIs(t, err, contract.ErrInsufficientTreasury)
	assert.Equal(t, contract.ProposalOpen, proposal(t, ct, id).State)
	assert.Equal(t, contract.PhaseApprovedPending, proposal(t, ct, id).Phase(mustParse(afterDeadline(1)).Unix()))

	// topping up the pool makes the same proposal executable
	CallContract(t, ct, "treasury_deposit", "4000", "hive:someoneelse", true)
	_, err = CallContractAt(t, ct, "proposals_execute", "1", members[0], true, afterDeadline(1))
	require.NoError(t, err)
	assert.Equal(t, contract.Amount(0), treasury(t, ct))
}

// =============================================================================
// Validation Tests
// =============================================================================

// TestSubmitValidation checks the amount, duration and recipient limits.
func TestSubmitValidation(t *testing.T) {
	ct := setupGovernance(t)
	cases := []struct {
		name    string
		payload string
		err     error
	}{
		{"zero amount", recipientAddress + "|0|86400", contract.ErrAmountOutOfRange},
		{"negative amount", recipientAddress + "|-1|86400", contract.ErrAmountOutOfRange},
		{"above max", recipientAddress + "|100000.001|86400", contract.ErrAmountOutOfRange},
		{"too short", recipientAddress + "|10|86399", contract.ErrInvalidDuration},
		{"too long", recipientAddress + fmt.Sprintf("|10|%d", contract.MaxVotingDuration+1), contract.ErrInvalidDuration},
		{"empty recipient", "|10|86400", contract.ErrInvalidRecipient},
		{"bad amount", recipientAddress + "|ten|86400", contract.ErrInvalidPayload},
		{"missing field", recipientAddress + "|10", contract.ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CallContract(t, ct, "proposals_submit", tc.payload, institutionAddress, false)
			assert.ErrorIs(t, err, tc.err)
		})
	}
	count, err := ct.contract.ProposalCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	_, err = CallContract(t, ct, "proposals_submit", recipientAddress+"|100000|86400", institutionAddress, true)
	require.NoError(t, err)
	_, err = CallContract(t, ct, "proposals_submit", fmt.Sprintf("%s|0.001|%d", recipientAddress, contract.MaxVotingDuration), institutionAddress, true)
	require.NoError(t, err)
}

// TestProposalIDsAreSequential checks id allocation and the stored fields.
func TestProposalIDsAreSequential(t *testing.T) {
	ct := setupGovernance(t)
	for want := uint64(1); want <= 3; want++ {
		assert.Equal(t, want, submitProposal(t, ct, "1.5", 2))
	}
	p := proposal(t, ct, 2)
	assert.Equal(t, sdk.Address(institutionAddress), p.Institution)
	assert.Equal(t, sdk.Address(recipientAddress), p.Recipient)
	assert.Equal(t, contract.Amount(1500), p.Amount)
	assert.Equal(t, mustParse(defaultTimestamp).Unix(), p.CreatedAt)
	assert.Equal(t, p.CreatedAt+2*day, p.VotingDeadline)
	assert.NotEmpty(t, p.Tx)

	_, err := ct.contract.GetProposal(4)
	assert.ErrorIs(t, err, contract.ErrNotFound)
	_, err = ct.contract.GetProposal(0)
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

// TestVoteAndExecuteAuthorization checks the member gate on voting and execution.
func TestVoteAndExecuteAuthorization(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 1)

	err := vote(t, ct, id, "hive:outsider", true, false)
	assert.ErrorIs(t, err, contract.ErrUnauthorized)
	err = vote(t, ct, id, institutionAddress, true, false)
	assert.ErrorIs(t, err, contract.ErrUnauthorized)
	err = vote(t, ct, 42, members[0], true, false)
	assert.ErrorIs(t, err, contract.ErrNotFound)

	vote(t, ct, id, members[0], true, true)
	_, err = CallContractAt(t, ct, "proposals_execute", "1", ownerAddress, false, afterDeadline(1))
	assert.ErrorIs(t, err, contract.ErrUnauthorized)
	_, err = CallContractAt(t, ct, "proposals_execute", "42", members[0], false, afterDeadline(1))
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

// TestExecuteTwice checks that a paid out proposal cannot be paid again.
func TestExecuteTwice(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 1)
	vote(t, ct, id, members[0], true, true)
	CallContractAt(t, ct, "proposals_execute", "1", members[0], true, afterDeadline(1))

	_, err := CallContractAt(t, ct, "proposals_execute", "1", members[1], false, afterDeadline(1))
	assert.ErrorIs(t, err, contract.ErrAlreadyFinalized)
	_, err = CallContractAt(t, ct, "proposals_cancel", "1", institutionAddress, false, afterDeadline(1))
	assert.ErrorIs(t, err, contract.ErrAlreadyFinalized)
	assert.Equal(t, int64(100_000), ledger(t, ct, recipientAddress))
}

// TestCancelAuthorization checks that only the submitting institution may cancel.
func TestCancelAuthorization(t *testing.T) {
	ct := setupGovernance(t)
	CallContract(t, ct, "institutions_register", "hive:college|Okinoko College", ownerAddress, true)
	id := submitProposal(t, ct, "100", 1)

	for _, caller := range []string{"hive:college", ownerAddress, members[0]} {
		_, err := CallContract(t, ct, "proposals_cancel", "1", caller, false)
		assert.ErrorIs(t, err, contract.ErrUnauthorized, caller)
	}
	_, err := CallContract(t, ct, "proposals_cancel", "9", institutionAddress, false)
	assert.ErrorIs(t, err, contract.ErrNotFound)
	assert.Equal(t, contract.ProposalOpen, proposal(t, ct, id).State)
}

// TestDeregisteredInstitutionProposalsStayLive checks that deregistration is not retroactive.
func TestDeregisteredInstitutionProposalsStayLive(t *testing.T) {
	ct := setupGovernance(t)
	first := submitProposal(t, ct, "100", 1)
	second := submitProposal(t, ct, "50", 1)
	CallContract(t, ct, "institutions_deregister", institutionAddress, ownerAddress, true)

	_, err := CallContract(t, ct, "proposals_submit", recipientAddress+"|10|86400", institutionAddress, false)
	assert.ErrorIs(t, err, contract.ErrUnauthorized)

	vote(t, ct, first, members[0], true, true)
	_, err = CallContractAt(t, ct, "proposals_execute", "1", members[0], true, afterDeadline(1))
	require.NoError(t, err)

	_, err = CallContract(t, ct, "proposals_cancel", fmt.Sprint(second), institutionAddress, true)
	require.NoError(t, err)
	assert.Equal(t, contract.ProposalCancelled, proposal(t, ct, second).State)
}

// TestFailedOperationWritesNothing checks that rejected calls leave the store untouched.
func TestFailedOperationWritesNothing(t *testing.T) {
	ct := setupGovernance(t)
	id := submitProposal(t, ct, "100", 1)
	vote(t, ct, id, members[0], true, true)
	keys := ct.store.Len()
	events := len(ct.events.Events())

	vote(t, ct, id, members[0], true, false)
	CallContract(t, ct, "proposals_execute", "1", members[0], false)
	CallContract(t, ct, "proposals_submit", recipientAddress+"|0|86400", institutionAddress, false)
	CallContract(t, ct, "members_grant", "hive:x", members[0], false)

	assert.Equal(t, keys, ct.store.Len())
	assert.Len(t, ct.events.Events(), events)
}
