package contract

import (
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// Execute Proposal
// -----------------------------------------------------------------------------

// ExecuteProposal pays out an approved proposal once its deadline passed.
// The proposal is marked executed and the pool debited before the host
// transfer runs, so anything calling back during the transfer sees a
// finalized proposal. A failed transfer discards the whole step.
func (c *Contract) ExecuteProposal(id uint64) error {
	return c.step("proposals_execute", func(s *txState) error {
		if c.executing {
			return fail(KindReentrantCall, "execute called while a disbursement is in flight")
		}
		c.executing = true
		defer func() { c.executing = false }()

		if _, err := requireConfig(s); err != nil {
			return err
		}
		caller := c.sender()
		member, err := isVotingMember(s, caller)
		if err != nil {
			return err
		}
		if !member {
			return fail(KindUnauthorized, "only voting members can execute proposals")
		}
		p, err := loadProposal(s, id)
		if err != nil {
			return err
		}
		if p.State.Finalized() {
			return fail(KindAlreadyFinalized, "proposal %d is %s", id, p.State)
		}
		if c.nowUnix() < p.VotingDeadline {
			return fail(KindVotingStillActive, "voting on proposal %d ends at %d", id, p.VotingDeadline)
		}
		if !p.Approved() {
			return fail(KindProposalRejected, "proposal %d rejected (%d for, %d against)", id, p.VotesFor, p.VotesAgainst)
		}
		ok, err := removeTreasuryFunds(s, TreasuryAsset, p.Amount)
		if err != nil {
			return err
		}
		if !ok {
			balance, _ := getTreasuryBalance(s, TreasuryAsset)
			return fail(KindInsufficientTreasury, "treasury holds %s, proposal %d needs %s", balance, id, p.Amount)
		}

		// effects before interaction
		p.State = ProposalExecuted
		saveProposal(s, p)

		if err := c.host.Transfer(p.Recipient, int64(p.Amount), TreasuryAsset); err != nil {
			c.log.Warn("disbursement transfer failed",
				zap.Uint64("proposal", id),
				zap.String("recipient", p.Recipient.String()),
				zap.Error(err),
			)
			return &Error{Kind: KindTransferFailed, Reason: "transfer to " + p.Recipient.String() + ": " + err.Error(), cause: err}
		}
		c.emit(Disbursed{ProposalID: id, Recipient: p.Recipient, Amount: p.Amount})
		return nil
	})
}
