package contract

import (
	"okinoko_grants/sdk"
)

// -----------------------------------------------------------------------------
// Voting
// -----------------------------------------------------------------------------

// CastVote records the caller's single vote on an open proposal.
func (c *Contract) CastVote(id uint64, support bool) error {
	return c.step("proposals_vote", func(s *txState) error {
		if _, err := requireConfig(s); err != nil {
			return err
		}
		voter := c.sender()
		member, err := isVotingMember(s, voter)
		if err != nil {
			return err
		}
		if !member {
			return fail(KindUnauthorized, "only voting members can vote")
		}
		p, err := loadProposal(s, id)
		if err != nil {
			return err
		}
		if p.State.Finalized() {
			return fail(KindAlreadyFinalized, "proposal %d is %s", id, p.State)
		}
		if c.nowUnix() >= p.VotingDeadline {
			return fail(KindVotingClosed, "voting on proposal %d ended at %d", id, p.VotingDeadline)
		}
		prev, err := loadVoteReceipt(s, id, voter)
		if err != nil {
			return err
		}
		if prev != nil {
			return fail(KindDuplicateVote, "%s already voted on proposal %d", voter, id)
		}

		if support {
			p.VotesFor++
		} else {
			p.VotesAgainst++
		}
		saveProposal(s, p)
		saveVoteReceipt(s, id, voter, support)
		c.emit(Voted{ProposalID: id, Voter: voter, Support: support})
		return nil
	})
}

// HasVoted reports whether voter already voted on proposal id.
func (c *Contract) HasVoted(id uint64, voter sdk.Address) (bool, error) {
	var voted bool
	err := c.view(func(s *txState) error {
		if _, err := loadProposal(s, id); err != nil {
			return err
		}
		rec, err := loadVoteReceipt(s, id, voter)
		voted = rec != nil
		return err
	})
	return voted, err
}
