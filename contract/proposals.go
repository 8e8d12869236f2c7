package contract

import (
	"okinoko_grants/sdk"
)

// -----------------------------------------------------------------------------
// Submit Proposal
// -----------------------------------------------------------------------------

// SubmitProposal records a disbursement request from the calling
// institution and returns the new proposal id. duration is in seconds.
func (c *Contract) SubmitProposal(recipient sdk.Address, amount Amount, duration int64) (uint64, error) {
	var id uint64
	err := c.step("proposals_submit", func(s *txState) error {
		if _, err := requireConfig(s); err != nil {
			return err
		}
		caller := c.sender()
		inst, err := loadInstitution(s, caller)
		if err != nil {
			return err
		}
		if inst == nil || !inst.Registered {
			return fail(KindUnauthorized, "only registered institutions can submit proposals")
		}
		if recipient.IsZero() {
			return fail(KindInvalidRecipient, "recipient address is empty")
		}
		if amount <= 0 || amount > MaxAmount {
			return fail(KindAmountOutOfRange, "amount %s outside (0, %s]", amount, MaxAmount)
		}
		if duration < MinVotingDuration || duration > MaxVotingDuration {
			return fail(KindInvalidDuration, "duration %ds outside [%d, %d]", duration, MinVotingDuration, MaxVotingDuration)
		}

		id, err = nextProposalID(s)
		if err != nil {
			return err
		}
		now := c.nowUnix()
		p := &Proposal{
			ID:             id,
			Institution:    caller,
			Recipient:      recipient,
			Amount:         amount,
			CreatedAt:      now,
			VotingDeadline: now + duration,
			State:          ProposalOpen,
			Tx:             c.host.Env().TxID,
		}
		saveProposal(s, p)
		c.emit(Submitted{
			ProposalID:  id,
			Institution: caller,
			Recipient:   recipient,
			Amount:      amount,
			Deadline:    p.VotingDeadline,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// -----------------------------------------------------------------------------
// Cancel Proposal
// -----------------------------------------------------------------------------

// CancelProposal lets the originating institution withdraw an open proposal
// at any time. Ownership is by address, so a deregistered institution can
// still cancel what it submitted.
func (c *Contract) CancelProposal(id uint64) error {
	return c.step("proposals_cancel", func(s *txState) error {
		if _, err := requireConfig(s); err != nil {
			return err
		}
		p, err := loadProposal(s, id)
		if err != nil {
			return err
		}
		if p.Institution != c.sender() {
			return fail(KindUnauthorized, "only the submitting institution can cancel proposal %d", id)
		}
		if p.State.Finalized() {
			return fail(KindAlreadyFinalized, "proposal %d is %s", id, p.State)
		}
		p.State = ProposalCancelled
		saveProposal(s, p)
		c.emit(Cancelled{ProposalID: id})
		return nil
	})
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

// GetProposal returns a copy of the stored proposal.
func (c *Contract) GetProposal(id uint64) (*Proposal, error) {
	var p *Proposal
	err := c.view(func(s *txState) (err error) {
		p, err = loadProposal(s, id)
		return err
	})
	return p, err
}

// ProposalCount is the highest allocated id.
func (c *Contract) ProposalCount() (uint64, error) {
	var n uint64
	err := c.view(func(s *txState) (err error) {
		n, err = s.getUint(ProposalsCount)
		return err
	})
	return n, err
}

// ListProposals pages through proposals in id order starting after offset.
// limit is clamped to MaxListLimit, 0 means MaxListLimit.
func (c *Contract) ListProposals(offset, limit uint64) ([]Proposal, error) {
	if limit == 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	var out []Proposal
	err := c.view(func(s *txState) error {
		count, err := s.getUint(ProposalsCount)
		if err != nil {
			return err
		}
		out = []Proposal{}
		if offset >= count {
			return nil
		}
		if rest := count - offset; rest < limit {
			limit = rest
		}
		out = make([]Proposal, 0, limit)
		for id := offset + 1; id <= count && uint64(len(out)) < limit; id++ {
			p, err := loadProposal(s, id)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return nil
	})
	return out, err
}
