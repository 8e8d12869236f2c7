package contract

import "okinoko_grants/sdk"

// loadProposal fails NotFound for id 0 and for ids never allocated.
func loadProposal(s *txState, id uint64) (*Proposal, error) {
	if id == 0 {
		return nil, fail(KindNotFound, "proposal 0 does not exist")
	}
	ptr, err := s.get(proposalKey(id))
	if err != nil {
		return nil, internal(err, "read proposal %d", id)
	}
	if ptr == nil || *ptr == "" {
		return nil, fail(KindNotFound, "proposal %d not found", id)
	}
	p, err := DecodeProposal([]byte(*ptr))
	if err != nil {
		return nil, internal(err, "decode proposal %d", id)
	}
	return p, nil
}

func saveProposal(s *txState, p *Proposal) {
	s.set(proposalKey(p.ID), string(EncodeProposal(p)))
}

// voteReceipt is the stored marker for (proposal, voter).
type voteReceipt struct {
	Support bool
}

// loadVoteReceipt returns nil when the voter has not voted yet.
func loadVoteReceipt(s *txState, id uint64, voter sdk.Address) (*voteReceipt, error) {
	ptr, err := s.get(proposalVoteKey(id, voter))
	if err != nil {
		return nil, internal(err, "read vote %d/%s", id, voter)
	}
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	return &voteReceipt{Support: *ptr == "1"}, nil
}

func saveVoteReceipt(s *txState, id uint64, voter sdk.Address, support bool) {
	v := "0"
	if support {
		v = "1"
	}
	s.set(proposalVoteKey(id, voter), v)
}
