package contract

// nextProposalID bumps the proposal counter. Ids start at 1, 0 never exists.
func nextProposalID(s *txState) (uint64, error) {
	n, err := s.getUint(ProposalsCount)
	if err != nil {
		return 0, err
	}
	n++
	s.setUint(ProposalsCount, n)
	return n, nil
}

// incrementCount adds one to a plain counter.
func incrementCount(s *txState, key string) error {
	n, err := s.getUint(key)
	if err != nil {
		return err
	}
	s.setUint(key, n+1)
	return nil
}
