package contract

import "okinoko_grants/sdk"

// isVotingMember reads the membership flag.
func isVotingMember(s *txState, addr sdk.Address) (bool, error) {
	ptr, err := s.get(votingMemberKey(addr))
	if err != nil {
		return false, internal(err, "read member %s", addr)
	}
	return ptr != nil && *ptr == "1", nil
}

func saveVotingMember(s *txState, addr sdk.Address) {
	s.set(votingMemberKey(addr), "1")
}

// loadInstitution returns nil for addresses that were never registered.
func loadInstitution(s *txState, addr sdk.Address) (*Institution, error) {
	ptr, err := s.get(institutionKey(addr))
	if err != nil {
		return nil, internal(err, "read institution %s", addr)
	}
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	inst, err := DecodeInstitution([]byte(*ptr))
	if err != nil {
		return nil, internal(err, "decode institution %s", addr)
	}
	return inst, nil
}

func saveInstitution(s *txState, inst *Institution) {
	s.set(institutionKey(inst.Address), string(EncodeInstitution(inst)))
}
