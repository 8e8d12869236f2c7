package contract

import (
	"strings"

	"okinoko_grants/sdk"
)

// -----------------------------------------------------------------------------
// Voting Members
// -----------------------------------------------------------------------------

// GrantVotingMembership makes addr a voting member. Granting twice succeeds
// without a second event.
func (c *Contract) GrantVotingMembership(addr sdk.Address) error {
	return c.step("members_grant", func(s *txState) error {
		if err := requireAdmin(s, c.sender()); err != nil {
			return err
		}
		if addr.IsZero() {
			return fail(KindInvalidIdentity, "member address is empty")
		}
		member, err := isVotingMember(s, addr)
		if err != nil || member {
			return err
		}
		saveVotingMember(s, addr)
		if err := incrementCount(s, MembersCount); err != nil {
			return err
		}
		c.emit(MemberAdded{Member: addr})
		return nil
	})
}

// IsVotingMember reports the membership flag.
func (c *Contract) IsVotingMember(addr sdk.Address) (bool, error) {
	var member bool
	err := c.view(func(s *txState) (err error) {
		member, err = isVotingMember(s, addr)
		return err
	})
	return member, err
}

// MembersCount returns how many voting members were granted.
func (c *Contract) MembersCount() (uint64, error) {
	var n uint64
	err := c.view(func(s *txState) (err error) {
		n, err = s.getUint(MembersCount)
		return err
	})
	return n, err
}

// -----------------------------------------------------------------------------
// Institutions
// -----------------------------------------------------------------------------

// RegisterInstitution creates the institution or reactivates a
// deregistered one under the new name.
func (c *Contract) RegisterInstitution(addr sdk.Address, name string) error {
	return c.step("institutions_register", func(s *txState) error {
		if err := requireAdmin(s, c.sender()); err != nil {
			return err
		}
		if addr.IsZero() {
			return fail(KindInvalidIdentity, "institution address is empty")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return fail(KindInvalidName, "institution name is empty")
		}
		if len(name) > MaxNameLength {
			return fail(KindInvalidName, "institution name longer than %d bytes", MaxNameLength)
		}
		inst, err := loadInstitution(s, addr)
		if err != nil {
			return err
		}
		if inst != nil && inst.Registered {
			return fail(KindAlreadyRegistered, "institution %s already registered", addr)
		}
		if inst == nil {
			if err := incrementCount(s, InstitutionsCount); err != nil {
				return err
			}
			inst = &Institution{Address: addr}
		}
		inst.Name = name
		inst.Registered = true
		inst.RegisteredAt = c.nowUnix()
		saveInstitution(s, inst)
		c.emit(Registered{Institution: addr, Name: name})
		return nil
	})
}

// DeregisterInstitution flips the registered flag off. The record and the
// proposals it submitted stay untouched.
func (c *Contract) DeregisterInstitution(addr sdk.Address) error {
	return c.step("institutions_deregister", func(s *txState) error {
		if err := requireAdmin(s, c.sender()); err != nil {
			return err
		}
		inst, err := loadInstitution(s, addr)
		if err != nil {
			return err
		}
		if inst == nil || !inst.Registered {
			return fail(KindNotRegistered, "institution %s is not registered", addr)
		}
		inst.Registered = false
		saveInstitution(s, inst)
		c.emit(Deregistered{Institution: addr})
		return nil
	})
}

// GetInstitution returns the record or NotFound for unknown addresses.
func (c *Contract) GetInstitution(addr sdk.Address) (*Institution, error) {
	var inst *Institution
	err := c.view(func(s *txState) (err error) {
		inst, err = loadInstitution(s, addr)
		if err == nil && inst == nil {
			err = fail(KindNotFound, "institution %s not found", addr)
		}
		return err
	})
	return inst, err
}
