package contract

import (
	"strconv"
)

// Dispatch runs a contract action by name with a pipe-delimited payload and
// returns the text result. Mutating actions return a short confirmation,
// queries return JSON.
func (c *Contract) Dispatch(action string, payload string) (string, error) {
	switch action {
	case "contract_init":
		if err := c.Init(); err != nil {
			return "", err
		}
		return "initialized", nil

	case "members_grant":
		if err := c.GrantVotingMembership(decodeAddressArg(payload)); err != nil {
			return "", err
		}
		return "member granted", nil

	case "institutions_register":
		args, err := decodeRegisterInstitutionArgs(payload)
		if err != nil {
			return "", err
		}
		if err := c.RegisterInstitution(args.Address, args.Name); err != nil {
			return "", err
		}
		return "registered", nil

	case "institutions_deregister":
		if err := c.DeregisterInstitution(decodeAddressArg(payload)); err != nil {
			return "", err
		}
		return "deregistered", nil

	case "proposals_submit":
		args, err := decodeSubmitProposalArgs(payload)
		if err != nil {
			return "", err
		}
		id, err := c.SubmitProposal(args.Recipient, args.Amount, args.Duration)
		if err != nil {
			return "", err
		}
		return "proposal " + strconv.FormatUint(id, 10), nil

	case "proposals_vote":
		args, err := decodeVoteProposalArgs(payload)
		if err != nil {
			return "", err
		}
		if err := c.CastVote(args.ProposalID, args.Support); err != nil {
			return "", err
		}
		return "voted", nil

	case "proposals_execute":
		id, err := decodeProposalID(payload)
		if err != nil {
			return "", err
		}
		if err := c.ExecuteProposal(id); err != nil {
			return "", err
		}
		return "executed", nil

	case "proposals_cancel":
		id, err := decodeProposalID(payload)
		if err != nil {
			return "", err
		}
		if err := c.CancelProposal(id); err != nil {
			return "", err
		}
		return "cancelled", nil

	case "treasury_deposit":
		amount, err := parseAmountField(unwrapPayload(payload), "amount")
		if err != nil {
			return "", err
		}
		if err := c.DepositFunds(amount); err != nil {
			return "", err
		}
		return "deposited", nil

	case "proposals_get_one":
		id, err := decodeProposalID(payload)
		if err != nil {
			return "", err
		}
		p, err := c.GetProposal(id)
		if err != nil {
			return "", err
		}
		return ProposalJSON(p, c.nowUnix())

	case "proposals_get_all":
		offset, limit, err := decodePageArgs(payload)
		if err != nil {
			return "", err
		}
		items, err := c.ListProposals(offset, limit)
		if err != nil {
			return "", err
		}
		return toJSON(proposalListView{items: items, now: c.nowUnix()})

	case "institutions_get_one":
		inst, err := c.GetInstitution(decodeAddressArg(payload))
		if err != nil {
			return "", err
		}
		return toJSON(inst)

	case "treasury_balance":
		balance, err := c.TreasuryBalance()
		if err != nil {
			return "", err
		}
		return balance.String(), nil
	}
	return "", fail(KindUnknownAction, "unknown action %q", action)
}

// Actions lists every name Dispatch understands.
func Actions() []string {
	return []string{
		"contract_init",
		"members_grant",
		"institutions_register",
		"institutions_deregister",
		"proposals_submit",
		"proposals_vote",
		"proposals_execute",
		"proposals_cancel",
		"treasury_deposit",
		"proposals_get_one",
		"proposals_get_all",
		"institutions_get_one",
		"treasury_balance",
	}
}
