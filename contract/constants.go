package contract

import "okinoko_grants/sdk"

// -----------------------------------------------------------------------------
// Treasury
// -----------------------------------------------------------------------------

// TreasuryAsset is the only asset the pool accepts and pays out.
const TreasuryAsset = sdk.AssetHbd

// AmountScale defines the precision multiplier for amounts (three decimals).
const AmountScale = 1000

// -----------------------------------------------------------------------------
// Validation Limits
// -----------------------------------------------------------------------------

const (
	// MaxAmount caps a single disbursement request.
	MaxAmount Amount = 100_000 * AmountScale
	// MinVotingDuration is the shortest voting window in seconds (1 day).
	MinVotingDuration int64 = 24 * 60 * 60
	// MaxVotingDuration is the longest voting window in seconds (30 days).
	MaxVotingDuration int64 = 30 * 24 * 60 * 60
	// MaxNameLength limits institution display names.
	MaxNameLength = 200
	// MaxListLimit bounds a single ListProposals page.
	MaxListLimit = 100
)

// -----------------------------------------------------------------------------
// Counter Keys
// -----------------------------------------------------------------------------

const (
	// ProposalsCount holds the last allocated proposal id.
	ProposalsCount = "count:props"
	// MembersCount holds the number of voting members.
	MembersCount = "count:mem"
	// InstitutionsCount holds the number of institutions ever registered.
	InstitutionsCount = "count:inst"
)

// ContractConfigKey stores the admin record written by Init.
const ContractConfigKey = "cfg"

// -----------------------------------------------------------------------------
// Storage Key Prefixes
// -----------------------------------------------------------------------------

const (
	// kVotingMember flags voting members.
	kVotingMember byte = 0x04
	// kInstitution stores encoded Institution records.
	kInstitution byte = 0x06
	// kTreasury stores the pooled balance per asset.
	kTreasury byte = 0x07
	// kProposalMeta contains encoded Proposal records.
	kProposalMeta byte = 0x10
	// kVoteReceipt marks that an address voted on a proposal.
	kVoteReceipt byte = 0x20
)
