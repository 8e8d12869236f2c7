package contract

import (
	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jwriter"
)

// proposalView is the query shape of a proposal at a point in time.
type proposalView struct {
	p   *Proposal
	now int64
}

// MarshalTinyJSON writes the proposal with its derived phase.
func (v proposalView) MarshalTinyJSON(w *jwriter.Writer) {
	p := v.p
	w.RawString(`{"id":`)
	w.Uint64(p.ID)
	w.RawString(`,"institution":`)
	w.String(p.Institution.String())
	w.RawString(`,"recipient":`)
	w.String(p.Recipient.String())
	w.RawString(`,"amount":`)
	w.String(p.Amount.String())
	w.RawString(`,"votes_for":`)
	w.Uint64(p.VotesFor)
	w.RawString(`,"votes_against":`)
	w.Uint64(p.VotesAgainst)
	w.RawString(`,"created_at":`)
	w.Int64(p.CreatedAt)
	w.RawString(`,"voting_deadline":`)
	w.Int64(p.VotingDeadline)
	w.RawString(`,"state":`)
	w.String(p.State.String())
	w.RawString(`,"phase":`)
	w.String(p.Phase(v.now).String())
	if p.Tx != "" {
		w.RawString(`,"tx":`)
		w.String(p.Tx)
	}
	w.RawByte('}')
}

type proposalListView struct {
	items []Proposal
	now   int64
}

func (v proposalListView) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawByte('[')
	for i := range v.items {
		if i > 0 {
			w.RawByte(',')
		}
		proposalView{p: &v.items[i], now: v.now}.MarshalTinyJSON(w)
	}
	w.RawByte(']')
}

// MarshalTinyJSON writes the institution record.
func (inst *Institution) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"address":`)
	w.String(inst.Address.String())
	w.RawString(`,"address_type":`)
	w.String(string(inst.Address.Type()))
	w.RawString(`,"address_domain":`)
	w.String(string(inst.Address.Domain()))
	w.RawString(`,"name":`)
	w.String(inst.Name)
	w.RawString(`,"registered":`)
	w.Bool(inst.Registered)
	w.RawString(`,"registered_at":`)
	w.Int64(inst.RegisteredAt)
	w.RawByte('}')
}

// ProposalJSON renders p as seen at unix time now.
func ProposalJSON(p *Proposal, now int64) (string, error) {
	return toJSON(proposalView{p: p, now: now})
}

func toJSON(v tinyjson.Marshaler) (string, error) {
	b, err := tinyjson.Marshal(v)
	if err != nil {
		return "", internal(err, "marshal result")
	}
	return string(b), nil
}
