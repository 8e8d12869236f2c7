package contract

import (
	"fmt"
	"strconv"
	"sync"

	"okinoko_grants/sdk"
)

// Event is a committed state transition. Line renders the terse log form
// indexers parse, e.g. "v|id:3|by:hive:alice|s:true".
type Event interface {
	Code() string
	Line() string
}

type Initialized struct {
	Admin sdk.Address
}

type MemberAdded struct {
	Member sdk.Address
}

type Registered struct {
	Institution sdk.Address
	Name        string
}

type Deregistered struct {
	Institution sdk.Address
}

type Submitted struct {
	ProposalID  uint64
	Institution sdk.Address
	Recipient   sdk.Address
	Amount      Amount
	Deadline    int64
}

type Voted struct {
	ProposalID uint64
	Voter      sdk.Address
	Support    bool
}

type Disbursed struct {
	ProposalID uint64
	Recipient  sdk.Address
	Amount     Amount
}

type Cancelled struct {
	ProposalID uint64
}

type Deposited struct {
	From   sdk.Address
	Amount Amount
}

func (Initialized) Code() string  { return "init" }
func (MemberAdded) Code() string  { return "ma" }
func (Registered) Code() string   { return "ir" }
func (Deregistered) Code() string { return "id" }
func (Submitted) Code() string    { return "pc" }
func (Voted) Code() string        { return "v" }
func (Disbursed) Code() string    { return "pd" }
func (Cancelled) Code() string    { return "px" }
func (Deposited) Code() string    { return "af" }

func (e Initialized) Line() string {
	return fmt.Sprintf("%s|by:%s", e.Code(), e.Admin)
}

func (e MemberAdded) Line() string {
	return fmt.Sprintf("%s|m:%s", e.Code(), e.Member)
}

// Registered keeps the name last since it is free text.
func (e Registered) Line() string {
	return fmt.Sprintf("%s|i:%s|n:%s", e.Code(), e.Institution, e.Name)
}

func (e Deregistered) Line() string {
	return fmt.Sprintf("%s|i:%s", e.Code(), e.Institution)
}

func (e Submitted) Line() string {
	return fmt.Sprintf(
		"%s|id:%d|by:%s|to:%s|am:%s|dl:%s",
		e.Code(),
		e.ProposalID,
		e.Institution,
		e.Recipient,
		e.Amount,
		strconv.FormatInt(e.Deadline, 10),
	)
}

func (e Voted) Line() string {
	return fmt.Sprintf(
		"%s|id:%d|by:%s|s:%s",
		e.Code(),
		e.ProposalID,
		e.Voter,
		strconv.FormatBool(e.Support),
	)
}

func (e Disbursed) Line() string {
	return fmt.Sprintf(
		"%s|id:%d|to:%s|am:%s",
		e.Code(),
		e.ProposalID,
		e.Recipient,
		e.Amount,
	)
}

func (e Cancelled) Line() string {
	return fmt.Sprintf("%s|id:%d", e.Code(), e.ProposalID)
}

func (e Deposited) Line() string {
	return fmt.Sprintf("%s|by:%s|am:%s|as:%s", e.Code(), e.From, e.Amount, TreasuryAsset)
}

// Observer receives events after the step that produced them committed.
type Observer interface {
	Notify(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// LogObserver writes every event line to the host console.
type LogObserver struct {
	Host sdk.Host
}

func (o LogObserver) Notify(e Event) {
	o.Host.Log(e.Line())
}

// Recorder is an append-only in-memory event log.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Lines renders the recorded events in log form.
func (r *Recorder) Lines() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Line()
	}
	return out
}
