package contract_test

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okinoko_grants/contract"
	"okinoko_grants/host"
	"okinoko_grants/sdk"
	"okinoko_grants/store"
)

const ownerAddress = "hive:tibfox"
const institutionAddress = "hive:university"
const recipientAddress = "hive:student"
const defaultTimestamp = "2025-09-03T00:00:00"

const day = int64(24 * 60 * 60)

var members = []string{"hive:member1", "hive:member2", "hive:member3"}

// flakyStore fails every commit while fail is set.
type flakyStore struct {
	*store.Memory
	fail bool
}

func (s *flakyStore) Commit(changes []sdk.Change) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Memory.Commit(changes)
}

type contractTest struct {
	store    *store.Memory
	flaky    *flakyStore
	host     *host.Local
	contract *contract.Contract
	events   *contract.Recorder
	metrics  *contract.Metrics
}

// setupContractTest spins up a fresh in-memory host with funded accounts.
func setupContractTest(t *testing.T) *contractTest {
	t.Helper()
	st := store.NewMemory("")
	flaky := &flakyStore{Memory: st}
	h := host.NewLocal(flaky, host.WithContractID("grantstest"))
	for _, addr := range []string{"hive:someone", "hive:someoneelse", "hive:outsider", institutionAddress} {
		require.NoError(t, h.Credit(sdk.Address(addr), 200_000*contract.AmountScale, contract.TreasuryAsset))
	}
	events := &contract.Recorder{}
	metrics := contract.NewMetrics(prometheus.NewRegistry())
	c := contract.New(h,
		contract.WithMetrics(metrics),
		contract.WithObserver(events),
		contract.WithObserver(contract.LogObserver{Host: h}),
	)
	return &contractTest{store: st, flaky: flaky, host: h, contract: c, events: events, metrics: metrics}
}

// setupGovernance initializes the contract, grants the default members,
// registers one institution and funds the treasury with 1000.000.
func setupGovernance(t *testing.T) *contractTest {
	t.Helper()
	ct := setupContractTest(t)
	CallContract(t, ct, "contract_init", "", ownerAddress, true)
	for _, m := range members {
		CallContract(t, ct, "members_grant", m, ownerAddress, true)
	}
	CallContract(t, ct, "institutions_register", institutionAddress+"|University of Okinoko", ownerAddress, true)
	CallContract(t, ct, "treasury_deposit", "1000", "hive:someone", true)
	return ct
}

func mustTime(t *testing.T, ts string) time.Time {
	t.Helper()
	at, err := time.ParseInLocation("2006-01-02T15:04:05", ts, time.UTC)
	require.NoError(t, err)
	return at
}

// CallContract executes a contract action at the default time and asserts the outcome.
func CallContract(t *testing.T, ct *contractTest, action string, payload string, authUser string, expectedResult bool) (string, error) {
	t.Helper()
	return CallContractAt(t, ct, action, payload, authUser, expectedResult, defaultTimestamp)
}

// CallContractAt executes a call but lets tests override the timestamp for deadline checks.
func CallContractAt(t *testing.T, ct *contractTest, action string, payload string, authUser string, expectedResult bool, timestamp string) (string, error) {
	t.Helper()
	if timestamp == "" {
		timestamp = defaultTimestamp
	}
	var out string
	err := ct.host.Invoke(sdk.Address(authUser), mustTime(t, timestamp), func() error {
		var err error
		out, err = ct.contract.Dispatch(action, payload)
		return err
	})
	if expectedResult {
		assert.NoError(t, err, "contract action %s failed", action)
	} else {
		assert.Error(t, err, "contract action %s did not fail (as expected)", action)
	}
	return out, err
}

// invoke runs fn as sender at timestamp, for tests calling the typed API directly.
func invoke(t *testing.T, ct *contractTest, sender string, timestamp string, fn func(c *contract.Contract) error) error {
	t.Helper()
	return ct.host.Invoke(sdk.Address(sender), mustTime(t, timestamp), func() error {
		return fn(ct.contract)
	})
}

// submitProposal creates a proposal from the default institution and returns its id.
func submitProposal(t *testing.T, ct *contractTest, amount string, durationDays int64) uint64 {
	t.Helper()
	payload := fmt.Sprintf("%s|%s|%d", recipientAddress, amount, durationDays*day)
	out, err := CallContract(t, ct, "proposals_submit", payload, institutionAddress, true)
	require.NoError(t, err)
	return parseCreatedID(t, out)
}

func parseCreatedID(t *testing.T, out string) uint64 {
	t.Helper()
	raw, ok := strings.CutPrefix(out, "proposal ")
	require.True(t, ok, "unexpected result %q", out)
	id, err := strconv.ParseUint(raw, 10, 64)
	require.NoError(t, err)
	return id
}

func vote(t *testing.T, ct *contractTest, id uint64, voter string, support bool, expectedResult bool) error {
	t.Helper()
	flag := "0"
	if support {
		flag = "1"
	}
	_, err := CallContract(t, ct, "proposals_vote", fmt.Sprintf("%d|%s", id, flag), voter, expectedResult)
	return err
}

// afterDeadline returns a timestamp past a proposal created at the default time.
func afterDeadline(durationDays int64) string {
	return mustParse(defaultTimestamp).Add(time.Duration(durationDays*day+1) * time.Second).Format("2006-01-02T15:04:05")
}

func mustParse(ts string) time.Time {
	at, err := time.ParseInLocation("2006-01-02T15:04:05", ts, time.UTC)
	if err != nil {
		panic(err)
	}
	return at
}

func proposal(t *testing.T, ct *contractTest, id uint64) *contract.Proposal {
	t.Helper()
	p, err := ct.contract.GetProposal(id)
	require.NoError(t, err)
	return p
}

func treasury(t *testing.T, ct *contractTest) contract.Amount {
	t.Helper()
	bal, err := ct.contract.TreasuryBalance()
	require.NoError(t, err)
	return bal
}

func ledger(t *testing.T, ct *contractTest, addr sdk.Address) int64 {
	t.Helper()
	bal, err := ct.host.Balance(addr, contract.TreasuryAsset)
	require.NoError(t, err)
	return bal
}
