// Package scenario replays yaml step files against a contract on a local
// host, each step being one invocation with its own sender and time.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"okinoko_grants/contract"
	"okinoko_grants/host"
	"okinoko_grants/sdk"
)

// ExpectOK is the expect value of a step that must succeed.
const ExpectOK = "ok"

type Scenario struct {
	Name string `yaml:"name"`
	// Start is the default block time; relative step times count from it.
	Start string `yaml:"start"`
	// Genesis credits treasury asset balances before the first step.
	Genesis map[string]string `yaml:"genesis"`
	Steps   []Step            `yaml:"steps"`
}

type Step struct {
	As      string `yaml:"as"`
	At      string `yaml:"at"`
	Action  string `yaml:"action"`
	Payload string `yaml:"payload"`
	// Expect is "ok" (default) or an error kind such as duplicate_vote.
	Expect string `yaml:"expect"`
	// Result, when set, must equal the returned text.
	Result string `yaml:"result"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Step   Step
	Output string
	Err    error
	Passed bool
}

type Report struct {
	Results []StepResult
}

// Failed counts steps whose outcome did not match the expectation.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	for i, st := range sc.Steps {
		if strings.TrimSpace(st.Action) == "" {
			return nil, fmt.Errorf("step %d: action is required", i+1)
		}
	}
	return &sc, nil
}

// Run executes every step in order, writing one line per step to w. It
// only returns an error for problems outside the steps themselves (bad
// times, genesis failures); mismatched expectations land in the report.
func (sc *Scenario) Run(h *host.Local, c *contract.Contract, w io.Writer) (*Report, error) {
	start := time.Now().UTC()
	if sc.Start != "" {
		ts, ok := parseTimestamp(sc.Start)
		if !ok {
			return nil, fmt.Errorf("invalid start time %q", sc.Start)
		}
		start = time.Unix(ts, 0).UTC()
	}
	for addr, raw := range sc.Genesis {
		amount, err := contract.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("genesis %s: %w", addr, err)
		}
		if err := h.Credit(sdk.Address(addr), int64(amount), contract.TreasuryAsset); err != nil {
			return nil, fmt.Errorf("genesis %s: %w", addr, err)
		}
	}

	report := &Report{}
	for i, st := range sc.Steps {
		at, err := resolveTime(start, st.At)
		if err != nil {
			return report, fmt.Errorf("step %d: %w", i+1, err)
		}
		var out string
		callErr := h.Invoke(sdk.Address(st.As), at, func() error {
			var err error
			out, err = c.Dispatch(st.Action, st.Payload)
			return err
		})
		res := StepResult{Index: i + 1, Step: st, Output: out, Err: callErr}
		res.Passed = matches(st, out, callErr)
		report.Results = append(report.Results, res)
		if w != nil {
			writeResult(w, res)
		}
	}
	return report, nil
}

func matches(st Step, out string, err error) bool {
	expect := strings.TrimSpace(st.Expect)
	if expect == "" {
		expect = ExpectOK
	}
	if expect == ExpectOK {
		if err != nil {
			return false
		}
		return st.Result == "" || st.Result == out
	}
	return string(contract.KindOf(err)) == expect
}

func writeResult(w io.Writer, res StepResult) {
	status := "PASS"
	if !res.Passed {
		status = "FAIL"
	}
	detail := res.Output
	if res.Err != nil {
		detail = res.Err.Error()
	}
	fmt.Fprintf(w, "%s %3d %-24s as=%s %s\n", status, res.Index, res.Step.Action, res.Step.As, detail)
}

// resolveTime accepts an absolute timestamp or "+<duration>" relative to start.
// Empty means start.
func resolveTime(start time.Time, at string) (time.Time, error) {
	at = strings.TrimSpace(at)
	if at == "" {
		return start, nil
	}
	if strings.HasPrefix(at, "+") {
		d, err := parseOffset(at[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid offset %q: %w", at, err)
		}
		return start.Add(d), nil
	}
	ts, ok := parseTimestamp(at)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time %q", at)
	}
	return time.Unix(ts, 0).UTC(), nil
}

// parseOffset extends time.ParseDuration with a "d" suffix for days.
func parseOffset(s string) (time.Duration, error) {
	if days, rest, ok := strings.Cut(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		d := time.Duration(n) * 24 * time.Hour
		if rest == "" {
			return d, nil
		}
		extra, err := time.ParseDuration(rest)
		if err != nil {
			return 0, err
		}
		return d + extra, nil
	}
	return time.ParseDuration(s)
}

// parseTimestamp accepts unix seconds or iso-ish strings since hosts flip formats sometimes.
func parseTimestamp(val string) (int64, bool) {
	if v, err := strconv.ParseInt(val, 10, 64); err == nil {
		return v, true
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.Unix(), true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", val, time.UTC); err == nil {
		return t.Unix(), true
	}
	return 0, false
}

// ParseTimestamp is parseTimestamp for callers outside the package.
func ParseTimestamp(val string) (time.Time, error) {
	ts, ok := parseTimestamp(strings.TrimSpace(val))
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time %q", val)
	}
	return time.Unix(ts, 0).UTC(), nil
}
