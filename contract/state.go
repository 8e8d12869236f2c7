package contract

import (
	"strconv"

	"okinoko_grants/sdk"
)

// reader is the read side shared by the host store and an open txState.
type reader interface {
	get(key string) (*string, error)
}

type storeReader struct {
	store sdk.Store
}

func (s storeReader) get(key string) (*string, error) {
	return s.store.Get(key)
}

// txState buffers the writes of one operation. Nothing reaches the host
// store until the outermost operation commits, so a failed step leaves no
// trace. Nested operations (calls made while a transfer is in flight) get
// their own txState on top of the parent and merge into it on success.
type txState struct {
	parent reader
	writes map[string]*string
	order  []string
}

func newTxState(parent reader) *txState {
	return &txState{parent: parent, writes: map[string]*string{}}
}

func (s *txState) get(key string) (*string, error) {
	if v, ok := s.writes[key]; ok {
		if v == nil {
			return nil, nil
		}
		cp := *v
		return &cp, nil
	}
	return s.parent.get(key)
}

func (s *txState) put(key string, value *string) {
	if _, ok := s.writes[key]; !ok {
		s.order = append(s.order, key)
	}
	s.writes[key] = value
}

func (s *txState) set(key, value string) {
	s.put(key, &value)
}

// merge folds a finished child step into s.
func (s *txState) merge(child *txState) {
	for _, key := range child.order {
		s.put(key, child.writes[key])
	}
}

// changes lists the buffered writes in first-write order.
func (s *txState) changes() []sdk.Change {
	out := make([]sdk.Change, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, sdk.Change{Key: key, Value: s.writes[key]})
	}
	return out
}

// getUint reads a decimal counter and defaults to zero.
func (s *txState) getUint(key string) (uint64, error) {
	ptr, err := s.get(key)
	if err != nil {
		return 0, internal(err, "read %q", key)
	}
	if ptr == nil || *ptr == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(*ptr, 10, 64)
	if err != nil {
		return 0, internal(err, "parse counter %q", key)
	}
	return n, nil
}

// setUint stores uint64 counters back as decimal strings for the host kv.
func (s *txState) setUint(key string, n uint64) {
	s.set(key, strconv.FormatUint(n, 10))
}
