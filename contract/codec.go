package contract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"okinoko_grants/sdk"
)

// codecVersion is the leading byte of every encoded record.
const codecVersion byte = 1

var errShortBuffer = errors.New("codec: short buffer")

type binWriter struct {
	buf bytes.Buffer
}

// newWriter spins up a fresh writer so we dont leak old bytes between encodes.
func newWriter() *binWriter { return &binWriter{} }

// bytes returns the accumulated buffer, tiny helper but keeps code tidy.
func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

// writeBool squashes bools into a single byte flag for deterministic payloads.
func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *binWriter) writeByte(v byte) { w.buf.WriteByte(v) }

// writeUint64 writes big endian numbers so tooling can read them without guessing.
func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// writeInt64 reuses the uint routine since casting keeps the sign bits intact.
func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

// writeVarUint uses varints to keep counts and lens compact.
func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// writeString prefixes its length then dumps UTF-8 directly.
func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *binWriter) writeAddress(a sdk.Address) { w.writeString(a.String()) }

type binReader struct {
	r *bytes.Reader
}

func newReader(data []byte) *binReader {
	return &binReader{r: bytes.NewReader(data)}
}

func (r *binReader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, errShortBuffer
	}
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	return b == 1, err
}

func (r *binReader) readUint64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, errShortBuffer
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func (r *binReader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *binReader) readVarUint() (uint64, error) {
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, errShortBuffer
	}
	return v, nil
}

func (r *binReader) readString() (string, error) {
	n, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if n > uint64(r.r.Len()) {
		return "", errShortBuffer
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", errShortBuffer
	}
	return string(b), nil
}

func (r *binReader) readAddress() (sdk.Address, error) {
	s, err := r.readString()
	return sdk.Address(s), err
}

// EncodeInstitution serializes an institution record.
func EncodeInstitution(inst *Institution) []byte {
	w := newWriter()
	w.writeByte(codecVersion)
	w.writeAddress(inst.Address)
	w.writeString(inst.Name)
	w.writeBool(inst.Registered)
	w.writeInt64(inst.RegisteredAt)
	return w.bytes()
}

// DecodeInstitution is the inverse of EncodeInstitution.
func DecodeInstitution(data []byte) (*Institution, error) {
	r := newReader(data)
	if err := r.expectVersion(); err != nil {
		return nil, err
	}
	var inst Institution
	var err error
	if inst.Address, err = r.readAddress(); err != nil {
		return nil, err
	}
	if inst.Name, err = r.readString(); err != nil {
		return nil, err
	}
	if inst.Registered, err = r.readBool(); err != nil {
		return nil, err
	}
	if inst.RegisteredAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	return &inst, nil
}

// EncodeProposal serializes a proposal record.
func EncodeProposal(p *Proposal) []byte {
	w := newWriter()
	w.writeByte(codecVersion)
	w.writeUint64(p.ID)
	w.writeAddress(p.Institution)
	w.writeAddress(p.Recipient)
	w.writeInt64(int64(p.Amount))
	w.writeVarUint(p.VotesFor)
	w.writeVarUint(p.VotesAgainst)
	w.writeInt64(p.CreatedAt)
	w.writeInt64(p.VotingDeadline)
	w.writeByte(byte(p.State))
	w.writeString(p.Tx)
	return w.bytes()
}

// DecodeProposal is the inverse of EncodeProposal.
func DecodeProposal(data []byte) (*Proposal, error) {
	r := newReader(data)
	if err := r.expectVersion(); err != nil {
		return nil, err
	}
	var p Proposal
	var err error
	if p.ID, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.Institution, err = r.readAddress(); err != nil {
		return nil, err
	}
	if p.Recipient, err = r.readAddress(); err != nil {
		return nil, err
	}
	amount, err := r.readInt64()
	if err != nil {
		return nil, err
	}
	p.Amount = Amount(amount)
	if p.VotesFor, err = r.readVarUint(); err != nil {
		return nil, err
	}
	if p.VotesAgainst, err = r.readVarUint(); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = r.readInt64(); err != nil {
		return nil, err
	}
	if p.VotingDeadline, err = r.readInt64(); err != nil {
		return nil, err
	}
	state, err := r.readByte()
	if err != nil {
		return nil, err
	}
	p.State = ProposalState(state)
	switch p.State {
	case ProposalOpen, ProposalExecuted, ProposalCancelled:
	default:
		return nil, errors.New("codec: unknown proposal state")
	}
	if p.Tx, err = r.readString(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *binReader) expectVersion() error {
	v, err := r.readByte()
	if err != nil {
		return err
	}
	if v != codecVersion {
		return errors.New("codec: unsupported record version")
	}
	return nil
}
