package fund

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"

	"juice_treasury/sdk"
)

var errUnexpectedEOF = errors.New("unexpected EOF")

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

// writeAmount stores the full 32 byte big endian word, nil counts as zero.
func (w *binWriter) writeAmount(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	w.buf.Write(b[:])
}

func (w *binWriter) writeAddress(a sdk.Address) {
	w.writeString(a.String())
}

type binReader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *binReader {
	return &binReader{data: data}
}

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

func (r *binReader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *binReader) readVarUint() (uint64, error) {
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readString() (string, error) {
	l, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if uint64(len(r.data)-r.pos) < l {
		return "", errUnexpectedEOF
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

func (r *binReader) readAmount() (*uint256.Int, error) {
	if r.pos+32 > len(r.data) {
		return nil, errUnexpectedEOF
	}
	v := new(uint256.Int).SetBytes32(r.data[r.pos : r.pos+32])
	r.pos += 32
	return v, nil
}

func (r *binReader) readAddress() (sdk.Address, error) {
	s, err := r.readString()
	return sdk.Address(s), err
}

func (r *binReader) done() error {
	if r.pos != len(r.data) {
		return errors.New("trailing bytes")
	}
	return nil
}

// EncodeFundingCycle packs a cycle into the deterministic storage form.
// Example payload: EncodeFundingCycle(&FundingCycle{ID: 1, ProjectID: 2, Number: 1})
func EncodeFundingCycle(fc *FundingCycle) []byte {
	w := newWriter()
	w.writeUint64(fc.ID)
	w.writeUint64(fc.ProjectID)
	w.writeUint64(fc.Number)
	w.writeUint64(fc.BasedOn)
	w.writeInt64(fc.Configured)
	w.writeUint64(fc.CycleLimit)
	w.writeAmount(fc.Weight)
	w.writeString(fc.Ballot)
	w.writeInt64(fc.Start)
	w.writeInt64(fc.Duration)
	w.writeAmount(fc.Target)
	w.buf.WriteByte(byte(fc.Currency))
	w.writeUint64(fc.Fee)
	w.writeUint64(fc.DiscountRate)
	w.writeAmount(fc.Tapped)
	w.writeUint64(fc.Metadata.ReservedRate)
	w.writeUint64(fc.Metadata.BondingCurveRate)
	w.writeUint64(fc.Metadata.ReconfigurationBondingCurveRate)
	return w.bytes()
}

// DecodeFundingCycle is the inverse of EncodeFundingCycle and keeps the same field order.
func DecodeFundingCycle(data []byte) (*FundingCycle, error) {
	r := newReader(data)
	fc := &FundingCycle{}
	var err error
	if fc.ID, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.ProjectID, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.Number, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.BasedOn, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.Configured, err = r.readInt64(); err != nil {
		return nil, err
	}
	if fc.CycleLimit, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.Weight, err = r.readAmount(); err != nil {
		return nil, err
	}
	if fc.Ballot, err = r.readString(); err != nil {
		return nil, err
	}
	if fc.Start, err = r.readInt64(); err != nil {
		return nil, err
	}
	if fc.Duration, err = r.readInt64(); err != nil {
		return nil, err
	}
	if fc.Target, err = r.readAmount(); err != nil {
		return nil, err
	}
	cur, err := r.readByte()
	if err != nil {
		return nil, err
	}
	fc.Currency = sdk.Currency(cur)
	if fc.Fee, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.DiscountRate, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.Tapped, err = r.readAmount(); err != nil {
		return nil, err
	}
	if fc.Metadata.ReservedRate, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.Metadata.BondingCurveRate, err = r.readUint64(); err != nil {
		return nil, err
	}
	if fc.Metadata.ReconfigurationBondingCurveRate, err = r.readUint64(); err != nil {
		return nil, err
	}
	return fc, r.done()
}

// EncodeSplits writes the list length followed by each split in stored order.
// Example payload: EncodeSplits([]Split{{Percent: 5000, Beneficiary: "hive:bob"}})
func EncodeSplits(splits []Split) []byte {
	w := newWriter()
	w.writeVarUint(uint64(len(splits)))
	for _, s := range splits {
		w.writeVarUint(s.Percent)
		w.writeInt64(s.LockedUntil)
		w.writeAddress(s.Beneficiary)
		w.writeAddress(s.Allocator)
		w.writeVarUint(s.ProjectID)
		w.writeBool(s.PreferClaimed)
	}
	return w.bytes()
}

func DecodeSplits(data []byte) ([]Split, error) {
	r := newReader(data)
	count, err := r.readVarUint()
	if err != nil {
		return nil, err
	}
	out := make([]Split, 0, count)
	for i := uint64(0); i < count; i++ {
		var s Split
		if s.Percent, err = r.readVarUint(); err != nil {
			return nil, err
		}
		if s.LockedUntil, err = r.readInt64(); err != nil {
			return nil, err
		}
		if s.Beneficiary, err = r.readAddress(); err != nil {
			return nil, err
		}
		if s.Allocator, err = r.readAddress(); err != nil {
			return nil, err
		}
		if s.ProjectID, err = r.readVarUint(); err != nil {
			return nil, err
		}
		if s.PreferClaimed, err = r.readBool(); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, r.done()
}
