package dex

import (
	"encoding/binary"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Kind is the codec of a layout field.
type Kind int

const (
	KindU8 Kind = iota
	KindBool
	KindU32
	KindU64
	KindU128
	KindPublicKey
	// KindCOption is a u32 presence tag that must be 0 or 1.
	KindCOption
	KindPadding
)

// Field is one entry of a fixed binary layout.
type Field struct {
	Name string
	Kind Kind
	// Size is only read for KindPadding.
	Size int
}

// Width returns the number of bytes the field occupies.
func (f Field) Width() int {
	switch f.Kind {
	case KindU8, KindBool:
		return 1
	case KindU32, KindCOption:
		return 4
	case KindU64:
		return 8
	case KindU128:
		return 16
	case KindPublicKey:
		return solana.PublicKeyLength
	case KindPadding:
		return f.Size
	default:
		return 0
	}
}

// Layout is an ordered, little-endian field schema of a fixed-size account.
type Layout struct {
	Name   string
	Fields []Field
}

// Span returns the total byte length of the layout.
func (l Layout) Span() int {
	total := 0
	for _, f := range l.Fields {
		total += f.Width()
	}
	return total
}

// Offset returns the byte offset of a named field.
func (l Layout) Offset(name string) (int, bool) {
	offset := 0
	for _, f := range l.Fields {
		if f.Name == name {
			return offset, true
		}
		offset += f.Width()
	}
	return 0, false
}

// Decode reads every field of the layout from data. Trailing bytes beyond the
// span are ignored.
func (l Layout) Decode(data []byte) (Record, error) {
	if span := l.Span(); len(data) < span {
		return Record{}, fmt.Errorf("%s: account too short: have %d want >= %d", l.Name, len(data), span)
	}

	dec := bin.NewBinDecoder(data)
	rec := Record{values: make(map[string]interface{}, len(l.Fields))}
	for _, f := range l.Fields {
		value, err := readField(dec, f)
		if err != nil {
			return Record{}, fmt.Errorf("%s.%s: %w", l.Name, f.Name, err)
		}
		if f.Kind == KindPadding {
			continue
		}
		rec.values[f.Name] = value
	}
	return rec, nil
}

func readField(dec *bin.Decoder, f Field) (interface{}, error) {
	switch f.Kind {
	case KindU8:
		return dec.ReadUint8()
	case KindBool:
		b, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, fmt.Errorf("invalid bool byte %d", b)
		}
		return b == 1, nil
	case KindU32:
		return dec.ReadUint32(binary.LittleEndian)
	case KindU64:
		return dec.ReadUint64(binary.LittleEndian)
	case KindU128:
		raw, err := dec.ReadNBytes(16)
		if err != nil {
			return nil, err
		}
		return uint128FromLE(raw), nil
	case KindPublicKey:
		raw, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, err
		}
		return solana.PublicKeyFromBytes(raw), nil
	case KindCOption:
		tag, err := dec.ReadUint32(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		if tag > 1 {
			return nil, fmt.Errorf("invalid option tag %d", tag)
		}
		return tag == 1, nil
	case KindPadding:
		_, err := dec.ReadNBytes(f.Size)
		return nil, err
	default:
		return nil, fmt.Errorf("unsupported field kind %d", f.Kind)
	}
}

func uint128FromLE(raw []byte) *big.Int {
	be := make([]byte, len(raw))
	for i := range raw {
		be[len(raw)-1-i] = raw[i]
	}
	return new(big.Int).SetBytes(be)
}

// Record holds decoded field values by name. Accessors return the zero value
// for names that are absent or of a different kind.
type Record struct {
	values map[string]interface{}
}

func (r Record) Uint8(name string) uint8 {
	v, _ := r.values[name].(uint8)
	return v
}

func (r Record) Uint32(name string) uint32 {
	v, _ := r.values[name].(uint32)
	return v
}

func (r Record) Uint64(name string) uint64 {
	v, _ := r.values[name].(uint64)
	return v
}

func (r Record) Uint128(name string) *big.Int {
	if v, ok := r.values[name].(*big.Int); ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Bool covers both KindBool and KindCOption fields.
func (r Record) Bool(name string) bool {
	v, _ := r.values[name].(bool)
	return v
}

func (r Record) PublicKey(name string) solana.PublicKey {
	v, _ := r.values[name].(solana.PublicKey)
	return v
}

func u8(name string) Field { return Field{Name: name, Kind: KindU8} }

func boolean(name string) Field { return Field{Name: name, Kind: KindBool} }

func u64(name string) Field { return Field{Name: name, Kind: KindU64} }

func u128(name string) Field { return Field{Name: name, Kind: KindU128} }

func pubkey(name string) Field { return Field{Name: name, Kind: KindPublicKey} }

func option(name string) Field { return Field{Name: name, Kind: KindCOption} }

func padding(name string, size int) Field {
	return Field{Name: name, Kind: KindPadding, Size: size}
}
