// Package emitter serializes the validated registry, directions, and
// human-readable reports, and publishes them atomically.
//
// symbols.bin/directions.bin use a fixed-layout encoding/binary framing (see
// DESIGN.md for why no third-party binary-struct library fits here).
package emitter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"pairdiscovery/model"
)

// Numeric attribute encoding: a presence byte (0/1) followed by a float64
// of the decimal's value when present. Decimal precision loss at this
// boundary is acceptable — these fields round-trip through float64 venue
// JSON in the first place (Binance/Bybit/OKX all report tickSize etc. as
// decimal strings with at most 8 significant digits).
func writeAttr(buf *bytes.Buffer, d *decimal.Decimal) {
	if d == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	f, _ := d.Float64()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	buf.Write(b[:])
}

func readAttr(r *bytes.Reader) (*decimal.Decimal, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return nil, err
	}
	f := math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
	d := decimal.NewFromFloat(f)
	return &d, nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeOptString(buf *bytes.Buffer, s *string) {
	if s == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	writeString(buf, *s)
}

func readOptString(r *bytes.Reader) (*string, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	s, err := readString(r)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// symbolsMagic/directionsMagic guard against decoding a file written by an
// incompatible version of this encoder.
const (
	symbolsMagic    uint32 = 0x50445331 // "PDS1"
	directionsMagic uint32 = 0x50445431 // "PDT1"
)

// EncodeSymbols serializes reg.Records in id order into the stable binary
// layout described above.
func EncodeSymbols(reg *model.Registry) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, symbolsMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(len(reg.Records)))

	for _, rec := range reg.Records {
		binary.Write(&buf, binary.LittleEndian, rec.Id)
		writeString(&buf, rec.CanonicalName)
		for _, s := range model.AllSources() {
			writeOptString(&buf, rec.SourceNames[s])
		}
		for _, s := range model.AllSources() {
			a := rec.Attributes[s]
			writeAttr(&buf, a.MinQty)
			writeAttr(&buf, a.MaxQty)
			writeAttr(&buf, a.TickSize)
			writeAttr(&buf, a.MinNotional)
		}
	}
	return buf.Bytes()
}

// DecodeSymbols parses the layout EncodeSymbols produces.
func DecodeSymbols(data []byte) (*model.Registry, error) {
	r := bytes.NewReader(data)
	var magic, count uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading symbols magic: %w", err)
	}
	if magic != symbolsMagic {
		return nil, fmt.Errorf("unexpected symbols.bin magic %x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading symbols count: %w", err)
	}

	reg := model.NewRegistry()
	for i := uint32(0); i < count; i++ {
		var rec model.SymbolRecord
		if err := binary.Read(r, binary.LittleEndian, &rec.Id); err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		rec.CanonicalName = name
		for _, s := range model.AllSources() {
			sym, err := readOptString(r)
			if err != nil {
				return nil, err
			}
			rec.SourceNames[s] = sym
		}
		for _, s := range model.AllSources() {
			var a model.Attributes
			for _, field := range []**decimal.Decimal{&a.MinQty, &a.MaxQty, &a.TickSize, &a.MinNotional} {
				d, err := readAttr(r)
				if err != nil {
					return nil, err
				}
				*field = d
			}
			rec.Attributes[s] = a
		}
		reg.Records = append(reg.Records, rec)
	}
	return reg, nil
}

// EncodeDirections serializes records into the stable binary layout.
func EncodeDirections(records []model.DirectionRecord) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, directionsMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(len(records)))

	for _, rec := range records {
		binary.Write(&buf, binary.LittleEndian, uint32(rec.Id))
		writeString(&buf, rec.Name)
		binary.Write(&buf, binary.LittleEndian, uint8(rec.SpotSource))
		binary.Write(&buf, binary.LittleEndian, uint8(rec.FutureSource))
		binary.Write(&buf, binary.LittleEndian, uint32(len(rec.Symbols)))
		for _, id := range rec.Symbols {
			binary.Write(&buf, binary.LittleEndian, id)
		}
	}
	return buf.Bytes()
}

// DecodeDirections parses the layout EncodeDirections produces.
func DecodeDirections(data []byte) ([]model.DirectionRecord, error) {
	r := bytes.NewReader(data)
	var magic, count uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading directions magic: %w", err)
	}
	if magic != directionsMagic {
		return nil, fmt.Errorf("unexpected directions.bin magic %x", magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	out := make([]model.DirectionRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec model.DirectionRecord
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		rec.Id = int(id)
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		rec.Name = name
		var spot, future uint8
		if err := binary.Read(r, binary.LittleEndian, &spot); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &future); err != nil {
			return nil, err
		}
		rec.SpotSource = model.SourceId(spot)
		rec.FutureSource = model.SourceId(future)

		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		rec.Symbols = make([]uint16, n)
		for j := uint32(0); j < n; j++ {
			if err := binary.Read(r, binary.LittleEndian, &rec.Symbols[j]); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
