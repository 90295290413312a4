package txn

import (
	"encoding/binary"
	"fmt"
)

// Type names a MetaDEx (or MetaDEx-adjacent) transaction type, using
// the same numeric values as the reference engine's MSC_TYPE_*
// constants.
type Type uint16

const (
	TypeSimpleSend              Type = 1
	TypeMetaDExTrade             Type = 25
	TypeMetaDExCancelPrice       Type = 26
	TypeMetaDExCancelPair        Type = 27
	TypeMetaDExCancelEcosystem   Type = 28
	TypeCreatePropertyFixed      Type = 50
	TypeCreatePropertyVariable   Type = 51
	TypeAlert                    Type = 65535
)

// Packet is a decoded wire payload: the 4-byte (version, type) header
// plus whichever of the typed fields below that Type populates. Field
// names mirror the reference engine's CMPTransaction member names
// (property, desired_property, nNewValue/nValue, desired_value,
// ecosystem) so the validation code in dispatch.go reads the same way
// logicMath_MetaDEx* does.
type Packet struct {
	Version uint16
	Type    Type

	Property        uint32
	AmountForSale   int64
	DesiredProperty uint32
	AmountDesired   int64
	Ecosystem       uint8

	// PropertyType and Name are populated only for
	// TypeCreatePropertyFixed/TypeCreatePropertyVariable: PropertyType
	// is 1 for indivisible, 2 for divisible, matching the reference
	// engine's MSC_PROPERTY_TYPE_* constants; Name is the property's
	// display name, the third null-terminated string field of the
	// payload, after category and subcategory (url/data are skipped
	// over no further than needed to reach Name, since nothing
	// downstream of the registry needs them).
	PropertyType uint16
	Name         string
}

// Decode parses a raw transaction payload per the fixed big-endian
// layout table: 2-byte version, 2-byte type, then type-specific
// fields. Byte offsets and minimum-size checks are taken directly
// from interpret_MetaDExTrade / _CancelPrice / _CancelPair /
// _CancelEcosystem in tx.cpp (adapted from memcpy+swapByteOrder32/64
// into binary.BigEndian reads, since the wire format is big-endian
// throughout).
func Decode(pkt []byte) (Packet, error) {
	if len(pkt) < 4 {
		return Packet{}, fmt.Errorf("txn: packet too short for header: %d bytes", len(pkt))
	}

	p := Packet{
		Version: binary.BigEndian.Uint16(pkt[0:2]),
		Type:    Type(binary.BigEndian.Uint16(pkt[2:4])),
	}

	switch p.Type {
	case TypeMetaDExTrade, TypeMetaDExCancelPrice:
		if len(pkt) < 28 {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d: %d bytes", p.Type, len(pkt))
		}
		p.Property = binary.BigEndian.Uint32(pkt[4:8])
		p.AmountForSale = int64(binary.BigEndian.Uint64(pkt[8:16]))
		p.DesiredProperty = binary.BigEndian.Uint32(pkt[16:20])
		p.AmountDesired = int64(binary.BigEndian.Uint64(pkt[20:28]))

	case TypeMetaDExCancelPair:
		if len(pkt) < 12 {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d: %d bytes", p.Type, len(pkt))
		}
		p.Property = binary.BigEndian.Uint32(pkt[4:8])
		p.DesiredProperty = binary.BigEndian.Uint32(pkt[8:12])

	case TypeMetaDExCancelEcosystem:
		if len(pkt) < 5 {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d: %d bytes", p.Type, len(pkt))
		}
		p.Ecosystem = pkt[4]

	case TypeCreatePropertyFixed, TypeCreatePropertyVariable:
		// ecosystem(1) + property type(2) + prev_prop_id(4) + five
		// null-terminated strings (category, subcategory, name, url,
		// data), in that order. Only ecosystem/type/name feed the
		// property registry the dispatcher validates against; the
		// issuance amount/curve fields that follow data are out of
		// scope (see DESIGN.md), as are category/subcategory/url/data
		// themselves once skipped.
		if len(pkt) < 11 {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d: %d bytes", p.Type, len(pkt))
		}
		p.Ecosystem = pkt[4]
		p.PropertyType = binary.BigEndian.Uint16(pkt[5:7])
		// pkt[7:11] is prev_prop_id, unused here.
		rest := pkt[11:]

		_, n, err := splitCString(rest)
		if err != nil {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d category: %w", p.Type, err)
		}
		rest = rest[n:]

		_, n, err = splitCString(rest)
		if err != nil {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d subcategory: %w", p.Type, err)
		}
		rest = rest[n:]

		name, _, err := splitCString(rest)
		if err != nil {
			return Packet{}, fmt.Errorf("txn: packet too short for type %d name: %w", p.Type, err)
		}
		p.Name = name

	case TypeSimpleSend, TypeAlert:
		// Decoded only far enough to recognize the type and route it;
		// these transaction families' own field semantics are out of
		// scope here (see DESIGN.md) but the header must still parse
		// so the dispatcher can tell them apart from MetaDEx packets
		// and decline them deliberately rather than erroring on an
		// unrecognized type.

	default:
		return Packet{}, fmt.Errorf("txn: unrecognized type %d", p.Type)
	}

	return p, nil
}

// splitCString returns the leading null-terminated string in b along
// with the number of bytes it and its terminator occupy (so the caller
// can slice past it to the next field), matching how the reference
// engine reads each string field of a property-creation payload up to
// its '\0'. It errors if b has no terminating NUL, since that means the
// packet was truncated mid-field.
func splitCString(b []byte) (string, int, error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), i + 1, nil
		}
	}
	return "", 0, fmt.Errorf("unterminated string field")
}
