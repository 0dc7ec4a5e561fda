package codec

import (
	"encoding/binary"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

const AggressionPayloadSize = 32

// EncodeAggression serializes an Aggression event (a walk_until_lifted
// application) into a fixed-size payload.
func EncodeAggression(dst []byte, evt schema.Aggression) []byte {
	if cap(dst) < AggressionPayloadSize {
		dst = make([]byte, AggressionPayloadSize)
	} else {
		dst = dst[:AggressionPayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], evt.SymbolID)
	binary.LittleEndian.PutUint16(dst[4:6], uint16(evt.Side))
	binary.LittleEndian.PutUint16(dst[6:8], evt.Flags)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(evt.Price))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(evt.Target))
	binary.LittleEndian.PutUint32(dst[20:24], uint32(evt.Lifted))
	binary.LittleEndian.PutUint32(dst[24:28], uint32(evt.MarketVolume))
	if evt.Exhausted {
		dst[28] = 1
	} else {
		dst[28] = 0
	}

	return dst
}

// DecodeAggression parses a fixed-size Aggression payload.
func DecodeAggression(src []byte) (schema.Aggression, bool) {
	if len(src) < AggressionPayloadSize {
		return schema.Aggression{}, false
	}
	return schema.Aggression{
		SymbolID:     binary.LittleEndian.Uint32(src[0:4]),
		Side:         schema.OrderSide(binary.LittleEndian.Uint16(src[4:6])),
		Flags:        binary.LittleEndian.Uint16(src[6:8]),
		Price:        schema.Price(int64(binary.LittleEndian.Uint64(src[8:16]))),
		Target:       schema.Quantity(int32(binary.LittleEndian.Uint32(src[16:20]))),
		Lifted:       schema.Quantity(int32(binary.LittleEndian.Uint32(src[20:24]))),
		MarketVolume: schema.Quantity(int32(binary.LittleEndian.Uint32(src[24:28]))),
		Exhausted:    src[28] != 0,
	}, true
}
