package codec

import (
	"encoding/binary"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

const PrintPayloadSize = 28

// EncodePrint serializes a Print event (a reduce_front application)
// into a fixed-size payload.
func EncodePrint(dst []byte, evt schema.Print) []byte {
	if cap(dst) < PrintPayloadSize {
		dst = make([]byte, PrintPayloadSize)
	} else {
		dst = dst[:PrintPayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], evt.SymbolID)
	binary.LittleEndian.PutUint16(dst[4:6], uint16(evt.Side))
	binary.LittleEndian.PutUint16(dst[6:8], evt.Flags)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(evt.Price))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(evt.Traded))
	binary.LittleEndian.PutUint32(dst[20:24], uint32(evt.MarketVolume))
	binary.LittleEndian.PutUint32(dst[24:28], uint32(evt.OurLifted))

	return dst
}

// DecodePrint parses a fixed-size Print payload.
func DecodePrint(src []byte) (schema.Print, bool) {
	if len(src) < PrintPayloadSize {
		return schema.Print{}, false
	}
	return schema.Print{
		SymbolID:     binary.LittleEndian.Uint32(src[0:4]),
		Side:         schema.OrderSide(binary.LittleEndian.Uint16(src[4:6])),
		Flags:        binary.LittleEndian.Uint16(src[6:8]),
		Price:        schema.Price(int64(binary.LittleEndian.Uint64(src[8:16]))),
		Traded:       schema.Quantity(int32(binary.LittleEndian.Uint32(src[16:20]))),
		MarketVolume: schema.Quantity(int32(binary.LittleEndian.Uint32(src[20:24]))),
		OurLifted:    schema.Quantity(int32(binary.LittleEndian.Uint32(src[24:28]))),
	}, true
}
