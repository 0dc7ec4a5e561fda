package codec

import (
	"encoding/binary"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

const OrderAddedPayloadSize = 32

// EncodeOrderAdded serializes an OrderAdded event into a fixed-size payload.
func EncodeOrderAdded(dst []byte, evt schema.OrderAdded) []byte {
	if cap(dst) < OrderAddedPayloadSize {
		dst = make([]byte, OrderAddedPayloadSize)
	} else {
		dst = dst[:OrderAddedPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], evt.OrderID)
	binary.LittleEndian.PutUint32(dst[8:12], evt.SymbolID)
	binary.LittleEndian.PutUint16(dst[12:14], uint16(evt.Side))
	binary.LittleEndian.PutUint16(dst[14:16], evt.Flags)
	binary.LittleEndian.PutUint64(dst[16:24], uint64(evt.Price))
	binary.LittleEndian.PutUint32(dst[24:28], uint32(evt.Qty))
	binary.LittleEndian.PutUint32(dst[28:32], uint32(evt.Queue))

	return dst
}

// DecodeOrderAdded parses a fixed-size OrderAdded payload.
func DecodeOrderAdded(src []byte) (schema.OrderAdded, bool) {
	if len(src) < OrderAddedPayloadSize {
		return schema.OrderAdded{}, false
	}
	return schema.OrderAdded{
		OrderID:  binary.LittleEndian.Uint64(src[0:8]),
		SymbolID: binary.LittleEndian.Uint32(src[8:12]),
		Side:     schema.OrderSide(binary.LittleEndian.Uint16(src[12:14])),
		Flags:    binary.LittleEndian.Uint16(src[14:16]),
		Price:    schema.Price(int64(binary.LittleEndian.Uint64(src[16:24]))),
		Qty:      schema.Quantity(int32(binary.LittleEndian.Uint32(src[24:28]))),
		Queue:    schema.Quantity(int32(binary.LittleEndian.Uint32(src[28:32]))),
	}, true
}
