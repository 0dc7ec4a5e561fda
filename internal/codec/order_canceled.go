package codec

import (
	"encoding/binary"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

const OrderCanceledPayloadSize = 20

// EncodeOrderCanceled serializes an OrderCanceled event into a fixed-size payload.
func EncodeOrderCanceled(dst []byte, evt schema.OrderCanceled) []byte {
	if cap(dst) < OrderCanceledPayloadSize {
		dst = make([]byte, OrderCanceledPayloadSize)
	} else {
		dst = dst[:OrderCanceledPayloadSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], evt.OrderID)
	binary.LittleEndian.PutUint32(dst[8:12], evt.SymbolID)
	binary.LittleEndian.PutUint16(dst[12:14], uint16(evt.Side))
	binary.LittleEndian.PutUint16(dst[14:16], evt.Flags)
	binary.LittleEndian.PutUint32(dst[16:20], uint32(evt.Qty))

	return dst
}

// DecodeOrderCanceled parses a fixed-size OrderCanceled payload.
func DecodeOrderCanceled(src []byte) (schema.OrderCanceled, bool) {
	if len(src) < OrderCanceledPayloadSize {
		return schema.OrderCanceled{}, false
	}
	return schema.OrderCanceled{
		OrderID:  binary.LittleEndian.Uint64(src[0:8]),
		SymbolID: binary.LittleEndian.Uint32(src[8:12]),
		Side:     schema.OrderSide(binary.LittleEndian.Uint16(src[12:14])),
		Flags:    binary.LittleEndian.Uint16(src[14:16]),
		Qty:      schema.Quantity(int32(binary.LittleEndian.Uint32(src[16:20]))),
	}, true
}
