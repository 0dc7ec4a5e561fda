package codec

import (
	"encoding/binary"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

const LevelSnapshotPayloadSize = 24

// EncodeLevelSnapshot serializes a LevelSnapshot event into a fixed-size payload.
func EncodeLevelSnapshot(dst []byte, evt schema.LevelSnapshot) []byte {
	if cap(dst) < LevelSnapshotPayloadSize {
		dst = make([]byte, LevelSnapshotPayloadSize)
	} else {
		dst = dst[:LevelSnapshotPayloadSize]
	}

	binary.LittleEndian.PutUint32(dst[0:4], evt.SymbolID)
	binary.LittleEndian.PutUint16(dst[4:6], uint16(evt.Side))
	binary.LittleEndian.PutUint16(dst[6:8], evt.Flags)
	binary.LittleEndian.PutUint64(dst[8:16], uint64(evt.Price))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(evt.Size))
	binary.LittleEndian.PutUint16(dst[20:22], evt.OrderCount)
	binary.LittleEndian.PutUint16(dst[22:24], 0)

	return dst
}

// DecodeLevelSnapshot parses a fixed-size LevelSnapshot payload.
func DecodeLevelSnapshot(src []byte) (schema.LevelSnapshot, bool) {
	if len(src) < LevelSnapshotPayloadSize {
		return schema.LevelSnapshot{}, false
	}
	return schema.LevelSnapshot{
		SymbolID:   binary.LittleEndian.Uint32(src[0:4]),
		Side:       schema.OrderSide(binary.LittleEndian.Uint16(src[4:6])),
		Flags:      binary.LittleEndian.Uint16(src[6:8]),
		Price:      schema.Price(int64(binary.LittleEndian.Uint64(src[8:16]))),
		Size:       schema.Quantity(int32(binary.LittleEndian.Uint32(src[16:20]))),
		OrderCount: binary.LittleEndian.Uint16(src[20:22]),
	}, true
}
