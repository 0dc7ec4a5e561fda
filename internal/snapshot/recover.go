package snapshot

import (
	"context"

	"github.com/yanun0323/errors"

	"github.com/veloxmarkets/lobcore/internal/codec"
	"github.com/veloxmarkets/lobcore/internal/recorder"
	"github.com/veloxmarkets/lobcore/internal/schema"
)

// RecoverConfig controls snapshot + WAL recovery.
type RecoverConfig struct {
	WALDir          string
	SnapshotPath    string
	FilePrefix      string
	DisableChecksum bool
	MaxPayloadSize  int
	UseRecvTime     bool
}

// RecoverResult contains recovered state and metadata.
type RecoverResult struct {
	Exposure    *ExposureReducer
	LastSeq     uint64
	LastEventTs int64
}

// RecoverExposure loads a snapshot and replays the WAL tail to rebuild
// net resting exposure. Every OrderAdded/OrderCanceled/Print/
// Aggression event past the snapshot's LastSeq is folded in; other
// event types (RiskDecision, LevelSnapshot) are metadata-only and
// skipped.
func RecoverExposure(ctx context.Context, cfg RecoverConfig) (RecoverResult, error) {
	if cfg.WALDir == "" {
		return RecoverResult{}, errors.New("wal dir is empty")
	}
	exposure := NewExposureReducer()
	var lastSeq uint64
	var lastEventTs int64

	if cfg.SnapshotPath != "" {
		snap, err := ReadSnapshot(cfg.SnapshotPath)
		if err != nil {
			return RecoverResult{}, err
		}
		exposure.ApplySnapshot(snap)
		lastSeq = snap.LastSeq
		lastEventTs = snap.LastEventTs
	}

	playbackCfg := recorder.PlaybackConfig{
		Dir:             cfg.WALDir,
		FilePrefix:      cfg.FilePrefix,
		Speed:           0,
		UseRecvTime:     cfg.UseRecvTime,
		DisableChecksum: cfg.DisableChecksum,
		MaxPayloadSize:  cfg.MaxPayloadSize,
	}
	pb, err := recorder.NewPlayback(playbackCfg)
	if err != nil {
		return RecoverResult{}, err
	}

	err = pb.Run(ctx, func(header schema.EventHeader, payload []byte) error {
		if lastSeq > 0 && header.Seq <= lastSeq {
			return nil
		}
		if lastSeq == 0 && lastEventTs > 0 {
			ts := header.TsEvent
			if cfg.UseRecvTime {
				ts = header.TsRecv
			}
			if ts <= lastEventTs {
				return nil
			}
		}
		if header.Seq > lastSeq {
			lastSeq = header.Seq
		}
		if header.TsEvent > lastEventTs {
			lastEventTs = header.TsEvent
		}

		switch header.Type {
		case schema.EventOrderAdded:
			evt, ok := codec.DecodeOrderAdded(payload)
			if !ok {
				return errors.Errorf("decode order added failed, seq: %d", header.Seq)
			}
			exposure.ApplyOrderAdded(evt)
		case schema.EventOrderCanceled:
			evt, ok := codec.DecodeOrderCanceled(payload)
			if !ok {
				return errors.Errorf("decode order canceled failed, seq: %d", header.Seq)
			}
			exposure.ApplyOrderCanceled(evt)
		case schema.EventPrint:
			evt, ok := codec.DecodePrint(payload)
			if !ok {
				return errors.Errorf("decode print failed, seq: %d", header.Seq)
			}
			exposure.ApplyPrint(evt)
		case schema.EventAggression:
			evt, ok := codec.DecodeAggression(payload)
			if !ok {
				return errors.Errorf("decode aggression failed, seq: %d", header.Seq)
			}
			exposure.ApplyAggression(evt)
		}
		return nil
	})
	if err != nil {
		return RecoverResult{}, err
	}

	return RecoverResult{
		Exposure:    exposure,
		LastSeq:     lastSeq,
		LastEventTs: lastEventTs,
	}, nil
}
