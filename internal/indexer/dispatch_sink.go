package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bluechipScope/internal/contract"
	"bluechipScope/internal/model"
	"bluechipScope/internal/reconcile"
	"bluechipScope/internal/storage"
)

// EventHandler applies one decoded event.
type EventHandler interface {
	Handle(ctx context.Context, event model.Event) error
}

// DecodeErrorSink receives logs that matched a marketplace topic but failed
// to decode.
type DecodeErrorSink interface {
	PutDecodeError(ctx context.Context, decodeErr model.DecodeError) error
}

// DispatchSink decodes each batch and hands the events to an EventHandler
// one at a time in (block, log index) order.
type DispatchSink struct {
	decoder      *contract.EventDecoder
	handler      EventHandler
	decodeErrors DecodeErrorSink
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

var _ storage.LogSink = (*DispatchSink)(nil)

// NewDispatchSink builds a DispatchSink. decodeErrors may be nil, in which case
// decode failures are only logged.
func NewDispatchSink(decoder *contract.EventDecoder, handler EventHandler, decodeErrors DecodeErrorSink, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *DispatchSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchSink{
		decoder:      decoder,
		handler:      handler,
		decodeErrors: decodeErrors,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		logger:       logger,
	}
}

func (s *DispatchSink) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	records := make([]model.LogRecord, len(logs))
	copy(records, logs)
	sortRecords(records)

	for _, record := range records {
		if record.Removed {
			s.logger.Debug("skip removed log", zap.String("tx_hash", record.TxHash), zap.Uint64("log_index", record.LogIndex))
			continue
		}

		event, ok, err := s.decode(record)
		if err != nil {
			if err := s.reportDecodeError(ctx, record, err); err != nil {
				return err
			}
			continue
		}
		if !ok {
			continue
		}

		err = withRetry(ctx, s.maxRetries, s.retryBackoff, func(ctx context.Context) error {
			err := s.handler.Handle(ctx, event)
			if reconcile.IsIntegrityError(err) {
				return permanent(err)
			}
			if err != nil {
				s.logger.Warn("handle event failed",
					zap.Error(err),
					zap.String("kind", string(event.Kind)),
					zap.Uint64("block_number", event.BlockNumber),
				)
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("block %d log %d: %w", record.BlockNumber, record.LogIndex, err)
		}
	}
	return nil
}

func (s *DispatchSink) decode(record model.LogRecord) (model.Event, bool, error) {
	log, err := record.ToLog()
	if err != nil {
		return model.Event{}, false, err
	}
	if !s.decoder.CanDecode(log) {
		return model.Event{}, false, nil
	}
	event, err := s.decoder.Decode(log, record.Timestamp)
	if err != nil {
		return model.Event{}, false, err
	}
	return event, true, nil
}

func (s *DispatchSink) reportDecodeError(ctx context.Context, record model.LogRecord, err error) error {
	decodeErr := model.DecodeErrorFromRecord(record, err)
	s.logger.Warn("decode log failed",
		zap.Uint64("block_number", record.BlockNumber),
		zap.String("tx_hash", record.TxHash),
		zap.Uint64("log_index", record.LogIndex),
		zap.Error(err),
	)
	if s.decodeErrors == nil {
		return nil
	}
	if err := s.decodeErrors.PutDecodeError(ctx, decodeErr); err != nil {
		return fmt.Errorf("store decode error: %w", err)
	}
	return nil
}
