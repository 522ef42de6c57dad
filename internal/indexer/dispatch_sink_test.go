package indexer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bluechipScope/internal/contract"
	"bluechipScope/internal/model"
	"bluechipScope/internal/reconcile"
)

var buyer = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

type recordingHandler struct {
	events   []model.Event
	failures int
	err      error
}

func (h *recordingHandler) Handle(_ context.Context, event model.Event) error {
	if h.err != nil {
		return h.err
	}
	if h.failures > 0 {
		h.failures--
		return errors.New("rpc unavailable")
	}
	h.events = append(h.events, event)
	return nil
}

type recordingErrors struct {
	errs []model.DecodeError
}

func (r *recordingErrors) PutDecodeError(_ context.Context, decodeErr model.DecodeError) error {
	r.errs = append(r.errs, decodeErr)
	return nil
}

func eventRecord(t *testing.T, name string, block, index uint64, indexed ...common.Hash) model.LogRecord {
	t.Helper()
	parsed, err := contract.InvestmentABI()
	if err != nil {
		t.Fatalf("abi: %v", err)
	}
	topics := []string{parsed.Events[name].ID.Hex()}
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}
	data := "0x"
	if name == "Join" || name == "Leave" || name == "Claim" {
		data = hexutil.Encode(common.BigToHash(big.NewInt(500)).Bytes())
	}
	return model.LogRecord{
		BlockNumber: block,
		LogIndex:    index,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block*100 + index)).Hex(),
		Address:     market.Hex(),
		Topics:      topics,
		Data:        data,
		Timestamp:   1_700_000_000 + block,
	}
}

func listingTopic(id int64) common.Hash {
	return common.BigToHash(big.NewInt(id))
}

func newSink(t *testing.T, handler EventHandler, errs DecodeErrorSink) *DispatchSink {
	t.Helper()
	decoder, err := contract.NewEventDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return NewDispatchSink(decoder, handler, errs, 3, time.Millisecond, nil)
}

func TestDispatchSinkOrdersAndFilters(t *testing.T) {
	handler := &recordingHandler{}
	sink := newSink(t, handler, nil)

	removed := eventRecord(t, "Payout", 9, 0, listingTopic(7))
	removed.Removed = true
	foreign := eventRecord(t, "Payout", 9, 1, listingTopic(7))
	foreign.Topics[0] = common.HexToHash("0xddf252ad").Hex()

	batch := []model.LogRecord{
		eventRecord(t, "Join", 10, 4, listingTopic(7), common.BytesToHash(buyer.Bytes())),
		eventRecord(t, "Listed", 10, 1, listingTopic(7), common.BytesToHash(buyer.Bytes())),
		removed,
		foreign,
		eventRecord(t, "Acquired", 9, 5, listingTopic(7)),
	}
	if err := sink.PutLogBatch(context.Background(), batch); err != nil {
		t.Fatalf("put batch: %v", err)
	}

	var got []string
	for _, event := range handler.events {
		got = append(got, fmt.Sprintf("%s@%d.%d", event.Kind, event.BlockNumber, event.LogIndex))
	}
	want := []string{"Acquired@9.5", "Listed@10.1", "Join@10.4"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("dispatch order mismatch: %v != %v", got, want)
	}
	if handler.events[2].Account != buyer || handler.events[2].Timestamp != 1_700_000_010 {
		t.Fatalf("unexpected join event: %+v", handler.events[2])
	}
	if batch[0].LogIndex != 4 {
		t.Fatalf("input batch was reordered")
	}
}

func TestDispatchSinkRetriesTransientErrors(t *testing.T) {
	handler := &recordingHandler{failures: 2}
	sink := newSink(t, handler, nil)

	if err := sink.PutLogBatch(context.Background(), []model.LogRecord{eventRecord(t, "Relisted", 3, 0, listingTopic(1))}); err != nil {
		t.Fatalf("put batch: %v", err)
	}
	if len(handler.events) != 1 {
		t.Fatalf("expected event after retries, got %d", len(handler.events))
	}
}

func TestDispatchSinkStopsOnIntegrityError(t *testing.T) {
	handler := &recordingHandler{err: fmt.Errorf("listing 1: %w", reconcile.ErrUnknownStatus)}
	sink := newSink(t, handler, nil)

	err := sink.PutLogBatch(context.Background(), []model.LogRecord{eventRecord(t, "Payout", 3, 0, listingTopic(1))})
	if !errors.Is(err, reconcile.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestDispatchSinkReportsDecodeErrors(t *testing.T) {
	handler := &recordingHandler{}
	errs := &recordingErrors{}
	sink := newSink(t, handler, errs)

	broken := eventRecord(t, "Join", 4, 2, listingTopic(1))
	if err := sink.PutLogBatch(context.Background(), []model.LogRecord{broken}); err != nil {
		t.Fatalf("put batch: %v", err)
	}
	if len(handler.events) != 0 {
		t.Fatalf("malformed log dispatched")
	}
	if len(errs.errs) != 1 || errs.errs[0].BlockNumber != 4 || errs.errs[0].LogIndex != 2 {
		t.Fatalf("decode error not reported: %+v", errs.errs)
	}
}
