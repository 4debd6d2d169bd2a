package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	arrowipc "github.com/VanDung-dev/hierachain-frame/arrow"
	"github.com/VanDung-dev/hierachain-frame/data"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultMaxConcurrent bounds concurrent conversions when no limit is given.
const DefaultMaxConcurrent = 8

// ArrowHandler decodes Arrow IPC payloads, converts them to data frames
// and encodes the replies.
type ArrowHandler struct {
	codec   *arrowipc.Codec
	metrics *Metrics
	logger  zerolog.Logger
	sem     *semaphore.Weighted
}

// HandlerOption configures an ArrowHandler.
type HandlerOption func(*ArrowHandler)

// WithMetrics records conversions in m.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *ArrowHandler) { h.metrics = m }
}

// WithLogger sets the handler logger.
func WithLogger(l zerolog.Logger) HandlerOption {
	return func(h *ArrowHandler) { h.logger = l }
}

// WithMaxConcurrent bounds the number of conversions running at once.
func WithMaxConcurrent(n int64) HandlerOption {
	return func(h *ArrowHandler) {
		if n > 0 {
			h.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithAllocator decodes payloads with mem.
func WithAllocator(mem memory.Allocator) HandlerOption {
	return func(h *ArrowHandler) { h.codec = arrowipc.NewCodecWithAllocator(mem) }
}

// NewArrowHandler creates a new ArrowHandler.
func NewArrowHandler(opts ...HandlerOption) *ArrowHandler {
	h := &ArrowHandler{
		codec:  arrowipc.NewCodecWithAllocator(memory.NewGoAllocator()),
		logger: zerolog.Nop(),
		sem:    semaphore.NewWeighted(DefaultMaxConcurrent),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Convert decodes payload, converts every batch into one data frame and
// builds the response.
func (h *ArrowHandler) Convert(ctx context.Context, requestID string, payload []byte) (*FrameResponse, error) {
	if len(payload) == 0 {
		return nil, errors.New("received empty data")
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	h.metrics.inFlight(1)
	defer h.metrics.inFlight(-1)

	start := time.Now()

	records, err := h.codec.Deserialize(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Arrow stream: %w", err)
	}
	defer arrowipc.ReleaseAll(records)

	df, err := data.BatchToDataFrame(records)
	if err != nil {
		return nil, fmt.Errorf("failed to convert batches: %w", err)
	}
	defer df.Release()

	resp, err := NewFrameResponse(requestID, df)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	elapsed := time.Since(start)
	h.metrics.RecordConversion(len(records), df.Len(), elapsed)
	h.logger.Debug().
		Str("request_id", requestID).
		Int("batches", len(records)).
		Int("rows", df.Len()).
		Int("columns", len(df.Columns())).
		Dur("duration", elapsed).
		Msg("converted batch")

	return resp, nil
}

// ProcessBatch handles one request payload and returns the encoded JSON
// reply. Conversion failures are reported inside the reply; the returned
// error is set only when no reply could be produced.
func (h *ArrowHandler) ProcessBatch(ctx context.Context, transport string, payload []byte) ([]byte, error) {
	requestID := uuid.NewString()

	resp, err := h.Convert(ctx, requestID, payload)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			h.metrics.RecordRequest(transport, StatusFailed)
			return nil, ctxErr
		}
		h.logger.Warn().Err(err).Str("request_id", requestID).Str("transport", transport).Msg("conversion failed")
		h.metrics.RecordRequest(transport, StatusFailed)
		return h.errorResponse(requestID, err)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		h.metrics.RecordRequest(transport, StatusFailed)
		return h.errorResponse(requestID, fmt.Errorf("failed to marshal response: %w", err))
	}

	h.metrics.RecordRequest(transport, StatusOK)
	return out, nil
}

func (h *ArrowHandler) errorResponse(requestID string, cause error) ([]byte, error) {
	return json.Marshal(&FrameResponse{RequestID: requestID, Error: cause.Error()})
}
