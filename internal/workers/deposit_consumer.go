package workers

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"contest-backend/internal/common/errors"
	"contest-backend/internal/common/logger"
	"contest-backend/internal/common/money"
	"contest-backend/internal/features/contest/service"
)

const (
	readBlock    = 5 * time.Second
	readCount    = 16
	errorBackoff = time.Second
)

// PaymentApplier is the engine side of a deposit.
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, entryID string, amount int64, symbol string) (service.ActivationResult, error)
}

// StreamClient is the part of go-redis the consumer needs.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// DepositConsumer reads escrow deposit notifications from a Redis stream
// and applies them to entries. A message is acknowledged once the engine
// accepted or definitively rejected it; anything else stays pending and is
// re-read.
type DepositConsumer struct {
	rdb      StreamClient
	applier  PaymentApplier
	stream   string
	group    string
	consumer string
	log      zerolog.Logger

	// retryPending makes the next read start from this consumer's pending list
	retryPending bool
}

func NewDepositConsumer(rdb StreamClient, applier PaymentApplier, stream, group, consumer string) *DepositConsumer {
	return &DepositConsumer{
		rdb:          rdb,
		applier:      applier,
		stream:       stream,
		group:        group,
		consumer:     consumer,
		log:          logger.Component("deposit_consumer"),
		retryPending: true,
	}
}

// Start blocks until ctx is cancelled.
func (w *DepositConsumer) Start(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, w.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		w.log.Error().Err(err).Str("stream", w.stream).Msg("Failed to create consumer group")
	}

	w.log.Info().Str("stream", w.stream).Str("group", w.group).Msg("Deposit consumer started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Deposit consumer stopped")
			return
		default:
		}

		err := w.poll(ctx)
		if err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Failed to read deposit stream")
		}
		// messages left pending are re-read after a pause
		if err != nil || w.retryPending {
			select {
			case <-time.After(errorBackoff):
			case <-ctx.Done():
			}
		}
	}
}

// poll reads one batch and handles it.
func (w *DepositConsumer) poll(ctx context.Context) error {
	start := ">"
	block := readBlock
	if w.retryPending {
		// history reads never block; -1 omits BLOCK
		start = "0"
		block = -1
	}

	streams, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.group,
		Consumer: w.consumer,
		Streams:  []string{w.stream, start},
		Count:    readCount,
		Block:    block,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	received := 0
	leftPending := false
	for _, s := range streams {
		for _, msg := range s.Messages {
			received++
			if !w.handle(ctx, msg) {
				leftPending = true
				continue
			}
			if err := w.rdb.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
				w.log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to ack deposit")
				leftPending = true
			}
		}
	}

	if w.retryPending && received == 0 {
		w.retryPending = false
	}
	if leftPending {
		w.retryPending = true
	}
	return nil
}

// handle reports whether msg may be acknowledged.
func (w *DepositConsumer) handle(ctx context.Context, msg redis.XMessage) bool {
	entryID, _ := msg.Values["entry_id"].(string)
	quantity, _ := msg.Values["quantity"].(string)
	if entryID == "" || quantity == "" {
		w.log.Warn().Str("message_id", msg.ID).Interface("values", msg.Values).Msg("Malformed deposit notification dropped")
		return true
	}

	amount, symbol, err := money.ParseAsset(quantity)
	if err != nil {
		w.log.Warn().Err(err).Str("message_id", msg.ID).Str("entry_id", entryID).Msg("Deposit with invalid quantity dropped")
		return true
	}

	res, err := w.applier.ApplyPayment(ctx, entryID, amount, symbol)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok && (appErr.IsValidation() || appErr.IsAuthorization()) {
			w.log.Warn().Err(err).Str("message_id", msg.ID).Str("entry_id", entryID).Msg("Deposit rejected")
			return true
		}
		w.log.Error().Err(err).Str("message_id", msg.ID).Str("entry_id", entryID).Msg("Failed to apply deposit, will retry")
		return false
	}

	w.log.Info().
		Str("entry_id", entryID).
		Str("quantity", quantity).
		Str("status", string(res.Status)).
		Uint64("contest_id", res.ContestID).
		Msg("Deposit applied")
	return true
}
