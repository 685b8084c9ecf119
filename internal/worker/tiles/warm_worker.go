package tiles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/domain"
	"github.com/geostore-service/internal/domain/repository"
	"github.com/geostore-service/internal/worker"
)

const retryBackoff = 2 * time.Second

// WarmRunner выполняет задачу прогрева (usecase.TileUseCase)
type WarmRunner interface {
	RunWarmJob(ctx context.Context, job domain.TileWarmJob) error
}

// TileWarmWorker читает задачи прогрева кеша тайлов из Redis stream
type TileWarmWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	runner       WarmRunner
	stream       string
	consumerName string
	maxRetries   int
	claimMinIdle time.Duration
}

// NewTileWarmWorker создает новый TileWarmWorker
func NewTileWarmWorker(
	streamRepo repository.StreamRepository,
	runner WarmRunner,
	stream string,
	consumerGroup string,
	maxRetries int,
	claimMinIdle time.Duration,
	logger *zap.Logger,
) *TileWarmWorker {
	hostname, _ := os.Hostname()
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &TileWarmWorker{
		BaseWorker:   worker.NewBaseWorker("tiles-warm", consumerGroup, logger),
		streamRepo:   streamRepo,
		runner:       runner,
		stream:       stream,
		consumerName: fmt.Sprintf("%s-%s", hostname, uuid.NewString()),
		maxRetries:   maxRetries,
		claimMinIdle: claimMinIdle,
	}
}

// Start запускает воркер и блокируется до Stop или отмены ctx
func (w *TileWarmWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting TileWarmWorker",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.recoverPending(ctx)

	messages, err := w.streamRepo.ConsumeStream(ctx, w.stream, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream closed")
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

// handle выполняет задачу и подтверждает сообщение. Битые сообщения и задачи,
// исчерпавшие попытки, тоже подтверждаются, чтобы не застревать в PEL.
func (w *TileWarmWorker) handle(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var job domain.TileWarmJob
	if err := json.Unmarshal([]byte(msg.Data), &job); err != nil {
		logger.Warn("Failed to parse warm job, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}
	logger = logger.With(zap.String("job_id", job.JobID.String()))

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err := w.runner.RunWarmJob(ctx, job)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			// без ack сообщение остается в PEL; его заберет recoverPending
			// следующего воркера группы через claimMinIdle
			return
		}
		logger.Error("Warm job failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(err))
		if attempt < w.maxRetries {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return
			}
		}
	}

	w.ack(ctx, msg.ID)
}

// recoverPending дорабатывает задачи, выданные группе и не подтвержденные:
// воркер, который их читал, был остановлен посреди прогрева.
func (w *TileWarmWorker) recoverPending(ctx context.Context) {
	if w.claimMinIdle <= 0 {
		return
	}
	pending, err := w.streamRepo.ClaimPending(ctx, w.stream, w.ConsumerGroup(), w.consumerName, w.claimMinIdle)
	if err != nil {
		w.Logger().Warn("Failed to claim pending warm jobs", zap.Error(err))
	}
	for _, msg := range pending {
		if ctx.Err() != nil || w.IsStopped() {
			return
		}
		w.handle(ctx, msg)
	}
}

func (w *TileWarmWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, w.stream, w.ConsumerGroup(), id); err != nil {
		w.Logger().Error("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}
