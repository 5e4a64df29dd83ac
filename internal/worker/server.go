package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"church-service/internal/consumers"
	"church-service/internal/services"

	"github.com/hibiken/asynq"
)

type Worker struct {
	Processor *consumers.NotificationProcessor
}

func NewWorker(processor *consumers.NotificationProcessor) *Worker {
	return &Worker{Processor: processor}
}

func (w *Worker) HandleReceiptEmail(ctx context.Context, t *asynq.Task) error {
	var p services.ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessReceiptEmail(p)
}

func (w *Worker) HandleMirrorSync(ctx context.Context, t *asynq.Task) error {
	var p services.MirrorSyncPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessMirrorSync(p)
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.NotificationProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()
	mux.HandleFunc(services.TypeReceiptEmail, worker.HandleReceiptEmail)
	mux.HandleFunc(services.TypeMirrorSync, worker.HandleMirrorSync)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run worker: %v", err)
	}
}
