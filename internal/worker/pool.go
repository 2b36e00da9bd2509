package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueMovimientos = "jobs:movimientos"
	QueueEmail       = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MovimientoJob is the audit event emitted after a stock mutation commits.
// The mutating caller never waits for it: delivery failures are logged and
// swallowed so audit-trail unavailability can never block inventory writes.
type MovimientoJob struct {
	Tipo         string     `json:"tipo"` // INGRESO | EGRESO | ...
	ProductoID   uuid.UUID  `json:"producto_id"`
	Cantidad     int        `json:"cantidad"`
	RealizadoPor *uuid.UUID `json:"realizado_por,omitempty"`
	Referencia   string     `json:"referencia,omitempty"`
	Notas        string     `json:"notas,omitempty"`
}

// EmailJob asks the email worker to mail an invoice receipt.
type EmailJob struct {
	FacturaID uuid.UUID `json:"factura_id"`
	ToEmail   string    `json:"to_email"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarMovimiento pushes an audit movement job.
func (d *Dispatcher) EncolarMovimiento(ctx context.Context, job MovimientoJob) error {
	return d.enqueue(ctx, QueueMovimientos, "movimiento", job)
}

// EncolarEmail pushes an invoice receipt email job.
func (d *Dispatcher) EncolarEmail(ctx context.Context, job EmailJob) error {
	return d.enqueue(ctx, QueueEmail, "email", job)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the concrete processors for each queue.
type Handlers struct {
	Movimiento *MovimientoWorker
	Email      *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueMovimientos, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch queue {
	case QueueMovimientos:
		err = handlers.Movimiento.Process(ctx, job.Payload)
	case QueueEmail:
		err = handlers.Email.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Msg("job from unknown queue dropped")
		return
	}

	if err != nil {
		// Audit/email failures never propagate to the operation that
		// enqueued them; the job is parked for manual inspection.
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
	}
}
