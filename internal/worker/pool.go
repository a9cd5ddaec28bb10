package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"sheetpos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAudit = "jobs:audit"

	JobAudit = "audit"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// HandlerFunc processes one job. A non-nil error counts as a failed attempt.
type HandlerFunc func(ctx context.Context, job Job) error

var errNoHandler = errors.New("no handler registered")

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAudit pushes an AuditLog append to Redis.
func (d *Dispatcher) EnqueueAudit(ctx context.Context, rec model.AuditRecord) error {
	return d.enqueue(ctx, QueueAudit, JobAudit, rec)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("worker: marshal %s payload: %w", jobType, err)
	}
	return push(ctx, d.rdb, queue, Job{ID: uuid.NewString(), Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("worker: marshal job: %w", err)
	}
	if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("worker: enqueue %s: %w", job.Type, err)
	}
	return nil
}

// Pool runs a fixed number of goroutines, each blocking on BRPOP across every
// queue that has a registered handler.
type Pool struct {
	rdb         *redis.Client
	size        int
	maxAttempts int
	pollTimeout time.Duration
	jobTimeout  time.Duration

	handlers map[string]HandlerFunc
	queues   []string
	wg       sync.WaitGroup
}

// NewPool builds a pool. A job that fails maxAttempts times is moved to the
// dead letter queue; values below 1 mean a single attempt.
func NewPool(rdb *redis.Client, size, maxAttempts int) *Pool {
	if size < 1 {
		size = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Pool{
		rdb:         rdb,
		size:        size,
		maxAttempts: maxAttempts,
		pollTimeout: 5 * time.Second,
		jobTimeout:  30 * time.Second,
		handlers:    make(map[string]HandlerFunc),
	}
}

// Handle registers fn for jobs of jobType arriving on queue.
func (p *Pool) Handle(queue, jobType string, fn HandlerFunc) {
	p.handlers[jobType] = fn
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches the workers. They exit when ctx is cancelled; Wait blocks
// until they have.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Int("workers", p.size).Strs("queues", p.queues).Msg("worker pool started")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop; the timeout bounds how long shutdown can take.
			result, err := p.rdb.BRPop(ctx, p.pollTimeout, p.queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Error().Err(err).Int("worker", id).Msg("worker: dequeue failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process runs one popped job to completion. The job is already off the queue,
// so it must not observe pool shutdown: it either succeeds, is requeued or
// lands in the DLQ.
func (p *Pool) process(parent context.Context, queue, raw string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), p.jobTimeout)
	defer cancel()

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "", json.RawMessage(raw), "unmarshal: "+err.Error(), 0)
		return
	}

	job.Attempts++
	logger := log.With().Str("queue", queue).Str("type", job.Type).Str("job_id", job.ID).Int("attempt", job.Attempts).Logger()

	fn, ok := p.handlers[job.Type]
	var err error
	if !ok {
		err = errNoHandler
	} else {
		err = fn(ctx, job)
	}
	if err == nil {
		logger.Debug().Msg("job done")
		return
	}

	if ok && job.Attempts < p.maxAttempts {
		logger.Warn().Err(err).Msg("job failed, requeueing")
		if perr := push(ctx, p.rdb, queue, job); perr == nil {
			return
		}
	}
	SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
}
