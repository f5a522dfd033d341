// Package worker runs chat commands off the gateway event loop.
// Handlers acknowledge an interaction immediately and enqueue the slow part
// here, which gives:
// - Backpressure handling via load shedding
// - A per-job timeout on source reads
// - Graceful shutdown that drains queued jobs

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordbot_jobs_enqueued_total",
		Help: "Total number of command jobs accepted by the pool",
	}, []string{"job"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordbot_jobs_processed_total",
		Help: "Total number of command jobs run to completion",
	}, []string{"job"})

	jobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordbot_jobs_failed_total",
		Help: "Total number of command jobs that panicked or timed out",
	}, []string{"job"})

	jobsLoadShed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordbot_jobs_load_shed_total",
		Help: "Total number of command jobs dropped because the queue was full",
	}, []string{"job"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recordbot_worker_queue_depth",
		Help: "Current depth of the command queue",
	})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recordbot_job_duration_seconds",
		Help:    "Duration of command jobs",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

// Job represents a unit of work for the worker pool
type Job struct {
	Name      string
	Run       func(ctx context.Context)
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration
	Logger      *zap.Logger
}

// Pool manages a pool of workers for async command processing
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	// Start queue depth reporter
	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"jobTimeout", p.config.JobTimeout,
	)
}

// Stop closes the queue, lets workers drain what is already queued and waits
// for them to finish.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a job without blocking. It returns false when the queue is
// full or the pool is stopped; the caller must report the job as dropped.
func (p *Pool) Enqueue(name string, run func(ctx context.Context)) bool {
	job := Job{
		Name:      name,
		Run:       run,
		Timestamp: time.Now(),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.logger.Warnw("Worker pool stopped, dropping job", "job", name)
		jobsLoadShed.WithLabelValues(name).Inc()
		return false
	}

	select {
	case p.jobQueue <- job:
		jobsEnqueued.WithLabelValues(name).Inc()
		return true
	default:
		p.logger.Warnw("Worker queue full, dropping job", "job", name, "queueSize", p.config.QueueSize)
		jobsLoadShed.WithLabelValues(name).Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue until it is closed
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debugw("Worker started", "worker", id)

	for job := range p.jobQueue {
		p.process(id, job)
	}

	p.logger.Debugw("Job queue closed, worker exiting", "worker", id)
}

func (p *Pool) process(id int, job Job) {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.JobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		jobDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			p.logger.Errorw("Job panic", "worker", id, "job", job.Name, "error", r)
			jobsFailed.WithLabelValues(job.Name).Inc()
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.logger.Warnw("Job exceeded timeout", "worker", id, "job", job.Name, "timeout", p.config.JobTimeout)
			jobsFailed.WithLabelValues(job.Name).Inc()
			return
		}
		jobsProcessed.WithLabelValues(job.Name).Inc()
	}()

	p.logger.Debugw("Running job", "worker", id, "job", job.Name, "queued", start.Sub(job.Timestamp))
	job.Run(ctx)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
