// Package media removes stored media files in the background once the record
// referencing them is gone.
package media

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrCleanerClosed is returned when work is scheduled after Close.
var ErrCleanerClosed = errors.New("media cleaner closed")

// Deleter removes one stored object.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// CleanerConfig controls the concurrency characteristics of the cleaner.
type CleanerConfig struct {
	QueueSize     int
	Workers       int
	DeleteTimeout time.Duration
}

// Cleaner deletes media objects on a bounded queue served by a fixed worker
// pool. Failures are logged; nothing is retried or rolled back.
type Cleaner struct {
	storage Deleter
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewCleaner starts the worker pool.
func NewCleaner(storage Deleter, cfg CleanerConfig, logger *slog.Logger) *Cleaner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.DeleteTimeout <= 0 {
		cfg.DeleteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Cleaner{
		storage: storage,
		logger:  logger,
		timeout: cfg.DeleteTimeout,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	c.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go c.worker()
	}

	return c
}

// Enqueue schedules removal of the given keys. Empty keys are skipped. It
// blocks while the queue is full until ctx is done.
func (c *Cleaner) Enqueue(ctx context.Context, keys ...string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrCleanerClosed
	}

	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c.jobs <- key:
		}
	}
	return nil
}

// Close stops accepting work and waits for queued deletions to finish. When
// ctx expires first the in-flight deletions are aborted.
func (c *Cleaner) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		c.cancel()
		return ctx.Err()
	case <-done:
		c.cancel()
		return nil
	}
}

func (c *Cleaner) worker() {
	defer c.wg.Done()

	for key := range c.jobs {
		if c.ctx.Err() != nil {
			return
		}
		c.handle(key)
	}
}

func (c *Cleaner) handle(key string) {
	if c.storage == nil {
		c.logger.Error("media cleaner has no storage", "key", key)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	if err := c.storage.Delete(ctx, key); err != nil {
		c.logger.Error("delete media object", "key", key, "error", err)
		return
	}
	c.logger.Debug("media object deleted", "key", key)
}
