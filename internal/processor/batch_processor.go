package processor

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"propsearch/server/config"
	"propsearch/server/internal/database"
	"propsearch/server/internal/models"
	"propsearch/server/internal/queue"
)

// Transactor runs a function inside a database transaction. *gorm.DB
// satisfies it.
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Stats counts the outcome of processed batches.
type Stats struct {
	Batches    int64 `json:"batches"`
	Failed     int64 `json:"failed"`
	Properties int64 `json:"properties"`
	Periods    int64 `json:"periods"`
}

// BatchProcessor writes import batches taken from the queue into the store
type BatchProcessor struct {
	db     Transactor
	logger *logrus.Logger
	config *config.Config
	queue  *queue.ImportQueue
	ctx    context.Context
	cancel context.CancelFunc

	batches    atomic.Int64
	failed     atomic.Int64
	properties atomic.Int64
	periods    atomic.Int64
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, queue *queue.ImportQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and launches the configured number of
// workers.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start(p.config.BatchProcessing.ProcessorCount)
}

// Stop closes the queue, waits for queued batches to be written and then
// abandons pending retries.
func (p *BatchProcessor) Stop() {
	p.queue.Close()
	p.cancel()
}

// Abort abandons pending retries immediately and then stops.
func (p *BatchProcessor) Abort() {
	p.cancel()
	p.queue.Close()
}

// Stats returns a snapshot of the processing counters.
func (p *BatchProcessor) Stats() Stats {
	return Stats{
		Batches:    p.batches.Load(),
		Failed:     p.failed.Load(),
		Properties: p.properties.Load(),
		Periods:    p.periods.Load(),
	}
}

// processBatch writes a single batch in one transaction, retrying transient
// failures.
func (p *BatchProcessor) processBatch(batch *models.ImportBatch) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	retryDelay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, maxRetries)
			select {
			case <-time.After(retryDelay):
			case <-p.ctx.Done():
				p.failed.Add(1)
				return fmt.Errorf("batch abandoned: %w", p.ctx.Err())
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			return writeBatch(tx, batch)
		})

		if err == nil {
			p.batches.Add(1)
			p.properties.Add(int64(len(batch.Properties)))
			p.periods.Add(int64(len(batch.Periods)))
			p.logger.WithFields(logrus.Fields{
				"properties": len(batch.Properties),
				"periods":    len(batch.Periods),
			}).Info("Successfully processed batch")
			return nil
		}

		if database.IsPermanent(err) {
			p.failed.Add(1)
			return fmt.Errorf("batch rejected by the database: %w", err)
		}
		if database.IsBusy(err) {
			p.logger.WithError(err).Warn("Database busy while processing batch")
		} else {
			p.logger.Errorf("Batch processing failed: %v", err)
		}
	}

	p.failed.Add(1)
	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}

// writeBatch upserts the batch and drops stored periods of its properties
// that the batch no longer lists.
func writeBatch(tx *gorm.DB, batch *models.ImportBatch) error {
	if err := database.UpsertProperties(tx, batch.Properties); err != nil {
		return fmt.Errorf("failed to upsert properties batch: %w", err)
	}
	if err := database.UpsertPeriods(tx, batch.Periods); err != nil {
		return fmt.Errorf("failed to upsert periods batch: %w", err)
	}

	names := make(map[int64][]string, len(batch.Properties))
	for _, period := range batch.Periods {
		names[period.PropertyID] = append(names[period.PropertyID], period.PeriodName)
	}
	for _, property := range batch.Properties {
		if err := database.DeletePeriodsNotIn(tx, property.PropertyID, names[property.PropertyID]); err != nil {
			return err
		}
	}
	return nil
}
