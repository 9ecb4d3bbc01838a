package processor

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"propsearch/server/config"
	"propsearch/server/internal/models"
	"propsearch/server/internal/queue"
)

// MockDB is a mock implementation of Transactor
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error {
	args := m.Called(fc)
	return args.Error(0)
}

func testConfig(retries int) *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = retries
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func testBatch() *models.ImportBatch {
	return &models.ImportBatch{
		Properties: []models.Property{{PropertyID: 1, Title: "Casa 1"}, {PropertyID: 2, Title: "Casa 2"}},
		Periods:    []models.Period{{PropertyID: 1, PeriodName: "Navidad", Price: "$5.300", Status: "Disponible"}},
	}
}

func TestNewBatchProcessor(t *testing.T) {
	// Setup
	mockDB := &MockDB{}
	mockQueue := queue.NewImportQueue(10, nil)
	cfg := testConfig(3)
	logger := logrus.New()

	// Test
	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	// Assert
	assert.NotNil(t, processor)
	assert.Equal(t, mockDB, processor.db)
	assert.Equal(t, mockQueue, processor.queue)
	assert.Equal(t, cfg, processor.config)
	assert.Equal(t, logger, processor.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	mockDB := &MockDB{}
	processor := NewBatchProcessor(mockDB, queue.NewImportQueue(10, nil), testConfig(2), logrus.New())

	// Test successful processing
	mockDB.On("Transaction", mock.Anything).Return(nil).Once()
	err := processor.processBatch(testBatch())
	assert.NoError(t, err)

	// Test retry on failure: the first attempt plus two retries
	mockDB.On("Transaction", mock.Anything).Return(errors.New("db error")).Times(3)
	err = processor.processBatch(testBatch())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 3 attempts")
	mockDB.AssertExpectations(t)

	stats := processor.Stats()
	assert.Equal(t, int64(1), stats.Batches)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(2), stats.Properties)
	assert.Equal(t, int64(1), stats.Periods)
}

func TestBatchProcessor_PermanentErrorIsNotRetried(t *testing.T) {
	mockDB := &MockDB{}
	processor := NewBatchProcessor(mockDB, queue.NewImportQueue(10, nil), testConfig(5), logrus.New())

	constraint := sqlite3.Error{Code: sqlite3.ErrConstraint}
	mockDB.On("Transaction", mock.Anything).Return(constraint).Once()

	err := processor.processBatch(testBatch())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	mockDB.AssertNumberOfCalls(t, "Transaction", 1)
}

func TestBatchProcessor_RecoversAfterTransientErrors(t *testing.T) {
	mockDB := &MockDB{}
	processor := NewBatchProcessor(mockDB, queue.NewImportQueue(10, nil), testConfig(3), logrus.New())

	mockDB.On("Transaction", mock.Anything).Return(sqlite3.Error{Code: sqlite3.ErrBusy}).Twice()
	mockDB.On("Transaction", mock.Anything).Return(nil).Once()

	err := processor.processBatch(testBatch())
	assert.NoError(t, err)
	mockDB.AssertNumberOfCalls(t, "Transaction", 3)
}

func TestBatchProcessor_AbortCancelsRetries(t *testing.T) {
	mockDB := &MockDB{}
	cfg := testConfig(3)
	cfg.BatchProcessing.RetryDelay = 60
	processor := NewBatchProcessor(mockDB, queue.NewImportQueue(10, nil), cfg, logrus.New())

	mockDB.On("Transaction", mock.Anything).Return(errors.New("db error"))
	processor.Abort()

	err := processor.processBatch(testBatch())
	assert.ErrorIs(t, err, context.Canceled)
	mockDB.AssertNumberOfCalls(t, "Transaction", 1)
}

func TestBatchProcessor_StartStop(t *testing.T) {
	mockDB := &MockDB{}
	mockQueue := queue.NewImportQueue(10, nil)
	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(0), logrus.New())

	mockDB.On("Transaction", mock.Anything).Return(nil)

	processor.Start()
	assert.NoError(t, mockQueue.Push(testBatch()))
	assert.NoError(t, mockQueue.Push(testBatch()))

	// Stop drains the queue before returning
	processor.Stop()
	assert.True(t, mockQueue.IsClosed())
	assert.Equal(t, int64(2), processor.Stats().Batches)
}
