package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"propsearch/server/internal/models"
)

// maxMessageSize bounds a single line of a message stream.
const maxMessageSize = 16 << 20

// Pusher hands batches to the processing queue, waiting for room.
type Pusher interface {
	PushWait(ctx context.Context, batch *models.ImportBatch) error
}

// Message is one line of the bridge's message stream. Type is "items",
// "complete" or "error".
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Importer normalizes feeds and queues them in batches.
type Importer struct {
	queue     Pusher
	batchSize int
	logger    *logrus.Logger
}

func NewImporter(queue Pusher, batchSize int, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if batchSize < 1 {
		batchSize = 100
	}
	return &Importer{queue: queue, batchSize: batchSize, logger: logger}
}

// Import normalizes feed and queues it.
func (i *Importer) Import(ctx context.Context, feed *Feed) (Summary, error) {
	props, periods, sum := Normalize(feed)
	for _, batch := range Batches(props, periods, i.batchSize) {
		if err := i.queue.PushWait(ctx, batch); err != nil {
			return sum, fmt.Errorf("failed to queue batch: %w", err)
		}
		sum.Batches++
	}

	i.logger.WithFields(logrus.Fields{
		"properties":         sum.Properties,
		"periods":            sum.Periods,
		"dropped_properties": sum.DroppedProperties,
		"dropped_periods":    sum.DroppedPeriods,
		"batches":            sum.Batches,
	}).Info("Feed queued")
	return sum, nil
}

// ImportDocument reads a whole feed document from r and queues it.
func (i *Importer) ImportDocument(ctx context.Context, r io.Reader) (Summary, error) {
	feed, err := Decode(r)
	if err != nil {
		return Summary{}, err
	}
	return i.Import(ctx, feed)
}

// ImportStream reads a line-delimited message stream from r. Each "items"
// message carries a partial feed that is queued as it arrives; a property
// and its periods must travel in the same message. Malformed lines are
// logged and skipped. The stream ends at EOF or with a "complete" or
// "error" message.
func (i *Importer) ImportStream(ctx context.Context, r io.Reader) (Summary, error) {
	var total Summary

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			i.logger.WithError(err).Error("Failed to parse feed message")
			continue
		}

		switch msg.Type {
		case "items":
			var feed Feed
			if err := json.Unmarshal(msg.Data, &feed); err != nil {
				i.logger.WithError(err).Error("Failed to parse items")
				continue
			}
			sum, err := i.Import(ctx, &feed)
			total.add(sum)
			if err != nil {
				return total, err
			}

		case "complete":
			var complete struct {
				Status     string `json:"status"`
				Message    string `json:"message"`
				TotalItems int    `json:"total_items"`
			}
			if err := json.Unmarshal(msg.Data, &complete); err != nil {
				i.logger.WithError(err).Error("Failed to parse completion message")
			}
			i.logger.WithFields(logrus.Fields{
				"status":      complete.Status,
				"message":     complete.Message,
				"total_items": complete.TotalItems,
			}).Info("Feed completed")
			return total, nil

		case "error":
			var errMsg struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(msg.Data, &errMsg); err != nil {
				i.logger.WithError(err).Error("Failed to parse error message")
			}
			return total, fmt.Errorf("feed reported an error: %s", errMsg.Message)

		default:
			i.logger.WithField("type", msg.Type).Warn("Ignoring unknown feed message")
		}
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("failed to read feed stream: %w", err)
	}
	return total, nil
}
