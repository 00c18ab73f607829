package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/taxi-fare-prep/internal/config"
	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes prepared rows to a Kafka topic, one JSON message per row.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	source string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic. source names
// the input file and is attached to every message.
func NewWriter(cfg *config.Config, source string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, source: source, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// LoadBatch publishes the batch in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, batch dataset.Batch) error {
	if len(batch.Records) == 0 {
		return nil
	}
	preparedAt := domain.Now()
	msgs := make([]kafkago.Message, len(batch.Records))
	for i, rec := range batch.Records {
		msg, err := serializeToMessage(rec, w.source, preparedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	w.logger.Debug("published batch", "messages", len(msgs), "first_row", batch.Records[0].Index)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one row into a Kafka message keyed by row index.
// Non-finite floats, which JSON cannot carry, are published as null.
func serializeToMessage(rec dataset.Record, source string, preparedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(finiteFields(rec.Fields))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize row %d: %w", rec.Index, err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(rec.Index)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(source)},
			{Key: "prepared_at", Value: []byte(preparedAt.Format(time.RFC3339))},
		},
	}, nil
}

func finiteFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		out[k] = v
	}
	return out
}
