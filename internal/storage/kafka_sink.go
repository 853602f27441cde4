package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PersonaEvent is the payload published for every saved persona.
type PersonaEvent struct {
	RunID    string `json:"run_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
	Document string `json:"document"`
	SavedAt  string `json:"saved_at"`
}

// KafkaSink publishes personas keyed by username, so compacted topics keep
// the latest document per user.
type KafkaSink struct {
	writer messageWriter
	runID  string
	now    func() time.Time
}

var _ ports.PersonaSink = (*KafkaSink)(nil)

func NewKafkaSink(brokers []string, topic, runID string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		MaxAttempts:            3,
	}
	return &KafkaSink{writer: writer, runID: runID, now: time.Now}
}

func (s *KafkaSink) Save(ctx context.Context, doc domain.PersonaDocument, username string) error {
	payload, err := json.Marshal(PersonaEvent{
		RunID:    s.runID,
		Username: username,
		Status:   string(doc.Status),
		Document: doc.Text(),
		SavedAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(username),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish persona %s: %w", username, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
