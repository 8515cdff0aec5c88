// Package events publishes domain events after their database transaction commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/model"
	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
)

// TypeSessionRecorded is the event type for a persisted, completed session.
const TypeSessionRecorded = "session.recorded"

// SessionRecorded is the payload of a session.recorded event.
type SessionRecorded struct {
	Type        string          `json:"type"`
	SessionID   uint            `json:"session_id"`
	PatientID   uint            `json:"patient_id"`
	TherapistID uint            `json:"therapist_id"`
	Results     []ResultPayload `json:"results"`
	Correct     int             `json:"correct"`
	Total       int             `json:"total"`
	Note        string          `json:"note,omitempty"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// ResultPayload is one goal outcome inside SessionRecorded.
type ResultPayload struct {
	GoalID   uint   `json:"goal_id"`
	GoalName string `json:"goal_name"`
	Outcome  bool   `json:"outcome"`
}

// NewSessionRecorded builds the event for a session with its results loaded.
func NewSessionRecorded(s model.Session) SessionRecorded {
	results := lo.Map(s.Results, func(r model.SessionResult, _ int) ResultPayload {
		return ResultPayload{GoalID: r.GoalID, GoalName: r.GoalName, Outcome: r.Outcome}
	})
	return SessionRecorded{
		Type:        TypeSessionRecorded,
		SessionID:   s.ID,
		PatientID:   s.PatientID,
		TherapistID: s.TherapistID,
		Results:     results,
		Correct:     lo.CountBy(results, func(r ResultPayload) bool { return r.Outcome }),
		Total:       len(results),
		Note:        s.Note,
		RecordedAt:  s.CreatedAt,
	}
}

// Publisher delivers domain events. Delivery is best-effort; a failed publish
// never undoes the committed change.
type Publisher interface {
	PublishSessionRecorded(ctx context.Context, event SessionRecorded) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishSessionRecorded(context.Context, SessionRecorded) error { return nil }
func (NopPublisher) Close() error                                                 { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by patient id, so one
// patient's sessions stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}}
}

// PublishSessionRecorded encodes event as JSON and writes it.
func (p *KafkaPublisher) PublishSessionRecorded(ctx context.Context, event SessionRecorded) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.PatientID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// New returns a Kafka publisher when brokers are configured and a NopPublisher otherwise.
func New(cfg *config.Config) Publisher {
	if cfg == nil || len(cfg.KafkaBrokers) == 0 {
		return NopPublisher{}
	}
	log.Printf("Publishing session events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
