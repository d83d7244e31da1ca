package repository

import (
	"context"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	pkgkafka "FxPulse/pkg/kafka"
)

const (
	headerType       = "type"
	typePass         = "pass"
	typeInstrument   = "instrument"
	passKey          = "pass"
	passSinkKafkaTag = "kafka"
)

type batchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// passSummary is the compact record published once per pass.
type passSummary struct {
	At      time.Time                `json:"at"`
	Pick    *models.RankedPick       `json:"pick,omitempty"`
	Ranking []models.InstrumentScore `json:"ranking"`
	Errors  map[string]string        `json:"errors,omitempty"`
}

// KafkaPassSink publishes each pass as one summary message keyed "pass"
// followed by one message per instrument keyed by symbol.
type KafkaPassSink struct {
	producer batchPublisher
	topic    string
}

var _ domrepo.PassSink = (*KafkaPassSink)(nil)

func NewKafkaPassSink(producer batchPublisher, topic string) *KafkaPassSink {
	return &KafkaPassSink{producer: producer, topic: topic}
}

func (s *KafkaPassSink) Name() string { return passSinkKafkaTag }

func (s *KafkaPassSink) Publish(ctx context.Context, pass *models.EvaluationPass) error {
	msgs := make([]pkgkafka.Message, 0, len(pass.Instruments)+1)
	msgs = append(msgs, pkgkafka.Message{
		Key: []byte(passKey),
		Value: passSummary{
			At:      pass.At,
			Pick:    pass.Pick,
			Ranking: pass.Ranking,
			Errors:  pass.Errors,
		},
		Headers: map[string]string{headerType: typePass},
	})
	for _, ev := range pass.Instruments {
		msgs = append(msgs, pkgkafka.Message{
			Key:     []byte(ev.Symbol),
			Value:   ev,
			Headers: map[string]string{headerType: typeInstrument},
		})
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}
