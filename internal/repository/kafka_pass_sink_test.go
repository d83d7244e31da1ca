package repository

import (
	"context"
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	pkgkafka "FxPulse/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	topic string
	msgs  []pkgkafka.Message
}

func (p *capturePublisher) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	p.topic = topic
	p.msgs = msgs
	return nil
}

func TestKafkaPassSinkPublishesSummaryThenInstruments(t *testing.T) {
	pub := &capturePublisher{}
	sink := NewKafkaPassSink(pub, "fxpulse.passes")

	pick := &models.RankedPick{Symbol: "GBPUSD=X", Result: models.ScoreResult{Score: 100, Status: models.StatusHigh}, HighProbability: true}
	pass := &models.EvaluationPass{
		At: time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC),
		Instruments: []models.InstrumentEvaluation{
			{Symbol: "EURUSD=X", Score: models.ScoreResult{Score: 35, Status: models.StatusLow}},
			{Symbol: "GBPUSD=X", Score: pick.Result},
		},
		Pick: pick,
	}

	require.NoError(t, sink.Publish(context.Background(), pass))
	assert.Equal(t, "kafka", sink.Name())
	assert.Equal(t, "fxpulse.passes", pub.topic)
	require.Len(t, pub.msgs, 3)

	assert.Equal(t, []byte("pass"), pub.msgs[0].Key)
	assert.Equal(t, "pass", pub.msgs[0].Headers["type"])
	summary, ok := pub.msgs[0].Value.(passSummary)
	require.True(t, ok)
	assert.Equal(t, "GBPUSD=X", summary.Pick.Symbol)

	assert.Equal(t, []byte("EURUSD=X"), pub.msgs[1].Key)
	assert.Equal(t, "instrument", pub.msgs[2].Headers["type"])
}
