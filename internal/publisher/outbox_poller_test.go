package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/angeeelvega/payment-app-backend/internal/domain"
	r "github.com/angeeelvega/payment-app-backend/internal/repository"

	"github.com/google/uuid"
)

type MockRepository struct {
	OutboxEvents []*r.OutboxEvent
	GetEventsErr error
	MarkErr      error
	ProcessedID  int64
	MarkCalls    int
}

func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) RunMigrations(*r.Credentials) error {
	return nil
}

func (m *MockRepository) CreateTransaction(_ context.Context, _ *domain.Transaction) error {
	return nil
}

func (m *MockRepository) GetTransactionByID(_ context.Context, _ uuid.UUID) (*domain.Transaction, error) {
	return nil, r.ErrTransactionNotFound
}

func (m *MockRepository) FinalizeApproval(_ context.Context, _ *domain.Transaction, _ *domain.Delivery, _ *r.OutboxEvent) error {
	return nil
}

func (m *MockRepository) FinalizeFailure(_ context.Context, _ *domain.Transaction, _ *r.OutboxEvent) error {
	return nil
}

func (m *MockRepository) GetProductByID(_ context.Context, _ uuid.UUID) (*domain.Product, error) {
	return nil, r.ErrProductNotFound
}

func (m *MockRepository) ListProducts(_ context.Context) ([]*domain.Product, error) {
	return nil, nil
}

func (m *MockRepository) GetDeliveryByTransactionID(_ context.Context, _ uuid.UUID) (*domain.Delivery, error) {
	return nil, r.ErrDeliveryNotFound
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	if m.GetEventsErr != nil {
		return nil, m.GetEventsErr
	}
	if len(m.OutboxEvents) > 0 {
		ev := []*r.OutboxEvent{m.OutboxEvents[0]} // return first event once
		m.OutboxEvents = m.OutboxEvents[1:]
		return ev, nil
	}
	return nil, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.MarkCalls++
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedID = id
	return nil
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	topicConfigs := []kafkaGo.TopicConfig{{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}}

	err = controllerConn.CreateTopics(topicConfigs...)
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestOutboxPoller_PublishesEventsToKafka(t *testing.T) {
	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()

	createTopic(t, brokerAddr, "payment-events")

	// Give Kafka time to fully initialize the topic
	time.Sleep(5 * time.Second)

	transactionID := uuid.NewString()
	mockRepo := &MockRepository{
		OutboxEvents: []*r.OutboxEvent{
			{
				ID:          1,
				AggregateID: transactionID,
				EventType:   "payment.approved",
				Payload:     json.RawMessage(`{"transaction_id":"` + transactionID + `","total_amount":213000}`),
				CreatedAt:   time.Now(),
			},
		},
	}

	writer := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokerAddr),
		Topic:        "payment-events",
		Balancer:     &kafkaGo.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	defer writer.Close()

	poller := &OutboxPoller{
		tick:   1 * time.Second,
		repo:   mockRepo,
		writer: writer,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	go poller.Run(ctx)

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    "payment-events",
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, transactionID, string(msg.Key))

	var payload map[string]interface{}
	err = json.Unmarshal(msg.Value, &payload)
	require.NoError(t, err)

	assert.Equal(t, transactionID, payload["transaction_id"])

	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "payment.approved", string(msg.Headers[0].Value))

	// marked as processed only after the publish succeeded
	assert.Equal(t, int64(1), mockRepo.ProcessedID)
}

func TestOutboxPoller_FetchErrorIsNotFatal(t *testing.T) {
	mockRepo := &MockRepository{GetEventsErr: errors.New("db down")}
	poller := NewOutboxPoller(mockRepo, "localhost:9092")

	// must not panic and must not mark anything
	poller.processUnpublishedEvents(context.Background())
	assert.Equal(t, 0, mockRepo.MarkCalls)
}
