package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"monitoring-service/pkg/rabbitmq/rabbitmq_producer"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQNewListingsQueueAdapter публикует событие NewListingsEvent
// для каждого профиля, которому подошли новые объявления
type RabbitMQNewListingsQueueAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

// NewRabbitMQNewListingsQueueAdapter создает новый экземпляр
func NewRabbitMQNewListingsQueueAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*RabbitMQNewListingsQueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("routingKey cannot be empty")
	}

	return &RabbitMQNewListingsQueueAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

// Name возвращает идентификатор уведомителя
func (a *RabbitMQNewListingsQueueAdapter) Name() string {
	return "rabbitmq"
}

// Notify отправляет подборку новых объявлений профиля в очередь
func (a *RabbitMQNewListingsQueueAdapter) Notify(ctx context.Context, runID uuid.UUID, profileName string, listings []domain.Listing) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "RabbitMQNewListingsQueueAdapter",
		"routing_key": a.routingKey,
		"profile":     profileName,
	})

	if len(listings) == 0 {
		return nil
	}

	// 1. Создаем DTO и маппим данные из домена в него.
	eventDTO := NewListingsEventDTO{
		RunID:      runID,
		Profile:    profileName,
		OccurredAt: time.Now().UTC(),
		Listings:   make([]ListingSummaryDTO, 0, len(listings)),
	}
	for _, listing := range listings {
		eventDTO.Listings = append(eventDTO.Listings, toListingSummaryDTO(listing))
	}

	eventJSON, err := json.Marshal(eventDTO)
	if err != nil {
		adapterLogger.Error("Failed to marshal new listings event to JSON", err, nil)
		return fmt.Errorf("failed to marshal new listings event for profile %s: %w", profileName, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         eventJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    "NewListingsEvent", // Название события из схемы
			"event-version": "1.0.0",            // Версия из схемы
		},
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = a.producer.Publish(publishCtx, a.routingKey, msg)
	if err != nil {
		adapterLogger.Error("Failed to publish new listings event", err, nil)
		return &domain.NotifierError{Notifier: a.Name(), Err: err}
	}

	adapterLogger.Info("Successfully published new listings event", port.Fields{"listings": len(eventDTO.Listings)})
	return nil
}
