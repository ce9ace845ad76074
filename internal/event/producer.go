package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ktecheletronicos/loja/internal/domain"
	pkgkafka "github.com/ktecheletronicos/loja/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated        = "loja.cart.updated"
	TopicCartCleared        = "loja.cart.cleared"
	TopicOrderPlaced        = "loja.order.placed"
	TopicDistanceCalculated = "loja.location.distance_calculated"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeOrder    = "order"
	AggregateTypeLocation = "location"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "loja-storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  float64        `json:"subtotal"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	UnitPrice *float64 `json:"unit_price"`
	Quantity  int      `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID          string  `json:"order_id"`
	SessionID        string  `json:"session_id"`
	CustomerName     string  `json:"customer_name"`
	DeliveryType     string  `json:"delivery_type"`
	ItemCount        int     `json:"item_count"`
	Total            float64 `json:"total"`
	HasValidTotal    bool    `json:"has_valid_total"`
	DeliveryFee      float64 `json:"delivery_fee"`
	WebhookDelivered bool    `json:"webhook_delivered"`
}

// DistanceCalculatedData is the payload for a distance_calculated event.
type DistanceCalculatedData struct {
	DistanceKm float64           `json:"distance"`
	Unit       string            `json:"unit"`
	From       domain.Coordinate `json:"from"`
	To         domain.Coordinate `json:"to"`
	Source     string            `json:"source"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			Slug:      item.Slug,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID: cart.SessionID,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.TotalAmount(),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.SessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	event, err := pkgkafka.NewEvent(TopicCartCleared, sessionID, AggregateTypeCart, SourceStorefront, CartClearedData{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	return nil
}

// orderPlacedData maps an order onto the order.placed event payload.
func orderPlacedData(order *domain.Order, webhookDelivered bool) OrderPlacedData {
	return OrderPlacedData{
		OrderID:          order.ID,
		SessionID:        order.SessionID,
		CustomerName:     order.Customer.Name,
		DeliveryType:     order.Delivery.Type,
		ItemCount:        order.Cart.TotalItems,
		Total:            order.Cart.TotalValue,
		HasValidTotal:    order.Cart.HasValidTotal,
		DeliveryFee:      order.Delivery.Fee,
		WebhookDelivered: webhookDelivered,
	}
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order, webhookDelivered bool) error {
	data := orderPlacedData(order, webhookDelivered)

	event, err := pkgkafka.NewEvent(TopicOrderPlaced, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, event); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	return nil
}

// PublishDistanceCalculated publishes a distance_calculated event. It is
// wired as a distance observer, so failures are logged rather than returned.
func (p *Producer) PublishDistanceCalculated(ctx context.Context, result domain.DistanceResult) {
	data := DistanceCalculatedData{
		DistanceKm: result.DistanceKm,
		Unit:       result.Unit,
		From:       result.Origin,
		To:         result.Destination,
		Source:     string(result.Source),
	}

	event, err := pkgkafka.NewEvent(TopicDistanceCalculated, SourceStorefront, AggregateTypeLocation, SourceStorefront, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "create distance_calculated event failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if err := p.kafka.Publish(ctx, TopicDistanceCalculated, event); err != nil {
		p.logger.WarnContext(ctx, "publish distance_calculated event failed",
			slog.String("error", err.Error()),
		)
	}
}
