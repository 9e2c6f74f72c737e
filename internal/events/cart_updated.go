package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shop-service-go/internal/cart"
)

const (
	CartUpdatedEventName    = "CartUpdated"
	CartUpdatedEventVersion = 1
	cartUpdatedSchema       = "contracts/events/cart/CartUpdated.v1.payload.schema.json"
)

// EventEnvelope represents the shared envelope for v1 contracts.
type EventEnvelope struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      int64     `json:"sequence"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
}

type CartUpdatedEvent struct {
	EventEnvelope
	Payload CartUpdatedPayload `json:"payload"`
}

type CartUpdatedPayload struct {
	CartID        string            `json:"cartId"`
	UserID        string            `json:"userId"`
	Items         []CartUpdatedItem `json:"items"`
	TotalProducts int               `json:"totalProducts"`
	TotalPrice    decimal.Decimal   `json:"totalPrice"`
	Timestamp     time.Time         `json:"timestamp"`
}

type CartUpdatedItem struct {
	ProductType string          `json:"productType"`
	ProductID   int64           `json:"productId"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type EventMeta struct {
	CorrelationID string
	CausationID   string
}

// CartPartitionKey is the partition events about one cart share.
func CartPartitionKey(cartID int64) string {
	return "cart-" + strconv.FormatInt(cartID, 10)
}

func newCartUpdatedEvent(meta EventMeta, seq int64, producer, userID string, c cart.Cart, occurredAt time.Time) CartUpdatedEvent {
	payload := CartUpdatedPayload{
		CartID:        strconv.FormatInt(c.ID, 10),
		UserID:        userID,
		Items:         []CartUpdatedItem{},
		TotalProducts: c.TotalProducts,
		TotalPrice:    c.TotalPrice,
		Timestamp:     occurredAt,
	}
	for _, l := range c.Lines {
		payload.Items = append(payload.Items, CartUpdatedItem{
			ProductType: string(l.ProductType),
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			TotalPrice:  l.TotalPrice,
		})
	}

	return CartUpdatedEvent{
		EventEnvelope: EventEnvelope{
			EventName:     CartUpdatedEventName,
			EventVersion:  CartUpdatedEventVersion,
			EventID:       uuid.NewString(),
			CorrelationID: meta.CorrelationID,
			CausationID:   meta.CausationID,
			Producer:      producer,
			PartitionKey:  CartPartitionKey(c.ID),
			Sequence:      seq,
			OccurredAt:    occurredAt,
			Schema:        cartUpdatedSchema,
		},
		Payload: payload,
	}
}
