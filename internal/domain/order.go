package domain

import (
	"fmt"
	"time"
)

// Delivery options offered at checkout. The values match the storefront
// form and appear verbatim in the WhatsApp message and webhook payload.
const (
	DeliveryTypeDelivery = "ENTREGA"
	DeliveryTypePickup   = "RETIRADA"
)

// Customer name sources.
const (
	CustomerSourceURL  = "URL"
	CustomerSourceForm = "FORM"
)

// Order is the assembled order payload sent to the order webhook.
type Order struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"-"`
	Timestamp    time.Time     `json:"timestamp"`
	Customer     Customer      `json:"customer"`
	Payment      Payment       `json:"payment"`
	Delivery     Delivery      `json:"delivery"`
	Cart         OrderCart     `json:"cart"`
	Observations string        `json:"observations,omitempty"`
	Search       SearchContext `json:"search"`
}

// Customer identifies who placed the order and where the name came from.
type Customer struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Payment carries the chosen payment method.
type Payment struct {
	Method string `json:"method"`
}

// Delivery describes how the order will reach the customer.
type Delivery struct {
	Type       string           `json:"type"`
	Fee        float64          `json:"fee"`
	DistanceKm *float64         `json:"distance,omitempty"`
	Address    *DeliveryAddress `json:"address,omitempty"`
}

// DeliveryAddress is the destination for delivery orders.
type DeliveryAddress struct {
	Kind         string            `json:"type"`
	Company      string            `json:"company,omitempty"`
	Street       string            `json:"street"`
	Number       string            `json:"number"`
	Neighborhood string            `json:"neighborhood"`
	City         string            `json:"city"`
	Coordinates  *OrderCoordinates `json:"coordinates,omitempty"`
}

// OrderCoordinates pins the delivery point with a shareable maps link.
type OrderCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	MapsURL   string  `json:"mapsUrl"`
}

// MapsURL builds the Google Maps link for a coordinate.
func MapsURL(c Coordinate) string {
	return fmt.Sprintf("https://maps.google.com/maps?q=%v,%v", c.Latitude, c.Longitude)
}

// OrderCart is the cart snapshot embedded in the order.
type OrderCart struct {
	Items         []OrderItem `json:"items"`
	TotalItems    int         `json:"totalItems"`
	Subtotal      float64     `json:"subtotal"`
	DeliveryFee   float64     `json:"deliveryFee"`
	TotalValue    float64     `json:"totalValue"`
	HasValidTotal bool        `json:"hasValidTotal"`
}

// OrderItem is a single cart line in the order payload.
type OrderItem struct {
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
	HasPrice  bool    `json:"hasPrice"`
}

// SearchContext records which search, if any, led to this order.
type SearchContext struct {
	FromURL string `json:"fromUrl,omitempty"`
	Applied string `json:"appliedSearch,omitempty"`
}
