package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/internal/event"
	"github.com/ktecheletronicos/loja/internal/location"
	apperrors "github.com/ktecheletronicos/loja/pkg/errors"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
	"github.com/ktecheletronicos/loja/pkg/validator"
)

// Customer names need a full name: letters (including accented ones) and
// spaces, at least 12 characters.
var nameRe = regexp.MustCompile(`^[A-Za-zÀ-ÿ ]{12,}$`)

// Address kinds accepted at checkout.
const (
	AddressKindHouse       = "CASA"
	AddressKindCompany     = "EMPRESA"
	AddressKindCondominium = "CONDOMINIO"
)

// AddressInput is the delivery address form.
type AddressInput struct {
	Kind         string `json:"type" validate:"required,oneof=CASA EMPRESA CONDOMINIO"`
	Company      string `json:"company"`
	Street       string `json:"street" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Neighborhood string `json:"neighborhood" validate:"required"`
	City         string `json:"city"`
}

// Input is the checkout form.
type Input struct {
	CustomerName  string        `json:"customer_name" validate:"required"`
	NameSource    string        `json:"name_source" validate:"omitempty,oneof=URL FORM"`
	PaymentMethod string        `json:"payment_method" validate:"required"`
	DeliveryType  string        `json:"delivery_type" validate:"required,oneof=ENTREGA RETIRADA"`
	Observations  string        `json:"observations"`
	Address       *AddressInput `json:"address"`
	SearchFromURL string        `json:"search_from_url"`
	AppliedSearch string        `json:"applied_search"`
}

// CartProvider supplies the session's cart at checkout time.
type CartProvider interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
}

// DistanceProvider supplies the session's last resolved delivery distance.
type DistanceProvider interface {
	LastDistance(sessionID string) (domain.DistanceResult, bool)
}

// Result is the outcome of a checkout submission.
type Result struct {
	Order            *domain.Order `json:"order"`
	WhatsAppURL      string        `json:"whatsapp_url"`
	WebhookDelivered bool          `json:"webhook_delivered"`
}

// Config holds order intake settings.
type Config struct {
	// WebhookURL receives the assembled order payload. Delivery is
	// best-effort: the customer still reaches WhatsApp when it fails.
	WebhookURL string

	// WhatsAppPhone is the store number the message is addressed to.
	WhatsAppPhone string

	// Fee drives the distance-based delivery fee.
	Fee location.FeeConfig
}

// Service assembles orders from the cart and checkout form, forwards them
// to the order webhook and builds the WhatsApp handoff.
type Service struct {
	cfg      Config
	carts    CartProvider
	distance DistanceProvider
	http     *httpclient.Client
	producer *event.Producer
	logger   *slog.Logger
}

// NewService creates the order service.
func NewService(cfg Config, carts CartProvider, distance DistanceProvider, client *httpclient.Client, producer *event.Producer, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		carts:    carts,
		distance: distance,
		http:     client,
		producer: producer,
		logger:   logger,
	}
}

// Submit validates the checkout form, assembles the order, posts it to the
// order webhook and returns the WhatsApp handoff URL. Webhook failures do
// not fail the submission; they are reported in the result.
func (s *Service) Submit(ctx context.Context, sessionID string, input Input) (*Result, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	order := s.build(sessionID, input, cart)

	delivered := s.sendToWebhook(ctx, order)

	if s.producer != nil {
		if err := s.producer.PublishOrderPlaced(ctx, order, delivered); err != nil {
			s.logger.WarnContext(ctx, "publish order.placed failed",
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "order submitted",
		slog.String("order_id", order.ID),
		slog.String("delivery_type", order.Delivery.Type),
		slog.Int("items", order.Cart.TotalItems),
		slog.Bool("webhook_delivered", delivered),
	)

	return &Result{
		Order:            order,
		WhatsAppURL:      s.WhatsAppURL(order),
		WebhookDelivered: delivered,
	}, nil
}

func (s *Service) validate(input Input) error {
	if err := validator.Validate(input); err != nil {
		return err
	}
	if !nameRe.MatchString(strings.TrimSpace(input.CustomerName)) {
		return apperrors.InvalidInput("customer name must have at least 12 letters")
	}
	if input.DeliveryType == domain.DeliveryTypeDelivery {
		if input.Address == nil {
			return apperrors.InvalidInput("delivery address is required")
		}
		if err := validator.Validate(*input.Address); err != nil {
			return err
		}
		if input.Address.Kind != AddressKindHouse && strings.TrimSpace(input.Address.Company) == "" {
			return apperrors.InvalidInput("company or condominium name is required")
		}
	}
	return nil
}

// build assembles the order payload. Delivery orders carry the session's
// last resolved distance, the computed fee and the pinned coordinates.
func (s *Service) build(sessionID string, input Input, cart *domain.Cart) *domain.Order {
	items := make([]domain.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		var unitPrice float64
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}
		items[i] = domain.OrderItem{
			Product:   item.Name,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			Subtotal:  item.Subtotal(),
			HasPrice:  item.HasPrice(),
		}
	}

	subtotal := cart.TotalAmount()

	var fee float64
	var distanceKm *float64
	var coordinates *domain.OrderCoordinates
	if input.DeliveryType == domain.DeliveryTypeDelivery {
		if result, ok := s.distance.LastDistance(sessionID); ok {
			km := result.DistanceKm
			distanceKm = &km
			if f, serviceable := location.FeeForDistance(s.cfg.Fee, km); serviceable {
				fee = f
			}
			coordinates = &domain.OrderCoordinates{
				Latitude:  result.Origin.Latitude,
				Longitude: result.Origin.Longitude,
				MapsURL:   domain.MapsURL(result.Origin),
			}
		}
	}

	nameSource := input.NameSource
	if nameSource == "" {
		nameSource = domain.CustomerSourceForm
	}

	order := &domain.Order{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Customer: domain.Customer{
			Name:   strings.TrimSpace(input.CustomerName),
			Source: nameSource,
		},
		Payment: domain.Payment{Method: input.PaymentMethod},
		Delivery: domain.Delivery{
			Type:       input.DeliveryType,
			Fee:        fee,
			DistanceKm: distanceKm,
		},
		Cart: domain.OrderCart{
			Items:         items,
			TotalItems:    cart.ItemCount(),
			Subtotal:      subtotal,
			DeliveryFee:   fee,
			TotalValue:    domain.Round2(subtotal + fee),
			HasValidTotal: subtotal > 0,
		},
		Observations: strings.TrimSpace(input.Observations),
		Search: domain.SearchContext{
			FromURL: input.SearchFromURL,
			Applied: firstNonEmpty(input.AppliedSearch, input.SearchFromURL),
		},
	}

	if input.DeliveryType == domain.DeliveryTypeDelivery && input.Address != nil {
		order.Delivery.Address = &domain.DeliveryAddress{
			Kind:         input.Address.Kind,
			Company:      strings.TrimSpace(input.Address.Company),
			Street:       input.Address.Street,
			Number:       input.Address.Number,
			Neighborhood: input.Address.Neighborhood,
			City:         input.Address.City,
			Coordinates:  coordinates,
		}
	}

	return order
}

// WhatsAppMessage renders the order as the storefront's WhatsApp quote
// request, emoji headers included.
func (s *Service) WhatsAppMessage(order *domain.Order) string {
	var b strings.Builder

	b.WriteString("🛒 *NOVO ORÇAMENTO - CATÁLOGO KTECH*\n\n")
	fmt.Fprintf(&b, "\n📦 *PRODUTOS* (%d itens):\n", order.Cart.TotalItems)

	for _, item := range order.Cart.Items {
		fmt.Fprintf(&b, "• %dx %s", item.Quantity, item.Product)
		if item.HasPrice {
			b.WriteString(" - " + domain.FormatAmount(item.UnitPrice))
			if item.Quantity > 1 {
				b.WriteString(" = " + domain.FormatAmount(item.Subtotal))
			}
		}
		b.WriteString("\n")
	}

	if order.Cart.Subtotal > 0 {
		b.WriteString("\n💰 *SUBTOTAL:* " + domain.FormatAmount(order.Cart.Subtotal))
		if order.Cart.DeliveryFee > 0 {
			fmt.Fprintf(&b, "\n🚚 *TAXA DE ENTREGA (%.1fkm):* %s", distanceOrZero(order), domain.FormatAmount(order.Cart.DeliveryFee))
			b.WriteString("\n💸 *TOTAL FINAL:* " + domain.FormatAmount(order.Cart.TotalValue))
		}
		b.WriteString("\n")
	}

	if order.Observations != "" {
		fmt.Fprintf(&b, "\n📝 *Observações:* %s\n\n", order.Observations)
	}

	if order.Delivery.Type == domain.DeliveryTypePickup {
		fmt.Fprintf(&b, "\n👤 *Cliente:* %s\n", order.Customer.Name)
		b.WriteString("📍 *Entrega:* Retirada na loja\n")
	} else {
		fmt.Fprintf(&b, "👤 *Cliente:* %s\n", order.Customer.Name)
		b.WriteString("📍 *Entrega em endereço:*\n")

		addr := order.Delivery.Address
		if addr != nil {
			if addr.Company != "" {
				b.WriteString(addr.Company + " - ")
			}
			fmt.Fprintf(&b, "%s, %s - %s, %s\n", addr.Street, addr.Number, addr.Neighborhood, addr.City)

			if addr.Coordinates != nil {
				fmt.Fprintf(&b, "🗺️ *Localização:* %s\n", addr.Coordinates.MapsURL)
				fmt.Fprintf(&b, "📏 *Distância:* %.1f km\n", distanceOrZero(order))
			}
		}
	}

	fmt.Fprintf(&b, "💳 *Pagamento:* %s\n", order.Payment.Method)
	b.WriteString("\n\n⚠️ *Aguardando orçamento e confirmação dos valores finais.*")

	return b.String()
}

// WhatsAppURL builds the click-to-chat link carrying the rendered message.
func (s *Service) WhatsAppURL(order *domain.Order) string {
	return fmt.Sprintf(
		"https://api.whatsapp.com/send?phone=%s&text=%s",
		s.cfg.WhatsAppPhone,
		url.QueryEscape(s.WhatsAppMessage(order)),
	)
}

// sendToWebhook posts the order payload. Failures are logged; checkout
// continues regardless.
func (s *Service) sendToWebhook(ctx context.Context, order *domain.Order) bool {
	if s.cfg.WebhookURL == "" {
		return false
	}

	payload, err := json.Marshal(order)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal order payload failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return false
	}

	resp, err := s.http.Post(ctx, s.cfg.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.logger.WarnContext(ctx, "order webhook failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.WarnContext(ctx, "order webhook rejected",
			slog.String("order_id", order.ID),
			slog.Int("status", resp.StatusCode),
		)
		return false
	}

	return true
}

func distanceOrZero(order *domain.Order) float64 {
	if order.Delivery.DistanceKm == nil {
		return 0
	}
	return *order.Delivery.DistanceKm
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
