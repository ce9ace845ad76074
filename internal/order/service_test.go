package order

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/internal/location"
	apperrors "github.com/ktecheletronicos/loja/pkg/errors"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
)

type fakeCarts struct {
	cart *domain.Cart
}

func (f *fakeCarts) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if f.cart == nil {
		return &domain.Cart{SessionID: sessionID, Items: []domain.CartItem{}}, nil
	}
	return f.cart, nil
}

type fakeDistance struct {
	result     *domain.DistanceResult
	gotSession string
}

func (f *fakeDistance) LastDistance(sessionID string) (domain.DistanceResult, bool) {
	f.gotSession = sessionID
	if f.result == nil {
		return domain.DistanceResult{}, false
	}
	return *f.result, true
}

func price(v float64) *float64 { return &v }

func sampleCart() *domain.Cart {
	return &domain.Cart{
		ID:        "cart-1",
		SessionID: "sess-1",
		Items: []domain.CartItem{
			{Slug: "memoria-ram", Name: "Memoria RAM DDR4 8GB", UnitPrice: price(189.9), Quantity: 2},
			{Slug: "sob-medida", Name: "Servico Sob Medida", Quantity: 1},
		},
	}
}

func sampleDistance() *domain.DistanceResult {
	return &domain.DistanceResult{
		DistanceKm:  7.89,
		Unit:        "km",
		Origin:      domain.Coordinate{Latitude: -5.09, Longitude: -42.811},
		Destination: domain.Coordinate{Latitude: -5.110777, Longitude: -42.742837},
		Source:      domain.DistanceSourceRoute,
	}
}

func newTestService(carts *fakeCarts, distance *fakeDistance, webhookURL string) *Service {
	cfg := Config{
		WebhookURL:    webhookURL,
		WhatsAppPhone: "558688519865",
		Fee:           location.FeeConfig{BaseFee: 8, PerKm: 2, IncludedRadiusKm: 5},
	}
	client := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 10,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(cfg, carts, distance, client, nil, logger)
}

func deliveryInput() Input {
	return Input{
		CustomerName:  "Francisco das Chagas",
		PaymentMethod: "PIX",
		DeliveryType:  domain.DeliveryTypeDelivery,
		Address: &AddressInput{
			Kind:         AddressKindHouse,
			Street:       "Rua Coelho de Resende",
			Number:       "1200",
			Neighborhood: "Centro",
			City:         "Teresina - PI",
		},
	}
}

func pickupInput() Input {
	return Input{
		CustomerName:  "Francisco das Chagas",
		PaymentMethod: "Cartão de Crédito",
		DeliveryType:  domain.DeliveryTypePickup,
	}
}

// --- Validation ---

func TestSubmit_ShortNameRejected(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	input := pickupInput()
	input.CustomerName = "Jo"

	_, err := svc.Submit(context.Background(), "sess-1", input)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmit_NameWithDigitsRejected(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	input := pickupInput()
	input.CustomerName = "Francisco das Chagas 2"

	_, err := svc.Submit(context.Background(), "sess-1", input)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmit_AccentedNameAccepted(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	input := pickupInput()
	input.CustomerName = "João Conceição de Araújo"

	result, err := svc.Submit(context.Background(), "sess-1", input)

	require.NoError(t, err)
	assert.Equal(t, "João Conceição de Araújo", result.Order.Customer.Name)
}

func TestSubmit_DeliveryRequiresAddress(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	input := deliveryInput()
	input.Address = nil

	_, err := svc.Submit(context.Background(), "sess-1", input)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmit_CompanyAddressRequiresCompanyName(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{result: sampleDistance()}, "")

	input := deliveryInput()
	input.Address.Kind = AddressKindCompany

	_, err := svc.Submit(context.Background(), "sess-1", input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	input.Address.Company = "Condominio Jardins"
	_, err = svc.Submit(context.Background(), "sess-1", input)
	assert.NoError(t, err)
}

func TestSubmit_EmptyCartRejected(t *testing.T) {
	svc := newTestService(&fakeCarts{}, &fakeDistance{}, "")

	_, err := svc.Submit(context.Background(), "sess-1", pickupInput())

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// --- Payload assembly ---

func TestSubmit_DeliveryOrderPayload(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{result: sampleDistance()}, "")

	result, err := svc.Submit(context.Background(), "sess-1", deliveryInput())

	require.NoError(t, err)
	order := result.Order

	assert.NotEmpty(t, order.ID)
	assert.False(t, order.Timestamp.IsZero())
	assert.Equal(t, domain.CustomerSourceForm, order.Customer.Source)
	assert.Equal(t, "PIX", order.Payment.Method)

	assert.Equal(t, domain.DeliveryTypeDelivery, order.Delivery.Type)
	require.NotNil(t, order.Delivery.DistanceKm)
	assert.Equal(t, 7.89, *order.Delivery.DistanceKm)
	// 8.00 base + 2.89 km beyond the included 5 km at 2/km.
	assert.InDelta(t, 13.78, order.Delivery.Fee, 0.001)

	require.NotNil(t, order.Delivery.Address)
	require.NotNil(t, order.Delivery.Address.Coordinates)
	assert.Equal(t, -5.09, order.Delivery.Address.Coordinates.Latitude)
	assert.Equal(t, "https://maps.google.com/maps?q=-5.09,-42.811", order.Delivery.Address.Coordinates.MapsURL)

	require.Len(t, order.Cart.Items, 2)
	assert.Equal(t, "Memoria RAM DDR4 8GB", order.Cart.Items[0].Product)
	assert.InDelta(t, 379.8, order.Cart.Items[0].Subtotal, 0.001)
	assert.True(t, order.Cart.Items[0].HasPrice)
	assert.False(t, order.Cart.Items[1].HasPrice)
	assert.Zero(t, order.Cart.Items[1].UnitPrice)

	assert.Equal(t, 3, order.Cart.TotalItems)
	assert.InDelta(t, 379.8, order.Cart.Subtotal, 0.001)
	assert.InDelta(t, 393.58, order.Cart.TotalValue, 0.001)
	assert.True(t, order.Cart.HasValidTotal)
}

func TestSubmit_DistanceLookupKeyedBySubmittingSession(t *testing.T) {
	distance := &fakeDistance{result: sampleDistance()}
	svc := newTestService(&fakeCarts{cart: sampleCart()}, distance, "")

	_, err := svc.Submit(context.Background(), "sess-1", deliveryInput())

	require.NoError(t, err)
	assert.Equal(t, "sess-1", distance.gotSession)
}

func TestSubmit_PickupOrderHasNoFeeOrDistance(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{result: sampleDistance()}, "")

	result, err := svc.Submit(context.Background(), "sess-1", pickupInput())

	require.NoError(t, err)
	order := result.Order
	assert.Zero(t, order.Delivery.Fee)
	assert.Nil(t, order.Delivery.DistanceKm)
	assert.Nil(t, order.Delivery.Address)
	assert.Equal(t, order.Cart.Subtotal, order.Cart.TotalValue)
}

func TestSubmit_NameFromURLKeepsSource(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	input := pickupInput()
	input.NameSource = domain.CustomerSourceURL
	input.SearchFromURL = "memoria ram"

	result, err := svc.Submit(context.Background(), "sess-1", input)

	require.NoError(t, err)
	assert.Equal(t, domain.CustomerSourceURL, result.Order.Customer.Source)
	assert.Equal(t, "memoria ram", result.Order.Search.FromURL)
	assert.Equal(t, "memoria ram", result.Order.Search.Applied)
}

// --- Webhook ---

func TestSubmit_WebhookDelivered(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{result: sampleDistance()}, srv.URL)

	result, err := svc.Submit(context.Background(), "sess-1", deliveryInput())

	require.NoError(t, err)
	assert.True(t, result.WebhookDelivered)

	cart, ok := received["cart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), cart["totalItems"])
	assert.Equal(t, true, cart["hasValidTotal"])
	delivery, ok := received["delivery"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ENTREGA", delivery["type"])
}

func TestSubmit_WebhookFailureDoesNotFailCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, srv.URL)

	result, err := svc.Submit(context.Background(), "sess-1", pickupInput())

	require.NoError(t, err)
	assert.False(t, result.WebhookDelivered)
	assert.NotEmpty(t, result.WhatsAppURL)
}

// --- WhatsApp message ---

func TestWhatsAppMessage_DeliveryOrder(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{result: sampleDistance()}, "")

	input := deliveryInput()
	input.Observations = "Entregar no período da tarde"
	result, err := svc.Submit(context.Background(), "sess-1", input)
	require.NoError(t, err)

	msg := svc.WhatsAppMessage(result.Order)

	assert.True(t, strings.HasPrefix(msg, "🛒 *NOVO ORÇAMENTO - CATÁLOGO KTECH*"))
	assert.Contains(t, msg, "📦 *PRODUTOS* (3 itens):")
	assert.Contains(t, msg, "• 2x Memoria RAM DDR4 8GB - R$ 189,90 = R$ 379,80")
	// Unpriced items show no price at all.
	assert.Contains(t, msg, "• 1x Servico Sob Medida\n")
	assert.NotContains(t, msg, "Servico Sob Medida - R$")
	assert.Contains(t, msg, "💰 *SUBTOTAL:* R$ 379,80")
	assert.Contains(t, msg, "🚚 *TAXA DE ENTREGA (7.9km):* R$ 13,78")
	assert.Contains(t, msg, "💸 *TOTAL FINAL:* R$ 393,58")
	assert.Contains(t, msg, "📝 *Observações:* Entregar no período da tarde")
	assert.Contains(t, msg, "👤 *Cliente:* Francisco das Chagas")
	assert.Contains(t, msg, "📍 *Entrega em endereço:*")
	assert.Contains(t, msg, "Rua Coelho de Resende, 1200 - Centro, Teresina - PI")
	assert.Contains(t, msg, "🗺️ *Localização:* https://maps.google.com/maps?q=-5.09,-42.811")
	assert.Contains(t, msg, "📏 *Distância:* 7.9 km")
	assert.Contains(t, msg, "💳 *Pagamento:* PIX")
	assert.True(t, strings.HasSuffix(msg, "⚠️ *Aguardando orçamento e confirmação dos valores finais.*"))
}

func TestWhatsAppMessage_PickupOrder(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	result, err := svc.Submit(context.Background(), "sess-1", pickupInput())
	require.NoError(t, err)

	msg := svc.WhatsAppMessage(result.Order)

	assert.Contains(t, msg, "📍 *Entrega:* Retirada na loja")
	assert.NotContains(t, msg, "TAXA DE ENTREGA")
	assert.NotContains(t, msg, "🗺️")
}

func TestWhatsAppURL_EncodesMessage(t *testing.T) {
	svc := newTestService(&fakeCarts{cart: sampleCart()}, &fakeDistance{}, "")

	result, err := svc.Submit(context.Background(), "sess-1", pickupInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.WhatsAppURL, "https://api.whatsapp.com/send?phone=558688519865&text="))
	assert.NotContains(t, result.WhatsAppURL, " ")
	assert.NotContains(t, result.WhatsAppURL, "\n")
}
