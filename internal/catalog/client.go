package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
	"github.com/ktecheletronicos/loja/pkg/slug"
)

// Client fetches the product feed from the catalog webhook.
type Client struct {
	url    string
	http   *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// NewClient creates a catalog feed client.
func NewClient(url string, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{url: url, http: client, logger: logger}
}

// feedRecord mirrors one entry of the upstream feed. Field names are the
// feed's own, in Portuguese and upper case.
type feedRecord struct {
	Name      string    `json:"PRODUTO"`
	Photo     string    `json:"FOTO"`
	SalePrice feedPrice `json:"VALOR_VENDA"`
}

// feedPrice tolerates the feed sending prices as numbers, numeric strings,
// empty strings or null. Anything non-numeric becomes a nil price, which
// the storefront renders as "Consulte".
type feedPrice struct {
	value *float64
}

func (p *feedPrice) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		p.value = &v
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	p.value = &v
	return nil
}

// Fetch downloads and sanitizes the product feed. Records without a name
// or photo are dropped, and duplicate names keep their first occurrence.
func (c *Client) Fetch(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.http.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, &httpclient.StatusError{StatusCode: resp.StatusCode, URL: c.url}
	}

	var records []feedRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog feed: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0

	for _, rec := range records {
		if rec.Name == "" || rec.Photo == "" {
			dropped++
			continue
		}
		s := slug.Generate(rec.Name)
		if _, dup := seen[s]; dup {
			dropped++
			continue
		}
		seen[s] = struct{}{}

		products = append(products, domain.Product{
			Slug:      s,
			Name:      rec.Name,
			PhotoURL:  rec.Photo,
			SalePrice: rec.SalePrice.value,
		})
	}

	if dropped > 0 {
		c.logger.DebugContext(ctx, "dropped incomplete catalog records",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(products)),
		)
	}

	return products, nil
}
