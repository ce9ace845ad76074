package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
)

// RouteClient queries an OSRM instance for driving distances.
type RouteClient struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewRouteClient creates a routing client against an OSRM base URL such as
// https://router.project-osrm.org.
func NewRouteClient(baseURL string, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *RouteClient {
	return &RouteClient{
		baseURL: baseURL,
		http:    client,
		logger:  logger,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// Distance returns the driving distance in kilometers between two points,
// rounded to two decimal places. OSRM takes coordinates longitude-first.
func (c *RouteClient) Distance(ctx context.Context, from, to domain.Coordinate) (float64, error) {
	url := fmt.Sprintf(
		"%s/route/v1/driving/%s,%s;%s,%s?overview=false&alternatives=false&steps=false",
		c.baseURL,
		formatCoord(from.Longitude), formatCoord(from.Latitude),
		formatCoord(to.Longitude), formatCoord(to.Latitude),
	)

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return 0, &httpclient.StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode osrm response: %w", err)
	}

	if len(body.Routes) == 0 {
		return 0, fmt.Errorf("osrm: no route found (code %q)", body.Code)
	}

	return domain.Round2(body.Routes[0].Distance / 1000), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
