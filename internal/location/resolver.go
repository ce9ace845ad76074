package location

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ktecheletronicos/loja/internal/domain"
	"github.com/ktecheletronicos/loja/pkg/httpclient"
)

// Observer is notified after every distance calculation.
type Observer func(ctx context.Context, result domain.DistanceResult)

// ResolverConfig holds resolver tuning and the store reference point.
type ResolverConfig struct {
	// Reference is the point distances are measured to.
	Reference domain.Coordinate

	// TelemetryURL receives a fire-and-forget POST with each selected
	// coordinate. Empty disables telemetry.
	TelemetryURL string

	// AddressDebounce delays the reverse-geocode lookup after a selection
	// so that rapid pin drags produce a single upstream request.
	AddressDebounce time.Duration

	// TelemetryTimeout bounds the telemetry POST.
	TelemetryTimeout time.Duration

	// SessionTTL is how long an idle session keeps its selection before
	// it is evicted. It should match the cart TTL so a cart never
	// outlives the pin it was priced against.
	SessionTTL time.Duration
}

// selection is the per-session state: the pinned coordinate plus the
// distance and address derived from it.
type selection struct {
	coord        domain.Coordinate
	lastDistance *domain.DistanceResult
	lastAddress  *domain.Address
	generation   uint64
	pending      *time.Timer
	lastSeen     time.Time
}

// Resolver tracks each session's selected coordinate and derives the
// delivery distance and address from it. State is keyed by session ID so
// one visitor's pin never bleeds into another visitor's order.
//
// Distance calculation is synchronous: callers get a result immediately,
// from the routing upstream when it answers and from the haversine formula
// when it does not. The reverse-geocode lookup is debounced and versioned
// with a per-session generation counter, so when selections arrive faster
// than the debounce window only the latest one reaches the geocoder, and a
// slow lookup can never overwrite the address of a newer selection.
type Resolver struct {
	cfg      ResolverConfig
	routes   *RouteClient
	geocoder *Geocoder
	http     *httpclient.Client
	logger   *slog.Logger

	mu        sync.Mutex
	reference domain.Coordinate
	sessions  map[string]*selection
	observers []Observer
	lastSweep time.Time
}

// NewResolver creates a resolver anchored at cfg.Reference.
func NewResolver(cfg ResolverConfig, routes *RouteClient, geocoder *Geocoder, client *httpclient.Client, logger *slog.Logger) *Resolver {
	if cfg.AddressDebounce <= 0 {
		cfg.AddressDebounce = 500 * time.Millisecond
	}
	if cfg.TelemetryTimeout <= 0 {
		cfg.TelemetryTimeout = 5 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Hour
	}
	return &Resolver{
		cfg:       cfg,
		routes:    routes,
		geocoder:  geocoder,
		http:      client,
		logger:    logger,
		reference: cfg.Reference,
		sessions:  make(map[string]*selection),
		lastSweep: time.Now(),
	}
}

// OnDistance registers an observer called after each distance calculation.
// Observers run on the calling goroutine and must not block.
func (r *Resolver) OnDistance(fn Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// session returns the state for sessionID, creating it when absent.
// Caller must hold r.mu.
func (r *Resolver) session(sessionID string) *selection {
	sel, ok := r.sessions[sessionID]
	if !ok {
		sel = &selection{}
		r.sessions[sessionID] = sel
	}
	sel.lastSeen = time.Now()
	return sel
}

// sweepLocked evicts sessions idle longer than the TTL. Runs at most once
// per TTL window. Caller must hold r.mu.
func (r *Resolver) sweepLocked() {
	now := time.Now()
	if now.Sub(r.lastSweep) < r.cfg.SessionTTL {
		return
	}
	r.lastSweep = now
	for id, sel := range r.sessions {
		if now.Sub(sel.lastSeen) >= r.cfg.SessionTTL {
			if sel.pending != nil {
				sel.pending.Stop()
			}
			delete(r.sessions, id)
		}
	}
}

// UpdateSelected records a new selected coordinate for the session and
// returns the distance to the reference point. It also fires the telemetry
// webhook in the background and schedules a debounced address lookup.
func (r *Resolver) UpdateSelected(ctx context.Context, sessionID string, loc domain.Coordinate) (domain.DistanceResult, error) {
	r.mu.Lock()
	r.sweepLocked()
	sel := r.session(sessionID)
	sel.coord = loc
	sel.generation++
	gen := sel.generation
	reference := r.reference

	if sel.pending != nil {
		sel.pending.Stop()
	}
	sel.pending = time.AfterFunc(r.cfg.AddressDebounce, func() {
		r.lookupAddress(sessionID, loc, gen)
	})
	r.mu.Unlock()

	go r.sendTelemetry(context.WithoutCancel(ctx), loc)

	result := r.resolveDistance(ctx, loc, reference)

	r.mu.Lock()
	sel.lastDistance = &result
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(ctx, result)
	}

	return result, nil
}

// SetReference moves the reference point. When the session already has a
// selected coordinate its distance is recalculated against the new
// reference and returned; otherwise the result is nil.
func (r *Resolver) SetReference(ctx context.Context, sessionID string, ref domain.Coordinate) (*domain.DistanceResult, error) {
	r.mu.Lock()
	r.reference = ref
	sel, hasSelection := r.sessions[sessionID]
	var selected domain.Coordinate
	if hasSelection {
		sel.lastSeen = time.Now()
		selected = sel.coord
	}
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "reference location updated",
		slog.Float64("lat", ref.Latitude),
		slog.Float64("lng", ref.Longitude),
	)

	if !hasSelection {
		return nil, nil
	}

	result := r.resolveDistance(ctx, selected, ref)

	r.mu.Lock()
	sel.lastDistance = &result
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(ctx, result)
	}

	return &result, nil
}

// Address returns the address of the session's current selection. It
// serves the debounced result when one landed already and falls back to a
// synchronous lookup otherwise.
func (r *Resolver) Address(ctx context.Context, sessionID string) (domain.Address, error) {
	r.mu.Lock()
	sel, hasSelection := r.sessions[sessionID]
	var (
		cached   *domain.Address
		selected domain.Coordinate
		gen      uint64
	)
	if hasSelection {
		sel.lastSeen = time.Now()
		cached = sel.lastAddress
		selected = sel.coord
		gen = sel.generation
	}
	r.mu.Unlock()

	if cached != nil {
		return *cached, nil
	}
	if !hasSelection {
		return domain.Address{}, domain.ErrNoSelection
	}

	addr, err := r.geocoder.ReverseGeocode(ctx, selected)
	if err != nil {
		return domain.Address{}, err
	}

	r.mu.Lock()
	if cur, ok := r.sessions[sessionID]; ok && gen == cur.generation {
		cur.lastAddress = &addr
	}
	r.mu.Unlock()

	return addr, nil
}

// LastDistance returns the session's most recent distance result, if any.
func (r *Resolver) LastDistance(sessionID string) (domain.DistanceResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, ok := r.sessions[sessionID]
	if !ok || sel.lastDistance == nil {
		return domain.DistanceResult{}, false
	}
	sel.lastSeen = time.Now()
	return *sel.lastDistance, true
}

// Reference returns the current reference point.
func (r *Resolver) Reference() domain.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reference
}

// Close stops all pending debounced lookups.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sel := range r.sessions {
		if sel.pending != nil {
			sel.pending.Stop()
		}
	}
}

// resolveDistance asks the routing upstream and falls back to the
// great-circle distance when it fails.
func (r *Resolver) resolveDistance(ctx context.Context, from, to domain.Coordinate) domain.DistanceResult {
	result := domain.DistanceResult{
		Unit:        "km",
		Origin:      from,
		Destination: to,
	}

	km, err := r.routes.Distance(ctx, from, to)
	if err == nil {
		result.DistanceKm = km
		result.Source = domain.DistanceSourceRoute
		distanceCalculationsTotal.WithLabelValues(string(result.Source)).Inc()
		return result
	}

	r.logger.WarnContext(ctx, "route distance failed, using straight line",
		slog.String("error", err.Error()),
	)

	result.DistanceKm = Haversine(from, to)
	result.Source = domain.DistanceSourceStraightLine
	distanceCalculationsTotal.WithLabelValues(string(result.Source)).Inc()
	return result
}

// lookupAddress runs on the debounce timer. Results for superseded
// generations, or for sessions evicted meanwhile, are discarded.
func (r *Resolver) lookupAddress(sessionID string, loc domain.Coordinate, gen uint64) {
	ctx := context.Background()

	addr, err := r.geocoder.ReverseGeocode(ctx, loc)
	if err != nil {
		r.logger.Warn("reverse geocode failed",
			slog.Float64("lat", loc.Latitude),
			slog.Float64("lng", loc.Longitude),
			slog.String("error", err.Error()),
		)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	sel, ok := r.sessions[sessionID]
	if !ok || gen != sel.generation {
		staleLookupsDiscardedTotal.Inc()
		return
	}
	sel.lastAddress = &addr
}

// sendTelemetry posts the selected coordinate to the telemetry webhook.
// Failures are logged and never surfaced to the caller.
func (r *Resolver) sendTelemetry(ctx context.Context, loc domain.Coordinate) {
	if r.cfg.TelemetryURL == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.TelemetryTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]float64{
		"latitude":  loc.Latitude,
		"longitude": loc.Longitude,
	})
	if err != nil {
		return
	}

	resp, err := r.http.Post(ctx, r.cfg.TelemetryURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		r.logger.WarnContext(ctx, "location telemetry failed",
			slog.String("error", err.Error()),
		)
		return
	}
	resp.Body.Close()
}
