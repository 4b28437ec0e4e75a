package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// bundleSchemaVersion tags serialised bundles so a future shape change cannot
// be silently deserialised into the wrong struct. Bump it whenever the
// envelope layout changes; stale versions read as a cache miss and the period
// recomputes live until the write path refreshes the row.
const bundleSchemaVersion = 1

type bundleEnvelope struct {
	SchemaVersion     int                    `json:"schema_version"`
	Window            Window                 `json:"window"`
	GeneratedAt       time.Time              `json:"generated_at"`
	TenantPerformance []TenantPerformanceRow `json:"tenant_performance"`
	RoomUtilization   []RoomUtilizationRow   `json:"room_utilization"`
	PaymentAnalytics  []PaymentAnalyticsRow  `json:"payment_analytics"`
	FinancialSummary  []FinancialSummaryRow  `json:"financial_summary"`
	Cards             CardSet                `json:"cards"`
}

// CacheStore is the keyed row persistence behind the report cache.
type CacheStore interface {
	// GetBundle returns the serialised envelope for the key, or ErrCacheMiss.
	GetBundle(ctx context.Context, key Key) ([]byte, error)
	// PutBundle upserts the envelope for the key, last write wins.
	PutBundle(ctx context.Context, key Key, payload []byte, generatedAt time.Time) error
}

// Cache persists completed periods' bundles. Get performs an exact lookup
// with no freshness check; that is correct only because the orchestrator
// consults it exclusively for completed, immutable-by-convention periods.
// There is no invalidation: retroactive data edits leave a cached period
// stale until an explicit recompute, which is an accepted limitation.
type Cache struct {
	store CacheStore
}

// NewCache wraps the keyed store.
func NewCache(store CacheStore) *Cache {
	return &Cache{store: store}
}

// Get loads the bundle for the key. Unknown schema versions surface as a
// cache miss so the caller recomputes live instead of trusting a payload
// written by an incompatible build.
func (c *Cache) Get(ctx context.Context, key Key) (*Bundle, error) {
	payload, err := c.store.GetBundle(ctx, key)
	if err != nil {
		return nil, err
	}
	var env bundleEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("reports: decode cached bundle: %w", err)
	}
	if env.SchemaVersion != bundleSchemaVersion {
		return nil, ErrCacheMiss
	}
	return &Bundle{
		Key:               key,
		Window:            env.Window,
		GeneratedAt:       env.GeneratedAt,
		TenantPerformance: env.TenantPerformance,
		RoomUtilization:   env.RoomUtilization,
		PaymentAnalytics:  env.PaymentAnalytics,
		FinancialSummary:  env.FinancialSummary,
		Cards:             env.Cards,
	}, nil
}

// Put overwrites the stored bundle for the bundle's key.
func (c *Cache) Put(ctx context.Context, b *Bundle) error {
	env := bundleEnvelope{
		SchemaVersion:     bundleSchemaVersion,
		Window:            b.Window,
		GeneratedAt:       b.GeneratedAt,
		TenantPerformance: b.TenantPerformance,
		RoomUtilization:   b.RoomUtilization,
		PaymentAnalytics:  b.PaymentAnalytics,
		FinancialSummary:  b.FinancialSummary,
		Cards:             b.Cards,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("reports: encode bundle: %w", err)
	}
	if err := c.store.PutBundle(ctx, b.Key, payload, b.GeneratedAt); err != nil {
		return fmt.Errorf("reports: store bundle: %w", err)
	}
	return nil
}
