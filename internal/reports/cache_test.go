package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memCacheStore struct {
	rows map[Key][]byte
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{rows: make(map[Key][]byte)}
}

func (s *memCacheStore) GetBundle(_ context.Context, key Key) ([]byte, error) {
	payload, ok := s.rows[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return payload, nil
}

func (s *memCacheStore) PutBundle(_ context.Context, key Key, payload []byte, _ time.Time) error {
	s.rows[key] = payload
	return nil
}

func sampleBundle(key Key) *Bundle {
	tenantID := uuid.New()
	return &Bundle{
		Key:         key,
		Window:      Window{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)},
		GeneratedAt: time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC),
		TenantPerformance: []TenantPerformanceRow{
			{TenantID: tenantID, TenantName: "Alpha", MemberCount: 2, Revenue: 5000, OccupancyRate: 100},
		},
		RoomUtilization: []RoomUtilizationRow{
			{TenantID: tenantID, TenantName: "Alpha", RoomID: uuid.New(), RoomName: "101", Capacity: 2, Occupants: 2, UtilizationRate: 100, FullyOccupied: true, Revenue: 5000, RevenueEfficiency: 100},
		},
		PaymentAnalytics: []PaymentAnalyticsRow{
			{TenantID: tenantID, TenantName: "Alpha", ReceivedPayments: 2, ApprovedPayments: 1, ExpectedAmount: 10000, ApprovedAmount: 5000, CollectionEfficiency: 50},
		},
		FinancialSummary: []FinancialSummaryRow{
			{TenantID: tenantID, TenantName: "Alpha", ActualRevenue: 5000, ExpectedRevenue: 10000, RevenueVariance: -50, CashFlowStatus: CashFlowNegative},
		},
		Cards: CardSet{
			NewMembers:    Card{Value: 1, TrendPercent: 100},
			RentCollected: Card{Value: 5000, TrendPercent: 25},
			Departures:    Card{Value: 0, TrendPercent: -100},
			TotalExpenses: Card{Value: 1800, TrendPercent: 0},
			NetProfit:     Card{Value: 3200, TrendPercent: 28},
		},
	}
}

func TestCachePutGetRoundtrip(t *testing.T) {
	store := newMemCacheStore()
	cache := NewCache(store)
	key := Key{Segment: SegmentMens, Kind: KindMonthly, Period: 3, Year: 2024}
	bundle := sampleBundle(key)

	require.NoError(t, cache.Put(context.Background(), bundle))

	got, err := cache.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, bundle, got)
}

func TestCachePutOverwrites(t *testing.T) {
	store := newMemCacheStore()
	cache := NewCache(store)
	key := Key{Segment: SegmentWomens, Kind: KindWeekly, Period: 12, Year: 2024}

	first := sampleBundle(key)
	require.NoError(t, cache.Put(context.Background(), first))

	second := sampleBundle(key)
	second.Cards.RentCollected.Value = 9000
	require.NoError(t, cache.Put(context.Background(), second))

	got, err := cache.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, 9000.0, got.Cards.RentCollected.Value)
}

func TestCacheGetMiss(t *testing.T) {
	cache := NewCache(newMemCacheStore())
	_, err := cache.Get(context.Background(), Key{Segment: SegmentMens, Kind: KindMonthly, Period: 1, Year: 2023})
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheGetRejectsUnknownSchemaVersion(t *testing.T) {
	store := newMemCacheStore()
	key := Key{Segment: SegmentMens, Kind: KindMonthly, Period: 2, Year: 2023}
	payload, err := json.Marshal(map[string]any{"schema_version": 99})
	require.NoError(t, err)
	store.rows[key] = payload

	cache := NewCache(store)
	_, err = cache.Get(context.Background(), key)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheGetPropagatesStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	cache := NewCache(failingCacheStore{err: boom})
	_, err := cache.Get(context.Background(), Key{Segment: SegmentMens, Kind: KindWeekly, Period: 1, Year: 2024})
	require.ErrorIs(t, err, boom)
}

type failingCacheStore struct {
	err error
}

func (s failingCacheStore) GetBundle(context.Context, Key) ([]byte, error) {
	return nil, s.err
}

func (s failingCacheStore) PutBundle(context.Context, Key, []byte, time.Time) error {
	return s.err
}
