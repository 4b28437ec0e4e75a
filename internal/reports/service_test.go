package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeRepo serves a fixed entity set, windowing payments the way the SQL
// loader does, and keeps cache rows in memory.
type fakeRepo struct {
	mu        sync.Mutex
	data      []TenantData
	expenses  map[time.Month]ExpenseTotals
	cacheRows map[Key][]byte

	snapshotCalls int
	markCalls     int
	putCalls      int
	getCalls      int
}

func newFakeRepo(data []TenantData) *fakeRepo {
	return &fakeRepo{
		data:      data,
		expenses:  make(map[time.Month]ExpenseTotals),
		cacheRows: make(map[Key][]byte),
	}
}

func (f *fakeRepo) SegmentSnapshot(_ context.Context, segment Segment, w Window) ([]TenantData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotCalls++
	out := make([]TenantData, 0, len(f.data))
	for _, td := range f.data {
		if td.Tenant.Segment != segment {
			continue
		}
		windowed := TenantData{Tenant: td.Tenant, Rooms: td.Rooms, Members: td.Members}
		for _, p := range td.Payments {
			if PaymentInWindow(p, w) {
				windowed.Payments = append(windowed.Payments, p)
			}
		}
		out = append(out, windowed)
	}
	return out, nil
}

func (f *fakeRepo) ExpenseTotals(_ context.Context, _ Segment, w Window) (ExpenseTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expenses[w.Start.Month()], nil
}

func (f *fakeRepo) MarkOverdue(_ context.Context, segment Segment, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	var changed int64
	for i := range f.data {
		if f.data[i].Tenant.Segment != segment {
			continue
		}
		for j, p := range f.data[i].Payments {
			if p.ApprovalStatus == ApprovalPending && p.PaymentStatus == PaymentPending && p.OverdueDate.Before(now) {
				f.data[i].Payments[j].PaymentStatus = PaymentOverdue
				changed++
			}
		}
	}
	return changed, nil
}

func (f *fakeRepo) GetBundle(_ context.Context, key Key) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	payload, ok := f.cacheRows[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return payload, nil
}

func (f *fakeRepo) PutBundle(_ context.Context, key Key, payload []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	f.cacheRows[key] = payload
	return nil
}

func newTestService(t *testing.T, repo Repository, now time.Time) *Service {
	t.Helper()
	svc := NewService(repo, nil)
	clock := func() time.Time { return now }
	svc.now = clock
	svc.resolver.now = clock
	svc.sync.now = clock
	return svc
}

func serviceFixture(now time.Time) []TenantData {
	td := alphaTenant(now)
	// One extra approved payment lands in February for the trend baseline.
	td.Payments = append(td.Payments, Payment{
		ID: uuid.New(), MemberID: td.Members[0].ID, TenantID: td.Tenant.ID,
		Month: 2, Year: 2024, Amount: 4000,
		DueDate:        time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC),
		OverdueDate:    time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC),
		PaymentStatus:  PaymentPaid,
		ApprovalStatus: ApprovalApproved,
		CreatedAt:      time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	return []TenantData{td}
}

func TestGetOrComputeCurrentPeriodSkipsCache(t *testing.T) {
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)
	repo := newFakeRepo(serviceFixture(now))
	svc := newTestService(t, repo, now)

	// Even a present cache row is ignored for the current period.
	key := Key{Segment: SegmentMens, Kind: KindMonthly, Period: 3, Year: 2024}
	repo.cacheRows[key] = []byte(`{"schema_version":1}`)

	b, err := svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 3, 2024)
	require.NoError(t, err)
	require.Equal(t, 0, repo.getCalls)
	require.Equal(t, 1, repo.markCalls)
	require.Equal(t, 0, repo.putCalls, "read path must never write the cache")
	require.Len(t, b.TenantPerformance, 1)
	require.Equal(t, 5000.0, b.TenantPerformance[0].Revenue)
	require.Equal(t, 1, b.TenantPerformance[0].OverduePayments)
}

func TestGetOrComputeCompletedPeriodCacheHit(t *testing.T) {
	now := time.Date(2024, time.April, 10, 10, 0, 0, 0, time.UTC)
	repo := newFakeRepo(serviceFixture(now))
	svc := newTestService(t, repo, now)

	// Write path fills the cache for completed March.
	stored, err := svc.RecomputeAndCache(context.Background(), SegmentMens, KindMonthly, 3, 2024)
	require.NoError(t, err)
	require.Equal(t, 1, repo.putCalls)
	snapshotsAfterWrite := repo.snapshotCalls

	got, err := svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 3, 2024)
	require.NoError(t, err)
	require.Equal(t, stored, got, "cache hit must return the stored bundle verbatim")
	require.Equal(t, snapshotsAfterWrite, repo.snapshotCalls, "cache hit must not recompute")
}

func TestGetOrComputeCompletedPeriodMissComputesLiveEveryCall(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(serviceFixture(now))
	svc := newTestService(t, repo, now)

	first, err := svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 3, 2023)
	require.NoError(t, err)
	require.NotNil(t, first)
	callsAfterFirst := repo.snapshotCalls
	require.Positive(t, callsAfterFirst)

	_, err = svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 3, 2023)
	require.NoError(t, err)
	require.Equal(t, 2*callsAfterFirst, repo.snapshotCalls, "second call must recompute")
	require.Equal(t, 0, repo.putCalls)
}

func TestGetOrComputeFuturePeriodIsNotAnError(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(serviceFixture(now))
	svc := newTestService(t, repo, now)

	b, err := svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 11, 2025)
	require.NoError(t, err)
	require.Len(t, b.TenantPerformance, 1)
	require.Equal(t, 0.0, b.TenantPerformance[0].Revenue)
}

func TestTrendsComparePreviousWindow(t *testing.T) {
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)
	repo := newFakeRepo(serviceFixture(now))
	repo.expenses[time.March] = ExpenseTotals{CashOut: 1000}
	svc := newTestService(t, repo, now)

	b, err := svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 3, 2024)
	require.NoError(t, err)

	// March collected 5000 against February's 4000.
	require.Equal(t, 5000.0, b.Cards.RentCollected.Value)
	require.Equal(t, 25.0, b.Cards.RentCollected.TrendPercent)
	require.Equal(t, 1000.0, b.Cards.TotalExpenses.Value)
	require.Equal(t, 100.0, b.Cards.TotalExpenses.TrendPercent)
	require.Equal(t, 4000.0, b.Cards.NetProfit.Value)
}

func TestTrendFromZeroPreviousIsHundred(t *testing.T) {
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)
	data := serviceFixture(now)
	// Drop the February payment so the previous window collected nothing.
	data[0].Payments = data[0].Payments[:2]
	repo := newFakeRepo(data)
	svc := newTestService(t, repo, now)

	b, err := svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 3, 2024)
	require.NoError(t, err)
	require.Equal(t, 5000.0, b.Cards.RentCollected.Value)
	require.Equal(t, 100.0, b.Cards.RentCollected.TrendPercent)
}

func TestGetOrComputeValidatesInput(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, newFakeRepo(nil), now)

	_, err := svc.GetOrCompute(context.Background(), Segment("coed"), KindMonthly, 3, 2024)
	require.ErrorIs(t, err, ErrUnknownSegment)

	_, err = svc.GetOrCompute(context.Background(), SegmentMens, Kind("daily"), 3, 2024)
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = svc.GetOrCompute(context.Background(), SegmentMens, KindMonthly, 13, 2024)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestEmptySegmentYieldsZeroedBundle(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, newFakeRepo(nil), now)

	b, err := svc.GetOrCompute(context.Background(), SegmentWomens, KindMonthly, 3, 2024)
	require.NoError(t, err)
	require.Empty(t, b.TenantPerformance)
	require.Empty(t, b.RoomUtilization)
	require.Empty(t, b.PaymentAnalytics)
	require.Empty(t, b.FinancialSummary)
	require.Equal(t, CardSet{}, b.Cards)
}
