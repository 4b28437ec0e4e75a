package payments

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows map[uuid.UUID]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uuid.UUID]*Payment)}
}

func (f *fakeRepo) Create(_ context.Context, p *Payment) error {
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, approvalStatus string) ([]Payment, error) {
	out := []Payment{}
	for _, p := range f.rows {
		if p.TenantID != tenantID {
			continue
		}
		if approvalStatus != "" && p.ApprovalStatus != approvalStatus {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, p *Payment) error {
	if _, ok := f.rows[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateSetsOverdueDateFromGracePeriod(t *testing.T) {
	svc := newTestService(newFakeRepo())

	due := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		MemberID: uuid.New(),
		Amount:   5000,
		DueDate:  due,
	})
	require.NoError(t, err)
	require.Equal(t, PaymentPending, p.PaymentStatus)
	require.Equal(t, ApprovalPending, p.ApprovalStatus)
	require.Equal(t, due.AddDate(0, 0, GraceDays), p.OverdueDate)
	require.Equal(t, int(time.April), p.Month)
	require.Equal(t, 2025, p.Year)
	require.Nil(t, p.PaidDate)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := newTestService(newFakeRepo())

	for _, in := range []CreateInput{
		{MemberID: uuid.New(), Amount: 5000, DueDate: time.Now()},
		{TenantID: uuid.New(), Amount: 5000, DueDate: time.Now()},
		{TenantID: uuid.New(), MemberID: uuid.New(), Amount: 0, DueDate: time.Now()},
		{TenantID: uuid.New(), MemberID: uuid.New(), Amount: 5000},
	} {
		_, err := svc.Create(context.Background(), in)
		require.Error(t, err)
	}
}

func TestApproveMarksPaidAndIsTerminal(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		MemberID: uuid.New(),
		Amount:   5000,
		DueDate:  time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, ApprovalApproved, approved.ApprovalStatus)
	require.Equal(t, PaymentPaid, approved.PaymentStatus)
	require.NotNil(t, approved.PaidDate)

	_, err = svc.Approve(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.Reject(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRejectKeepsPaymentStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		MemberID: uuid.New(),
		Amount:   5000,
		DueDate:  time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Simulate the nightly sync having flipped the charge to overdue
	// before the owner rejects the submitted proof.
	repo.rows[p.ID].PaymentStatus = PaymentOverdue

	rejected, err := svc.Reject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, ApprovalRejected, rejected.ApprovalStatus)
	require.Equal(t, PaymentOverdue, rejected.PaymentStatus)
}
