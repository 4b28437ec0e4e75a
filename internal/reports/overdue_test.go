package reports

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	future := now.AddDate(0, 0, 2)

	cases := []struct {
		name    string
		payment Payment
		want    bool
	}{
		{"stored overdue", Payment{PaymentStatus: PaymentOverdue, ApprovalStatus: ApprovalPending, OverdueDate: future}, true},
		{"pending lapsed", Payment{PaymentStatus: PaymentPending, ApprovalStatus: ApprovalPending, OverdueDate: past}, true},
		{"pending not lapsed", Payment{PaymentStatus: PaymentPending, ApprovalStatus: ApprovalPending, OverdueDate: future}, false},
		{"approved lapsed", Payment{PaymentStatus: PaymentPaid, ApprovalStatus: ApprovalApproved, OverdueDate: past}, false},
		{"rejected lapsed", Payment{PaymentStatus: PaymentPending, ApprovalStatus: ApprovalRejected, OverdueDate: past}, false},
	}
	for _, tc := range cases {
		if got := IsOverdue(tc.payment, now); got != tc.want {
			t.Fatalf("%s: IsOverdue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// memOverdueStore applies the same monotonic predicate the SQL update uses
// over an in-memory payment set.
type memOverdueStore struct {
	payments []Payment
	calls    int
	err      error
}

func (s *memOverdueStore) MarkOverdue(_ context.Context, _ Segment, now time.Time) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	var changed int64
	for i, p := range s.payments {
		if p.ApprovalStatus == ApprovalPending && p.PaymentStatus == PaymentPending && p.OverdueDate.Before(now) {
			s.payments[i].PaymentStatus = PaymentOverdue
			changed++
		}
	}
	return changed, nil
}

func TestSyncIsIdempotent(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	store := &memOverdueStore{payments: []Payment{
		{PaymentStatus: PaymentPending, ApprovalStatus: ApprovalPending, OverdueDate: now.AddDate(0, 0, -2)},
		{PaymentStatus: PaymentPending, ApprovalStatus: ApprovalPending, OverdueDate: now.AddDate(0, 0, 3)},
		{PaymentStatus: PaymentPaid, ApprovalStatus: ApprovalApproved, OverdueDate: now.AddDate(0, 0, -9)},
	}}
	sync := NewOverdueSynchronizer(store, nil)
	sync.now = func() time.Time { return now }

	if err := sync.Sync(context.Background(), SegmentMens); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if store.payments[0].PaymentStatus != PaymentOverdue {
		t.Fatalf("lapsed payment should be overdue, got %s", store.payments[0].PaymentStatus)
	}
	if store.payments[1].PaymentStatus != PaymentPending {
		t.Fatalf("future payment should stay pending, got %s", store.payments[1].PaymentStatus)
	}

	before := append([]Payment(nil), store.payments...)
	if err := sync.Sync(context.Background(), SegmentMens); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	for i := range before {
		if before[i].PaymentStatus != store.payments[i].PaymentStatus {
			t.Fatalf("second run changed payment %d", i)
		}
	}
}

func TestSyncWrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	sync := NewOverdueSynchronizer(&memOverdueStore{err: boom}, nil)
	err := sync.Sync(context.Background(), SegmentWomens)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
