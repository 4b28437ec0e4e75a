package reports

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind selects the reporting period granularity.
type Kind string

const (
	// KindWeekly aggregates over the custom week windows (see WeekRange).
	KindWeekly Kind = "weekly"
	// KindMonthly aggregates over calendar months.
	KindMonthly Kind = "monthly"
)

// Valid reports whether the kind is a known report kind.
func (k Kind) Valid() bool {
	return k == KindWeekly || k == KindMonthly
}

// Segment is the fixed partition every tenant belongs to. Aggregations and
// cache keys are always scoped to exactly one segment.
type Segment string

const (
	SegmentMens   Segment = "mens"
	SegmentWomens Segment = "womens"
)

// Segments lists every segment, in the order scheduled jobs process them.
func Segments() []Segment {
	return []Segment{SegmentMens, SegmentWomens}
}

// Valid reports whether the segment is one of the fixed categories.
func (s Segment) Valid() bool {
	return s == SegmentMens || s == SegmentWomens
}

// PaymentStatus is the collection outcome of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// ApprovalStatus is the administrative review outcome of a payment.
// It is terminal once approved or rejected.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Window is a concrete reporting time range, inclusive at both ends.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Key identifies one cached report bundle.
type Key struct {
	Segment Segment `json:"segment"`
	Kind    Kind    `json:"kind"`
	Period  int     `json:"period"`
	Year    int     `json:"year"`
}

// Tenant is a PG housing unit owning rooms and members.
type Tenant struct {
	ID       uuid.UUID
	Name     string
	Segment  Segment
	Location string
}

// Room belongs to exactly one tenant.
type Room struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Capacity int
	Rent     float64
}

// Member belongs to one tenant and optionally one room.
type Member struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	RoomID        *uuid.UUID
	Name          string
	JoinDate      time.Time
	DepartureDate *time.Time
	Advance       float64
	CreatedAt     time.Time
}

// Payment belongs to one member and, denormalised, one tenant.
type Payment struct {
	ID             uuid.UUID
	MemberID       uuid.UUID
	TenantID       uuid.UUID
	Month          int
	Year           int
	Amount         float64
	DueDate        time.Time
	OverdueDate    time.Time
	PaymentStatus  PaymentStatus
	ApprovalStatus ApprovalStatus
	PaidDate       *time.Time
	CreatedAt      time.Time
}

// TenantData is one tenant's slice of the segment snapshot: all rooms and
// members, plus the payments restricted to the target window by the loader.
type TenantData struct {
	Tenant   Tenant
	Rooms    []Room
	Members  []Member
	Payments []Payment
}

// ExpenseTotals carries the segment's in-window cash movements.
type ExpenseTotals struct {
	CashIn  float64
	CashOut float64
}

// TenantPerformanceRow is one tenant's line in the performance view.
type TenantPerformanceRow struct {
	TenantID         uuid.UUID `json:"tenant_id"`
	TenantName       string    `json:"tenant_name"`
	MemberCount      int       `json:"member_count"`
	NewMembers       int       `json:"new_members"`
	TotalRooms       int       `json:"total_rooms"`
	OccupiedRooms    int       `json:"occupied_rooms"`
	VacantRooms      int       `json:"vacant_rooms"`
	OccupancyRate    float64   `json:"occupancy_rate"`
	Revenue          float64   `json:"revenue"`
	PendingPayments  int       `json:"pending_payments"`
	OverduePayments  int       `json:"overdue_payments"`
	ApprovalRate     float64   `json:"approval_rate"`
	AveragePayment   float64   `json:"average_payment"`
	RevenuePerMember float64   `json:"revenue_per_member"`
}

// RoomUtilizationRow is one room's line in the utilization view.
type RoomUtilizationRow struct {
	TenantID          uuid.UUID `json:"tenant_id"`
	TenantName        string    `json:"tenant_name"`
	RoomID            uuid.UUID `json:"room_id"`
	RoomName          string    `json:"room_name"`
	Capacity          int       `json:"capacity"`
	Occupants         int       `json:"occupants"`
	UtilizationRate   float64   `json:"utilization_rate"`
	FullyOccupied     bool      `json:"fully_occupied"`
	Revenue           float64   `json:"revenue"`
	RevenueEfficiency float64   `json:"revenue_efficiency"`
}

// PaymentAnalyticsRow is one tenant's line in the payment analytics view.
type PaymentAnalyticsRow struct {
	TenantID             uuid.UUID `json:"tenant_id"`
	TenantName           string    `json:"tenant_name"`
	ReceivedPayments     int       `json:"received_payments"`
	ApprovedPayments     int       `json:"approved_payments"`
	PendingPayments      int       `json:"pending_payments"`
	OverduePayments      int       `json:"overdue_payments"`
	ExpectedAmount       float64   `json:"expected_amount"`
	ApprovedAmount       float64   `json:"approved_amount"`
	CollectionEfficiency float64   `json:"collection_efficiency"`
}

// CashFlowPositive and CashFlowNegative label the financial summary status.
const (
	CashFlowPositive = "positive"
	CashFlowNegative = "negative"
)

// FinancialSummaryRow is one tenant's line in the financial summary view.
type FinancialSummaryRow struct {
	TenantID         uuid.UUID `json:"tenant_id"`
	TenantName       string    `json:"tenant_name"`
	ActualRevenue    float64   `json:"actual_revenue"`
	PendingRevenue   float64   `json:"pending_revenue"`
	OverdueRevenue   float64   `json:"overdue_revenue"`
	ExpectedRevenue  float64   `json:"expected_revenue"`
	AdvanceCollected float64   `json:"advance_collected"`
	TotalCashInflow  float64   `json:"total_cash_inflow"`
	RevenueVariance  float64   `json:"revenue_variance"`
	CashFlowStatus   string    `json:"cash_flow_status"`
}

// Card pairs a scalar KPI with its percentage change versus the previous period.
type Card struct {
	Value        float64 `json:"value"`
	TrendPercent float64 `json:"trend_percent"`
}

// CardSet holds the five dashboard cards of a bundle.
type CardSet struct {
	NewMembers    Card `json:"new_members"`
	RentCollected Card `json:"rent_collected"`
	Departures    Card `json:"departures"`
	TotalExpenses Card `json:"total_expenses"`
	NetProfit     Card `json:"net_profit"`
}

// Bundle is the full aggregate result for one (segment, kind, period, year).
type Bundle struct {
	Key               Key                    `json:"key"`
	Window            Window                 `json:"window"`
	GeneratedAt       time.Time              `json:"generated_at"`
	TenantPerformance []TenantPerformanceRow `json:"tenant_performance"`
	RoomUtilization   []RoomUtilizationRow   `json:"room_utilization"`
	PaymentAnalytics  []PaymentAnalyticsRow  `json:"payment_analytics"`
	FinancialSummary  []FinancialSummaryRow  `json:"financial_summary"`
	Cards             CardSet                `json:"cards"`
}

var (
	// ErrUnknownKind indicates an unsupported report kind.
	ErrUnknownKind = errors.New("reports: unknown report kind")
	// ErrUnknownSegment indicates an unsupported tenant segment.
	ErrUnknownSegment = errors.New("reports: unknown segment")
	// ErrInvalidPeriod indicates a period index outside the kind's range.
	ErrInvalidPeriod = errors.New("reports: invalid period")
	// ErrCacheMiss indicates no cached bundle exists for a key.
	ErrCacheMiss = errors.New("reports: cache miss")
)
