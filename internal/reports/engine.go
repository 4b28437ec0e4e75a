package reports

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PaymentInWindow reports whether a payment belongs to the window: its
// creation time or its due date falls inside [start, end], inclusive at both
// ends. The inclusive-inclusive boundary is load-bearing for cached history
// and is applied identically by the SQL loader and by this function.
func PaymentInWindow(p Payment, w Window) bool {
	return w.Contains(p.CreatedAt) || w.Contains(p.DueDate)
}

// memberActive is the single active-member rule: joined on or before the
// window end and not departed before the window start. Applied uniformly to
// member counts, occupancy and expected revenue in all four views.
func memberActive(m Member, w Window) bool {
	if m.JoinDate.After(w.End) {
		return false
	}
	return m.DepartureDate == nil || !m.DepartureDate.Before(w.Start)
}

// BuildTenantPerformance computes the per-tenant performance view.
func BuildTenantPerformance(data []TenantData, w Window, now time.Time) []TenantPerformanceRow {
	rows := make([]TenantPerformanceRow, 0, len(data))
	for _, td := range data {
		row := TenantPerformanceRow{
			TenantID:   td.Tenant.ID,
			TenantName: td.Tenant.Name,
			TotalRooms: len(td.Rooms),
		}

		occupied := make(map[uuid.UUID]bool)
		for _, m := range td.Members {
			if memberActive(m, w) {
				row.MemberCount++
				if m.RoomID != nil {
					occupied[*m.RoomID] = true
				}
			}
			if w.Contains(m.CreatedAt) {
				row.NewMembers++
			}
		}
		for _, r := range td.Rooms {
			if occupied[r.ID] {
				row.OccupiedRooms++
			}
		}
		row.VacantRooms = row.TotalRooms - row.OccupiedRooms
		row.OccupancyRate = pct(float64(row.OccupiedRooms), float64(row.TotalRooms))

		var approvedCount, total int
		for _, p := range td.Payments {
			if !PaymentInWindow(p, w) {
				continue
			}
			total++
			switch {
			case p.ApprovalStatus == ApprovalApproved:
				approvedCount++
				row.Revenue += p.Amount
			case IsOverdue(p, now):
				row.OverduePayments++
			case p.PaymentStatus == PaymentPending:
				row.PendingPayments++
			}
		}
		row.Revenue = round2(row.Revenue)
		row.ApprovalRate = pct(float64(approvedCount), float64(total))
		row.AveragePayment = div2(row.Revenue, float64(approvedCount))
		row.RevenuePerMember = div2(row.Revenue, float64(row.MemberCount))

		rows = append(rows, row)
	}
	return rows
}

// BuildRoomUtilization computes the per-room utilization view. The revenue
// efficiency ratio normalises window revenue to a monthly equivalent before
// dividing by rent, so the factor depends on the report kind.
func BuildRoomUtilization(data []TenantData, w Window, kind Kind) []RoomUtilizationRow {
	rows := make([]RoomUtilizationRow, 0)
	for _, td := range data {
		memberRoom := make(map[uuid.UUID]uuid.UUID, len(td.Members))
		occupants := make(map[uuid.UUID]int)
		for _, m := range td.Members {
			if !memberActive(m, w) {
				continue
			}
			if m.RoomID != nil {
				memberRoom[m.ID] = *m.RoomID
				occupants[*m.RoomID]++
			}
		}
		revenue := make(map[uuid.UUID]float64)
		for _, p := range td.Payments {
			if p.ApprovalStatus != ApprovalApproved || !PaymentInWindow(p, w) {
				continue
			}
			if roomID, ok := memberRoom[p.MemberID]; ok {
				revenue[roomID] += p.Amount
			}
		}
		for _, r := range td.Rooms {
			row := RoomUtilizationRow{
				TenantID:   td.Tenant.ID,
				TenantName: td.Tenant.Name,
				RoomID:     r.ID,
				RoomName:   r.Name,
				Capacity:   r.Capacity,
				Occupants:  occupants[r.ID],
				Revenue:    round2(revenue[r.ID]),
			}
			row.UtilizationRate = pct(float64(row.Occupants), float64(r.Capacity))
			row.FullyOccupied = r.Capacity > 0 && row.Occupants >= r.Capacity
			monthly := row.Revenue
			if kind == KindWeekly {
				monthly *= 4
			}
			row.RevenueEfficiency = pct(monthly, r.Rent)
			rows = append(rows, row)
		}
	}
	return rows
}

// BuildPaymentAnalytics computes the per-tenant payment analytics view.
func BuildPaymentAnalytics(data []TenantData, w Window, now time.Time) []PaymentAnalyticsRow {
	rows := make([]PaymentAnalyticsRow, 0, len(data))
	for _, td := range data {
		row := PaymentAnalyticsRow{
			TenantID:   td.Tenant.ID,
			TenantName: td.Tenant.Name,
		}
		for _, p := range td.Payments {
			if !PaymentInWindow(p, w) {
				continue
			}
			row.ReceivedPayments++
			switch {
			case p.ApprovalStatus == ApprovalApproved:
				row.ApprovedPayments++
				row.ApprovedAmount += p.Amount
			case IsOverdue(p, now):
				row.OverduePayments++
			case p.PaymentStatus == PaymentPending:
				row.PendingPayments++
			}
		}
		row.ApprovedAmount = round2(row.ApprovedAmount)
		row.ExpectedAmount = round2(expectedRent(td, w))
		row.CollectionEfficiency = pct(row.ApprovedAmount, row.ExpectedAmount)
		rows = append(rows, row)
	}
	return rows
}

// BuildFinancialSummary computes the per-tenant financial summary view.
func BuildFinancialSummary(data []TenantData, w Window, now time.Time) []FinancialSummaryRow {
	rows := make([]FinancialSummaryRow, 0, len(data))
	for _, td := range data {
		row := FinancialSummaryRow{
			TenantID:   td.Tenant.ID,
			TenantName: td.Tenant.Name,
		}
		for _, p := range td.Payments {
			if !PaymentInWindow(p, w) {
				continue
			}
			switch {
			case p.ApprovalStatus == ApprovalApproved:
				row.ActualRevenue += p.Amount
			case IsOverdue(p, now):
				row.OverdueRevenue += p.Amount
			case p.PaymentStatus == PaymentPending:
				row.PendingRevenue += p.Amount
			}
		}
		for _, m := range td.Members {
			if w.Contains(m.CreatedAt) {
				row.AdvanceCollected += m.Advance
			}
		}
		row.ActualRevenue = round2(row.ActualRevenue)
		row.PendingRevenue = round2(row.PendingRevenue)
		row.OverdueRevenue = round2(row.OverdueRevenue)
		row.AdvanceCollected = round2(row.AdvanceCollected)
		row.ExpectedRevenue = round2(expectedRent(td, w))
		row.TotalCashInflow = round2(row.ActualRevenue + row.AdvanceCollected)
		if row.ExpectedRevenue != 0 {
			row.RevenueVariance = round2((row.ActualRevenue - row.ExpectedRevenue) / row.ExpectedRevenue * 100)
		}
		row.CashFlowStatus = CashFlowNegative
		if row.TotalCashInflow >= row.ExpectedRevenue {
			row.CashFlowStatus = CashFlowPositive
		}
		rows = append(rows, row)
	}
	return rows
}

// CardValues are the raw scalar KPIs of one window, before trend pairing.
type CardValues struct {
	NewMembers    float64
	RentCollected float64
	Departures    float64
	TotalExpenses float64
	NetProfit     float64
}

// BuildCardValues computes the five scalar KPIs over one window.
func BuildCardValues(data []TenantData, expenses ExpenseTotals, w Window) CardValues {
	var v CardValues
	for _, td := range data {
		for _, m := range td.Members {
			if w.Contains(m.CreatedAt) {
				v.NewMembers++
			}
			if m.DepartureDate != nil && w.Contains(*m.DepartureDate) {
				v.Departures++
			}
		}
		for _, p := range td.Payments {
			if p.ApprovalStatus == ApprovalApproved && PaymentInWindow(p, w) {
				v.RentCollected += p.Amount
			}
		}
	}
	v.RentCollected = round2(v.RentCollected)
	v.TotalExpenses = round2(expenses.CashOut)
	v.NetProfit = round2(v.RentCollected - v.TotalExpenses)
	return v
}

// expectedRent sums the room rent of every member active in the window and
// assigned to a room.
func expectedRent(td TenantData, w Window) float64 {
	rentByRoom := make(map[uuid.UUID]float64, len(td.Rooms))
	for _, r := range td.Rooms {
		rentByRoom[r.ID] = r.Rent
	}
	var total float64
	for _, m := range td.Members {
		if m.RoomID == nil || !memberActive(m, w) {
			continue
		}
		total += rentByRoom[*m.RoomID]
	}
	return total
}

// pct is num/den*100 rounded to two decimals, 0 when the denominator is 0.
func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den * 100)
}

// div2 is num/den rounded to two decimals, 0 when the denominator is 0.
func div2(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
