package reports

// PctChange expresses the movement from previous to current as a percentage,
// rounded to two decimals. A zero previous value yields 100 for any growth
// and 0 for no movement, never an infinity.
func PctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// BuildCardSet pairs the current window's KPI values with their trend against
// the immediately preceding window.
func BuildCardSet(current, previous CardValues) CardSet {
	return CardSet{
		NewMembers:    Card{Value: current.NewMembers, TrendPercent: PctChange(current.NewMembers, previous.NewMembers)},
		RentCollected: Card{Value: current.RentCollected, TrendPercent: PctChange(current.RentCollected, previous.RentCollected)},
		Departures:    Card{Value: current.Departures, TrendPercent: PctChange(current.Departures, previous.Departures)},
		TotalExpenses: Card{Value: current.TotalExpenses, TrendPercent: PctChange(current.TotalExpenses, previous.TotalExpenses)},
		NetProfit:     Card{Value: current.NetProfit, TrendPercent: PctChange(current.NetProfit, previous.NetProfit)},
	}
}
