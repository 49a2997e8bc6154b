package core

// Summary is the aggregate over a filtered transaction set.
type Summary struct {
	TotalIncome  Money `json:"totalIncome"`
	TotalExpense Money `json:"totalExpense"`
	Balance      Money `json:"balance"`
}

// Summarize partitions transactions by kind and sums amounts per kind.
// The sum of zero elements is 0 and balance = income - expense. All
// arithmetic is int64 cents.
func Summarize(txns []Transaction) Summary {
	var income, expense int64
	for _, t := range txns {
		switch t.Kind {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expense += t.Amount.Cents
		}
	}
	return Summary{
		TotalIncome:  Money{Cents: income},
		TotalExpense: Money{Cents: expense},
		Balance:      Money{Cents: income - expense},
	}
}
