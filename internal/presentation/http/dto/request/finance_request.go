package request

import "github.com/shopspring/decimal"

// CreateExpenseRequest represents an expense creation request
type CreateExpenseRequest struct {
	Category    string           `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	ExpenseDate string           `json:"expense_date"`
}

// ExpenseFilterRequest represents expense list filters
type ExpenseFilterRequest struct {
	Category  string `form:"category"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// DateRangeRequest bounds summaries and report exports by day
type DateRangeRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// AttendanceListRequest selects the day of an attendance listing
type AttendanceListRequest struct {
	Date string `form:"date"`
}
