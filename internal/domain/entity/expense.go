package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense categories
const (
	ExpenseRent        = "rent"
	ExpenseSalary      = "salary"
	ExpenseElectricity = "electricity"
	ExpenseSupplies    = "supplies"
	ExpenseMaintenance = "maintenance"
	ExpenseOther       = "other"
)

var expenseCategories = []string{
	ExpenseRent, ExpenseSalary, ExpenseElectricity, ExpenseSupplies, ExpenseMaintenance, ExpenseOther,
}

// ExpenseCategories lists the accepted categories in display order
func ExpenseCategories() []string {
	return append([]string(nil), expenseCategories...)
}

// IsValidExpenseCategory reports whether category is a known category
func IsValidExpenseCategory(category string) bool {
	return slices.Contains(expenseCategories, category)
}

// Expense is money paid out by the business. Income is taken from invoices.
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Category    string          `gorm:"size:30;not null;default:'other';index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string          `gorm:"type:text;not null" json:"description"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new expense
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
