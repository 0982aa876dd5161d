package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordKind distinguishes the two financial record tables.
type RecordKind string

const (
	KindExpense RecordKind = "gasto"
	KindIncome  RecordKind = "receita"
)

// PlanType tags the premium plan a user is subscribed to.
type PlanType string

const (
	PlanFree        PlanType = "free"
	PlanIA          PlanType = "ia"
	PlanIADashboard PlanType = "ia_dashboard"
	PlanLifetime    PlanType = "vitalicio"
)

// ValidPlanType reports whether s names a known plan.
func ValidPlanType(s string) bool {
	switch PlanType(s) {
	case PlanFree, PlanIA, PlanIADashboard, PlanLifetime:
		return true
	}
	return false
}

type (
	// User is an account holder. RemoteJID is the external messaging
	// identifier and is globally unique.
	User struct {
		ID           uuid.UUID
		Name         string
		Phone        string
		RemoteJID    string
		LastMessage  string
		PremiumUntil *time.Time
		PlanType     PlanType
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Expense is a money-out record owned by exactly one user.
	Expense struct {
		ID          uuid.UUID
		UserID      uuid.UUID
		Description string
		Amount      Money
		Category    ExpenseCategory
		Date        time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Income is a money-in record owned by exactly one user.
	Income struct {
		ID          uuid.UUID
		UserID      uuid.UUID
		Description string
		Amount      Money
		Category    IncomeCategory
		Date        time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

// ExpenseCategory is the closed category set for expenses.
type ExpenseCategory string

const (
	ExpenseFood      ExpenseCategory = "Alimentação"
	ExpenseTransport ExpenseCategory = "Transporte"
	ExpenseHousing   ExpenseCategory = "Moradia"
	ExpenseHealth    ExpenseCategory = "Saúde"
	ExpenseEducation ExpenseCategory = "Educação"
	ExpenseLeisure   ExpenseCategory = "Lazer"
	ExpenseShopping  ExpenseCategory = "Compras"
	ExpenseOther     ExpenseCategory = "Outros"
)

// ExpenseCategories lists every valid expense category.
var ExpenseCategories = []ExpenseCategory{
	ExpenseFood, ExpenseTransport, ExpenseHousing, ExpenseHealth,
	ExpenseEducation, ExpenseLeisure, ExpenseShopping, ExpenseOther,
}

// Valid reports whether the category belongs to the expense set.
func (c ExpenseCategory) Valid() bool {
	for _, v := range ExpenseCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (c ExpenseCategory) String() string { return string(c) }

// IncomeCategory is the closed category set for income records.
// It is disjoint from the expense set on purpose: a category valid for
// one kind never validates for the other.
type IncomeCategory string

const (
	IncomeSalary     IncomeCategory = "Salário"
	IncomeFreelance  IncomeCategory = "Freelance"
	IncomeInvestment IncomeCategory = "Investimentos"
	IncomeBonus      IncomeCategory = "Bonificação"
	IncomeGift       IncomeCategory = "Presente"
	IncomeRent       IncomeCategory = "Aluguel"
	IncomeSale       IncomeCategory = "Venda"
	IncomeOther      IncomeCategory = "Outros"
)

// IncomeCategories lists every valid income category.
var IncomeCategories = []IncomeCategory{
	IncomeSalary, IncomeFreelance, IncomeInvestment, IncomeBonus,
	IncomeGift, IncomeRent, IncomeSale, IncomeOther,
}

// Valid reports whether the category belongs to the income set.
func (c IncomeCategory) Valid() bool {
	for _, v := range IncomeCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (c IncomeCategory) String() string { return string(c) }

var (
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyRemoteJID   = errors.New("empty remotejid")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrMissingUser      = errors.New("missing owning user")
)

const maxDescriptionLen = 500

// Validate checks the fields a caller controls on registration.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", ErrEmptyName)
	}
	if strings.TrimSpace(u.RemoteJID) == "" {
		return NewValidationError("remotejid", ErrEmptyRemoteJID)
	}
	if u.PlanType != "" && !ValidPlanType(string(u.PlanType)) {
		return NewValidationError("tipo_premium", errors.New("unknown plan type"))
	}
	return nil
}

// IsPremiumActive reports whether the premium subscription is active at now.
func (u User) IsPremiumActive(now time.Time) bool {
	return u.PremiumUntil != nil && u.PremiumUntil.After(now)
}

func (e Expense) Validate() error {
	if e.UserID == uuid.Nil {
		return NewValidationError("usuario", ErrMissingUser)
	}
	if strings.TrimSpace(e.Description) == "" {
		return NewValidationError("descricao", ErrEmptyDescription)
	}
	if len(e.Description) > maxDescriptionLen {
		return NewValidationError("descricao", errors.New("description too long"))
	}
	if err := e.Amount.Validate(); err != nil {
		return NewValidationError("valor", err)
	}
	if !e.Category.Valid() {
		return NewValidationError("categoria", ErrInvalidCategory)
	}
	if e.Date.IsZero() {
		return NewValidationError("data", ErrInvalidDate)
	}
	return nil
}

func (i Income) Validate() error {
	if i.UserID == uuid.Nil {
		return NewValidationError("usuario", ErrMissingUser)
	}
	if strings.TrimSpace(i.Description) == "" {
		return NewValidationError("descricao", ErrEmptyDescription)
	}
	if len(i.Description) > maxDescriptionLen {
		return NewValidationError("descricao", errors.New("description too long"))
	}
	if err := i.Amount.Validate(); err != nil {
		return NewValidationError("valor", err)
	}
	if !i.Category.Valid() {
		return NewValidationError("categoria", ErrInvalidCategory)
	}
	if i.Date.IsZero() {
		return NewValidationError("data", ErrInvalidDate)
	}
	return nil
}
