package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income      TransactionType = "income"
	Expense     TransactionType = "expense"
	Savings     TransactionType = "savings"
	DebtPayment TransactionType = "debt_payment"
)

const (
	FundedFromIncome        FundedFrom = "income"
	FundedFromSavings       FundedFrom = "savings"
	FundedFromEmergencyFund FundedFrom = "emergency_fund"
)

const (
	SavingsManual SavingsKind = "manual"
	SavingsAuto   SavingsKind = "auto"
)

// AutoSavedSubcategory is the subcategory stamped on savings rows
// generated by the month-close workflow.
const AutoSavedSubcategory = "Auto-Saved"

type (
	TransactionType string

	// FundedFrom names the cumulative pool an expense is charged against.
	FundedFrom string

	// SavingsKind distinguishes user-entered savings from rows generated
	// at month close.
	SavingsKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single financial event. Once persisted it is
	// immutable: the only mutations are create and delete.
	Transaction struct {
		ID          string
		UserID      string
		Amount      Money
		Type        TransactionType
		CategoryID  string
		Subcategory string
		Note        string
		Date        Date
		CreatedAt   time.Time
		FundedFrom  FundedFrom  // expenses only
		SavingsKind SavingsKind // savings only
	}

	// Preset is a named template for quick transaction entry. Applying a
	// preset pre-fills a draft; the draft never references the preset
	// afterwards.
	Preset struct {
		ID          string
		UserID      string
		Name        string
		Amount      Money
		CategoryID  string
		Subcategory string
		Note        string
		FundedFrom  FundedFrom
	}

	// MonthStatus records whether and how a month was closed. One row per
	// (user, month); ProcessedAt nil means the month is still open.
	MonthStatus struct {
		ID          string
		UserID      string
		Month       MonthKey
		ProcessedAt *time.Time
		AutoAmount  Money
		DebtAmount  Money
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidMonth         = errors.New("invalid month key")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrUnknownSubcategory   = errors.New("subcategory not in category list")
	ErrInvalidFundedFrom    = errors.New("funded_from is only valid on expenses")
	ErrInvalidSavingsKind   = errors.New("savings kind is only valid on savings")
	ErrEmptyName            = errors.New("empty name")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Savings, DebtPayment:
		return true
	}
	return false
}

func (f FundedFrom) Valid() bool {
	switch f {
	case FundedFromIncome, FundedFromSavings, FundedFromEmergencyFund:
		return true
	}
	return false
}

func (k SavingsKind) Valid() bool {
	return k == SavingsManual || k == SavingsAuto
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Key returns the month key the date falls in.
func (d Date) Key() MonthKey {
	return MonthKey(d.Format("2006-01"))
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Abs returns the magnitude. Shortfalls are stored as positive debt.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	cat, ok := CategoryByID(t.CategoryID)
	if !ok {
		return ErrUnknownCategory
	}
	if cat.Type != t.Type {
		return ErrCategoryTypeMismatch
	}
	if t.Subcategory != "" && t.SavingsKind != SavingsAuto && !cat.HasSubcategory(t.Subcategory) {
		return ErrUnknownSubcategory
	}
	if t.FundedFrom != "" {
		if t.Type != Expense {
			return ErrInvalidFundedFrom
		}
		if !t.FundedFrom.Valid() {
			return errors.New("unknown funded_from pool")
		}
	}
	if t.SavingsKind != "" {
		if t.Type != Savings {
			return ErrInvalidSavingsKind
		}
		if !t.SavingsKind.Valid() {
			return errors.New("unknown savings kind")
		}
	}
	return nil
}

func (p Preset) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	cat, ok := CategoryByID(p.CategoryID)
	if !ok {
		return ErrUnknownCategory
	}
	if p.Subcategory != "" && !cat.HasSubcategory(p.Subcategory) {
		return ErrUnknownSubcategory
	}
	if p.FundedFrom != "" {
		if cat.Type != Expense {
			return ErrInvalidFundedFrom
		}
		if !p.FundedFrom.Valid() {
			return errors.New("unknown funded_from pool")
		}
	}
	return nil
}

// Apply pre-fills a transaction draft from the preset. The note is copied
// only when the preset carries one.
func (p Preset) Apply(date Date) Transaction {
	cat, _ := CategoryByID(p.CategoryID)
	t := Transaction{
		Amount:      p.Amount,
		Type:        cat.Type,
		CategoryID:  p.CategoryID,
		Subcategory: p.Subcategory,
		Date:        date,
		FundedFrom:  p.FundedFrom,
	}
	if cat.Type == Savings {
		t.SavingsKind = SavingsManual
	}
	if p.Note != "" {
		t.Note = p.Note
	}
	return t
}

// Closed reports whether the month has been processed.
func (s MonthStatus) Closed() bool {
	return s.ProcessedAt != nil
}
