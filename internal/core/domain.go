package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	KindSpending CategoryKind = "spending"
	KindIncome   CategoryKind = "income"
	KindTransfer CategoryKind = "transfer"
)

// SavingsCategory is the category goal contributions are booked under.
// It is seeded by the migrations and must exist for contributions to work.
const SavingsCategory = "Savings"

type (
	TransactionType string

	// CategoryKind controls how a category participates in reporting:
	// only spending categories appear in the monthly budget view.
	CategoryKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID   int64
		Name string
		Kind CategoryKind
	}

	Transaction struct {
		ID          int64
		Date        Date
		Amount      Money
		Type        TransactionType
		Category    string
		Description string
	}

	Budget struct {
		Category string
		Amount   Money
		Month    int // 1-12
		Year     int
	}

	SavingsGoal struct {
		ID      int64
		Name    string
		Target  Money
		Current Money
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (k CategoryKind) IsValid() bool {
	switch k {
	case KindSpending, KindIncome, KindTransfer:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day at day precision (UTC).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to day precision.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a date in the YYYY-MM-DD form used by storage and the API.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	return g.Target.Validate()
}

// ContributionDescription is the description written on the expense
// transaction created for a goal contribution.
func ContributionDescription(goalName string) string {
	return "Contribution to " + goalName
}
