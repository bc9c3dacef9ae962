package finmath

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

// Urgency grades a debt by its interest rate
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

var (
	criticalRate = decimal.NewFromInt(20)
	highRate     = decimal.NewFromInt(15)
	mediumRate   = decimal.NewFromInt(8)
)

// UrgencyFor maps an annual rate to its urgency tier
func UrgencyFor(annualRatePct decimal.Decimal) Urgency {
	switch {
	case annualRatePct.GreaterThanOrEqual(criticalRate):
		return UrgencyCritical
	case annualRatePct.GreaterThanOrEqual(highRate):
		return UrgencyHigh
	case annualRatePct.GreaterThanOrEqual(mediumRate):
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// PrioritizedDebt is a debt placed in avalanche order
type PrioritizedDebt struct {
	models.Debt
	Priority        int             `json:"priority"` // 1 = pay first
	Urgency         Urgency         `json:"urgency"`
	DailyInterest   decimal.Decimal `json:"daily_interest"`
	MonthlyInterest decimal.Decimal `json:"monthly_interest"`
	AnnualInterest  decimal.Decimal `json:"annual_interest"`
}

// DebtAvalanche orders debts by interest rate, highest first. Debts without a
// description, balance or rate are skipped. Equal rates keep their input order.
func DebtAvalanche(debts []models.Debt) []PrioritizedDebt {
	var out []PrioritizedDebt
	for _, d := range debts {
		if strings.TrimSpace(d.Description) == "" || !d.Balance.IsPositive() || !d.InterestRate.IsPositive() {
			continue
		}
		annual := d.Balance.Mul(models.Percent(d.InterestRate))
		out = append(out, PrioritizedDebt{
			Debt:            d,
			Urgency:         UrgencyFor(d.InterestRate),
			DailyInterest:   models.Cents(annual.Div(models.DaysInYear)),
			MonthlyInterest: models.Cents(annual.Div(models.Twelve)),
			AnnualInterest:  models.Cents(annual),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InterestRate.GreaterThan(out[j].InterestRate)
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out
}
