package finmath

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"finplan/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// TestLoanPayoff verifies the closed-form payoff timeline
func TestLoanPayoff(t *testing.T) {
	t.Run("credit card balance", func(t *testing.T) {
		got, err := LoanPayoff(dec("10000"), dec("20"), dec("300"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.MonthsToPayoff != 50 {
			t.Errorf("MonthsToPayoff = %d, want 50", got.MonthsToPayoff)
		}
		if got.ExactMonths.LessThan(dec("49")) || got.ExactMonths.GreaterThan(dec("49.1")) {
			t.Errorf("ExactMonths = %s, want ~49.06", got.ExactMonths)
		}
		assertDecimal(t, "MonthlyInterestCost", got.MonthlyInterestCost, dec("166.67"))
		assertDecimal(t, "DailyInterestCost", got.DailyInterestCost, dec("5.48"))
		assertDecimal(t, "TotalInterest", got.TotalInterest, got.TotalPaid.Sub(dec("10000")))
		if !got.TotalInterest.IsPositive() {
			t.Errorf("TotalInterest = %s, want positive", got.TotalInterest)
		}
	})

	t.Run("zero rate divides evenly", func(t *testing.T) {
		got, err := LoanPayoff(dec("1200"), decimal.Zero, dec("100"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.MonthsToPayoff != 12 {
			t.Errorf("MonthsToPayoff = %d, want 12", got.MonthsToPayoff)
		}
		assertDecimal(t, "TotalInterest", got.TotalInterest, decimal.Zero)
		assertDecimal(t, "TotalPaid", got.TotalPaid, dec("1200"))
	})

	t.Run("zero rate rounds partial month up", func(t *testing.T) {
		got, err := LoanPayoff(dec("1250"), decimal.Zero, dec("100"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.MonthsToPayoff != 13 {
			t.Errorf("MonthsToPayoff = %d, want 13", got.MonthsToPayoff)
		}
	})
}

// TestLoanPayoffInsufficientPayment verifies interest-only payments are rejected
func TestLoanPayoffInsufficientPayment(t *testing.T) {
	tests := []struct {
		name    string
		payment string
	}{
		{"interest only", "120"},
		{"below interest", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 12000 at 12% accrues exactly 120 per month
			_, err := LoanPayoff(dec("12000"), dec("12"), dec(tt.payment))
			if !errors.Is(err, ErrInsufficientPayment) {
				t.Fatalf("err = %v, want ErrInsufficientPayment", err)
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("err is %T, want *InputError", err)
			}
			if inputErr.Reason != ReasonInsufficientPayment {
				t.Errorf("Reason = %s, want %s", inputErr.Reason, ReasonInsufficientPayment)
			}
			if inputErr.Minimum == nil {
				t.Fatal("Minimum is nil")
			}
			assertDecimal(t, "Minimum", *inputErr.Minimum, dec("120.01"))
		})
	}
}

// TestLoanPayoffInvalidInputs verifies each invalid input maps to its reason
func TestLoanPayoffInvalidInputs(t *testing.T) {
	tests := []struct {
		name                   string
		balance, rate, payment string
		want                   error
	}{
		{"zero balance", "0", "5", "100", ErrNonPositiveBalance},
		{"negative balance", "-10", "5", "100", ErrNonPositiveBalance},
		{"negative rate", "1000", "-1", "100", ErrNegativeRate},
		{"zero payment", "1000", "5", "0", ErrNonPositivePayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoanPayoff(dec(tt.balance), dec(tt.rate), dec(tt.payment))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestComparePayoffStrategies verifies accelerated payments save time and interest
func TestComparePayoffStrategies(t *testing.T) {
	got, err := ComparePayoffStrategies(dec("10000"), dec("20"), dec("300"), dec("500"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MonthsSaved <= 0 {
		t.Errorf("MonthsSaved = %d, want > 0", got.MonthsSaved)
	}
	if !got.InterestSaved.IsPositive() {
		t.Errorf("InterestSaved = %s, want > 0", got.InterestSaved)
	}
	if got.Accelerated.MonthsToPayoff != 25 {
		t.Errorf("Accelerated.MonthsToPayoff = %d, want 25", got.Accelerated.MonthsToPayoff)
	}
	assertDecimal(t, "YearsSaved", got.YearsSaved, dec("2.1"))
	if !got.ReturnOnExtraPayment.IsPositive() {
		t.Errorf("ReturnOnExtraPayment = %s, want > 0", got.ReturnOnExtraPayment)
	}

	t.Run("propagates minimum payment failure", func(t *testing.T) {
		_, err := ComparePayoffStrategies(dec("10000"), dec("20"), dec("100"), dec("500"))
		if !errors.Is(err, ErrInsufficientPayment) {
			t.Errorf("err = %v, want ErrInsufficientPayment", err)
		}
	})
}

// TestDebtAvalanche verifies ordering, filtering, and annotations
func TestDebtAvalanche(t *testing.T) {
	debts := []models.Debt{
		{Description: "car", Balance: dec("8000"), InterestRate: dec("5"), MinimumPayment: dec("250")},
		{Description: "store card", Balance: dec("1200"), InterestRate: dec("22"), MinimumPayment: dec("40")},
		{Description: "personal", Balance: dec("5000"), InterestRate: dec("15"), MinimumPayment: dec("150")},
		{Description: "visa", Balance: dec("3650"), InterestRate: dec("22"), MinimumPayment: dec("90")},
		{Description: "student", Balance: dec("20000"), InterestRate: dec("8"), MinimumPayment: dec("200")},
		{Description: "", Balance: dec("500"), InterestRate: dec("30")},
		{Description: "paid off", Balance: decimal.Zero, InterestRate: dec("18")},
		{Description: "family loan", Balance: dec("1000"), InterestRate: decimal.Zero},
	}

	got := DebtAvalanche(debts)

	wantOrder := []string{"store card", "visa", "personal", "student", "car"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d debts, want %d", len(got), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].Description != name {
			t.Errorf("position %d = %q, want %q", i, got[i].Description, name)
		}
		if got[i].Priority != i+1 {
			t.Errorf("%s priority = %d, want %d", name, got[i].Priority, i+1)
		}
		if i > 0 && got[i].InterestRate.GreaterThan(got[i-1].InterestRate) {
			t.Errorf("position %d rate %s exceeds previous %s", i, got[i].InterestRate, got[i-1].InterestRate)
		}
	}

	wantUrgency := []Urgency{UrgencyCritical, UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow}
	for i, u := range wantUrgency {
		if got[i].Urgency != u {
			t.Errorf("%s urgency = %s, want %s", got[i].Description, got[i].Urgency, u)
		}
	}

	// visa: 3650 * 22% = 803 per year
	visa := got[1]
	assertDecimal(t, "AnnualInterest", visa.AnnualInterest, dec("803"))
	assertDecimal(t, "DailyInterest", visa.DailyInterest, dec("2.2"))
	assertDecimal(t, "MonthlyInterest", visa.MonthlyInterest, dec("66.92"))

	if out := DebtAvalanche(nil); len(out) != 0 {
		t.Errorf("DebtAvalanche(nil) returned %d entries", len(out))
	}
}

// TestEmergencyFundAdequacy verifies status thresholds and gaps
func TestEmergencyFundAdequacy(t *testing.T) {
	tests := []struct {
		name       string
		expenses   string
		savings    string
		stability  models.IncomeStability
		wantMonths int
		wantStatus FundStatus
		wantShort  string
		wantGap    string
	}{
		{"stable at exact target", "5000", "15000", models.IncomeStable, 3, FundAdequate, "0", "0"},
		{"variable partial", "5000", "20000", models.IncomeVariable, 6, FundPartial, "10000", "833.33"},
		{"variable insufficient", "5000", "10000", models.IncomeVariable, 6, FundInsufficient, "20000", "1666.67"},
		{"uncertain needs a year", "2000", "24000", models.IncomeUncertain, 12, FundAdequate, "0", "0"},
		{"unknown tier defaults to six", "1000", "0", models.IncomeStability("gig"), 6, FundInsufficient, "6000", "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EmergencyFundAdequacy(dec(tt.expenses), dec(tt.savings), tt.stability)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RecommendedMonths != tt.wantMonths {
				t.Errorf("RecommendedMonths = %d, want %d", got.RecommendedMonths, tt.wantMonths)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			assertDecimal(t, "Shortfall", got.Shortfall, dec(tt.wantShort))
			assertDecimal(t, "MonthlyGap", got.MonthlyGap, dec(tt.wantGap))
		})
	}

	t.Run("excess above target", func(t *testing.T) {
		got, err := EmergencyFundAdequacy(dec("1000"), dec("5000"), models.IncomeStable)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDecimal(t, "Excess", got.Excess, dec("2000"))
		assertDecimal(t, "CurrentMonthsCovered", got.CurrentMonthsCovered, dec("5"))
	})

	t.Run("invalid inputs", func(t *testing.T) {
		if _, err := EmergencyFundAdequacy(decimal.Zero, dec("100"), models.IncomeStable); !errors.Is(err, ErrNonPositiveExpenses) {
			t.Errorf("err = %v, want ErrNonPositiveExpenses", err)
		}
		if _, err := EmergencyFundAdequacy(dec("100"), dec("-1"), models.IncomeStable); !errors.Is(err, ErrNegativeSavings) {
			t.Errorf("err = %v, want ErrNegativeSavings", err)
		}
	})
}

// TestMortgageVsInvest verifies both strategies are computed and the verdict follows the larger benefit
func TestMortgageVsInvest(t *testing.T) {
	t.Run("default expected return", func(t *testing.T) {
		got, err := MortgageVsInvest(dec("300000"), dec("6.5"), dec("200"), decimal.Zero)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m := got.MortgageStrategy
		if m.PayoffMonths >= StandardMortgageMonths {
			t.Errorf("PayoffMonths = %d, want < %d", m.PayoffMonths, StandardMortgageMonths)
		}
		if !m.InterestSaved.IsPositive() {
			t.Errorf("InterestSaved = %s, want > 0", m.InterestSaved)
		}
		if got.AdvantageAmount.IsNegative() {
			t.Errorf("AdvantageAmount = %s, want >= 0", got.AdvantageAmount)
		}
		investBetter := got.InvestStrategy.InvestmentGain.GreaterThan(m.InterestSaved)
		if investBetter != (got.Recommendation == VerdictInvest) {
			t.Errorf("Recommendation = %s with gain %s and savings %s",
				got.Recommendation, got.InvestStrategy.InvestmentGain, m.InterestSaved)
		}
	})

	t.Run("expensive debt favors prepayment", func(t *testing.T) {
		got, err := MortgageVsInvest(dec("200000"), dec("12"), dec("500"), dec("1"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Recommendation != VerdictPayMortgage {
			t.Errorf("Recommendation = %s, want %s", got.Recommendation, VerdictPayMortgage)
		}
	})

	t.Run("zero extra payment", func(t *testing.T) {
		_, err := MortgageVsInvest(dec("200000"), dec("6"), decimal.Zero, decimal.Zero)
		if !errors.Is(err, ErrNonPositivePayment) {
			t.Errorf("err = %v, want ErrNonPositivePayment", err)
		}
	})
}

// TestRetirementProjection verifies lump sum plus annuity compounding and the 4% rule
func TestRetirementProjection(t *testing.T) {
	got, err := RetirementProjection(30, 65, dec("10000"), dec("500"), dec("7"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.YearsToRetirement != 35 {
		t.Errorf("YearsToRetirement = %d, want 35", got.YearsToRetirement)
	}
	assertDecimal(t, "TotalContributed", got.TotalContributed, dec("220000"))
	if !got.InvestmentGains.IsPositive() {
		t.Errorf("InvestmentGains = %s, want > 0", got.InvestmentGains)
	}
	assertDecimal(t, "ProjectedBalance", got.ProjectedBalance, got.TotalContributed.Add(got.InvestmentGains))
	assertDecimal(t, "SafeAnnualWithdrawal", got.SafeAnnualWithdrawal, models.Cents(got.ProjectedBalance.Mul(dec("0.04"))))

	t.Run("zero return uses default", func(t *testing.T) {
		def, err := RetirementProjection(30, 65, dec("10000"), dec("500"), decimal.Zero)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertDecimal(t, "ProjectedBalance", def.ProjectedBalance, got.ProjectedBalance)
	})

	t.Run("invalid ages", func(t *testing.T) {
		_, err := RetirementProjection(65, 65, dec("1000"), dec("100"), decimal.Zero)
		if !errors.Is(err, ErrAlreadyAtRetirement) {
			t.Errorf("err = %v, want ErrAlreadyAtRetirement", err)
		}
		_, err = RetirementProjection(0, 65, dec("1000"), dec("100"), decimal.Zero)
		if !errors.Is(err, ErrInvalidAge) {
			t.Errorf("err = %v, want ErrInvalidAge", err)
		}
	})
}

// TestCompounding verifies the shared annuity and growth primitives
func TestCompounding(t *testing.T) {
	tests := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"30 year mortgage payment", AmortizedPayment(dec("100000"), dec("6"), 360), "599.55"},
		{"zero rate payment", AmortizedPayment(dec("1200"), decimal.Zero, 12), "100"},
		{"future value", FutureValue(dec("1000"), dec("12"), 12), "1126.83"},
		{"future value no periods", FutureValue(dec("1000"), dec("12"), 0), "1000"},
		{"annuity", FutureValueAnnuity(dec("100"), dec("12"), 12), "1268.25"},
		{"annuity zero rate", FutureValueAnnuity(dec("100"), decimal.Zero, 12), "1200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.name, models.Cents(tt.got), dec(tt.want))
		})
	}
}
