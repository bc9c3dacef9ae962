package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finplan/internal/logging"
	"finplan/internal/models"
	"finplan/internal/services/finmath"
)

var (
	budgetCutShare       = decimal.RequireFromString("0.10")
	debtExtraShare       = decimal.RequireFromString("0.10")
	refinanceMinimumGap  = decimal.RequireFromString("0.5")
	feeThreshold         = decimal.NewFromInt(4)             // percent, a 4% expense ratio
	lowCostExpenseRatio  = decimal.RequireFromString("0.04") // percent, a 0.04% index fund
	extraContributionPct = decimal.NewFromInt(5)
	emergencyMonths      = decimal.NewFromInt(6)
)

const (
	feeHorizonMonths      = 20 * 12
	unusedSubscriptionAge = 60 * 24 * time.Hour
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func quantified(monthly decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	monthly = models.Cents(monthly)
	return monthly, models.Cents(monthly.Mul(models.Twelve))
}

func budgetOptimization(state models.FinancialState, conflicts []models.Conflict) *item {
	var shortfall *decimal.Decimal
	found := false
	for _, c := range conflicts {
		if c.Type == models.ConflictCashFlow {
			found = true
			shortfall = c.ShortfallAmount
			break
		}
	}
	if !found {
		return nil
	}

	monthly, annual := quantified(state.MonthlyExpenses.Mul(budgetCutShare))
	desc := fmt.Sprintf("Trim 10%% of monthly spending to free %s per month for your goals.", money(monthly))
	if shortfall != nil {
		desc += fmt.Sprintf(" Your goals are currently short %s per month.", money(*shortfall))
	}
	tier := ImpactFor(annual)
	return &item{horizon: Immediate, rec: models.Recommendation{
		ID:             models.StableID("recommendation", "budget_optimization"),
		Category:       "budget",
		Title:          "Optimize your monthly budget",
		Description:    desc,
		ImpactTier:     tier,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.10,
		Priority:       Priority(impactScore(tier), 9, 3),
		ActionItems: []string{
			"List every recurring expense from the last three months",
			"Cut or renegotiate the three largest discretionary items",
			fmt.Sprintf("Move %s to goal savings automatically each payday", money(monthly)),
		},
	}}
}

func emergencyFund(state models.FinancialState) *item {
	expenses := state.MonthlyExpenses
	if !expenses.IsPositive() || state.LiquidAssets.GreaterThanOrEqual(expenses.Mul(emergencyMonths)) {
		return nil
	}
	fund, err := finmath.EmergencyFundAdequacy(expenses, models.NonNegative(state.LiquidAssets), models.IncomeVariable)
	if err != nil {
		return nil
	}

	horizon, urgency := ShortTerm, 5.0
	if fund.Status == finmath.FundInsufficient {
		horizon, urgency = Immediate, 9.0
	}
	monthly, annual := quantified(fund.MonthlyGap)
	return &item{horizon: horizon, rec: models.Recommendation{
		ID:       models.StableID("recommendation", "emergency_fund"),
		Category: "emergency_fund",
		Title:    "Build a six month emergency fund",
		Description: fmt.Sprintf("Liquid savings cover %s months of expenses; the target is %s (%d months). Saving %s per month closes the gap within a year.",
			fund.CurrentMonthsCovered.StringFixed(1), money(fund.RecommendedAmount), fund.RecommendedMonths, money(monthly)),
		ImpactTier:     models.ImpactHigh,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.05,
		Priority:       Priority(impactScore(models.ImpactHigh), urgency, 4),
		ActionItems: []string{
			"Open a separate high-yield savings account",
			fmt.Sprintf("Automate a %s monthly transfer", money(monthly)),
			"Keep the fund out of investment accounts",
		},
	}}
}

func (e *Engine) mortgage(m models.MortgageFacts) *item {
	if m.InterestRate.Sub(e.marketRate).GreaterThanOrEqual(refinanceMinimumGap) {
		return e.refinance(m)
	}
	if m.ExtraPayment.IsPositive() {
		return e.accelerate(m)
	}
	return nil
}

func (e *Engine) refinance(m models.MortgageFacts) *item {
	months := m.RemainingMonths
	if months <= 0 {
		months = finmath.StandardMortgageMonths
	}
	newPayment := models.Cents(finmath.AmortizedPayment(m.Balance, e.marketRate, months))
	saving := m.MonthlyPayment.Sub(newPayment)
	if !saving.IsPositive() {
		return nil
	}

	monthly, annual := quantified(saving)
	tier := ImpactFor(annual)
	return &item{horizon: ShortTerm, rec: models.Recommendation{
		ID:       models.StableID("recommendation", "mortgage_refinance"),
		Category: "mortgage",
		Title:    "Refinance your mortgage",
		Description: fmt.Sprintf("Your %s%% rate is above the %s%% market rate. Refinancing the %s balance over %d months lowers the payment to %s.",
			m.InterestRate.String(), e.marketRate.String(), money(m.Balance), months, money(newPayment)),
		ImpactTier:     tier,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.05,
		Priority:       Priority(impactScore(tier), 5, 6),
		ActionItems: []string{
			"Request quotes from at least three lenders",
			"Compare closing costs against the monthly savings",
			"Only proceed if closing costs break even within three years",
		},
	}}
}

func (e *Engine) accelerate(m models.MortgageFacts) *item {
	cmp, err := finmath.ComparePayoffStrategies(m.Balance, m.InterestRate, m.MonthlyPayment, m.MonthlyPayment.Add(m.ExtraPayment))
	if err != nil {
		e.log.WithField(logging.FieldError, err).Warn("skipping mortgage acceleration")
		return nil
	}
	if !cmp.InterestSaved.IsPositive() {
		return nil
	}

	perMonth := models.Zero
	if cmp.Minimum.ExactMonths.IsPositive() {
		perMonth = cmp.InterestSaved.Div(cmp.Minimum.ExactMonths)
	}
	monthly, annual := quantified(perMonth)
	tier := ImpactFor(annual)

	actions := []string{
		fmt.Sprintf("Add %s to each mortgage payment", money(m.ExtraPayment)),
		fmt.Sprintf("Save %s in interest and finish %d months early", money(cmp.InterestSaved), cmp.MonthsSaved),
	}
	if vs, err := finmath.MortgageVsInvest(m.Balance, m.InterestRate, m.ExtraPayment, models.Zero); err == nil {
		if vs.Recommendation == finmath.VerdictInvest {
			actions = append(actions, fmt.Sprintf("Investing the extra instead could earn %s more", money(vs.AdvantageAmount)))
		} else {
			actions = append(actions, fmt.Sprintf("Prepaying beats investing the extra by %s", money(vs.AdvantageAmount)))
		}
	}

	return &item{horizon: LongTerm, rec: models.Recommendation{
		ID:             models.StableID("recommendation", "mortgage_acceleration"),
		Category:       "mortgage",
		Title:          "Accelerate your mortgage payoff",
		Description:    fmt.Sprintf("Paying %s extra each month saves %s of interest over the loan.", money(m.ExtraPayment), money(cmp.InterestSaved)),
		ImpactTier:     tier,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.03,
		Priority:       Priority(impactScore(tier), 3, 2),
		ActionItems:    actions,
	}}
}

func (e *Engine) retirement(r models.RetirementFacts) *item {
	var it *item
	matchGap := r.EmployerMatchPercent.Sub(r.ContributionPercent)
	if matchGap.IsPositive() {
		missed := r.AnnualSalary.Mul(models.Percent(matchGap)).Mul(models.Percent(r.EmployerMatchRate))
		monthly, annual := quantified(missed.Div(models.Twelve))
		it = &item{horizon: Immediate, rec: models.Recommendation{
			ID:       models.StableID("recommendation", "employer_match"),
			Category: "retirement",
			Title:    "Capture your full employer match",
			Description: fmt.Sprintf("Contributing %s%% leaves %s of employer match unclaimed each year. The match is a risk-free return.",
				r.ContributionPercent.String(), money(annual)),
			ImpactTier:     models.ImpactCritical,
			MonthlySavings: monthly,
			AnnualSavings:  annual,
			SuccessImpact:  0.15,
			Priority:       Priority(impactScore(models.ImpactCritical), 10, 1),
			ActionItems: []string{
				fmt.Sprintf("Raise your contribution from %s%% to %s%%", r.ContributionPercent.String(), r.EmployerMatchPercent.String()),
				"Confirm the change on your next pay stub",
			},
		}}
	} else {
		taxValue := r.AnnualSalary.Mul(models.Percent(extraContributionPct)).Mul(models.Percent(r.MarginalTaxRate))
		monthly, annual := quantified(taxValue.Div(models.Twelve))
		tier := ImpactFor(annual)
		it = &item{horizon: ShortTerm, rec: models.Recommendation{
			ID:       models.StableID("recommendation", "retirement_contribution"),
			Category: "retirement",
			Title:    "Increase retirement contributions",
			Description: fmt.Sprintf("You already receive the full match. Contributing 5 more points of salary saves about %s in taxes each year.",
				money(annual)),
			ImpactTier:     tier,
			MonthlySavings: monthly,
			AnnualSavings:  annual,
			SuccessImpact:  0.05,
			Priority:       Priority(impactScore(tier), 4, 2),
			ActionItems: []string{
				fmt.Sprintf("Raise your contribution to %s%%", r.ContributionPercent.Add(extraContributionPct).String()),
			},
		}}
	}

	if r.CurrentAge > 0 && r.RetirementAge > r.CurrentAge {
		matched := decimal.Min(r.ContributionPercent, r.EmployerMatchPercent).Mul(models.Percent(r.EmployerMatchRate))
		monthlyContribution := r.AnnualSalary.Mul(models.Percent(r.ContributionPercent.Add(matched))).Div(models.Twelve)
		outlook, err := finmath.RetirementProjection(r.CurrentAge, r.RetirementAge, r.CurrentBalance, monthlyContribution, models.Zero)
		if err != nil {
			e.log.WithField(logging.FieldError, err).Warn("skipping retirement projection")
		} else {
			it.rec.ActionItems = append(it.rec.ActionItems,
				fmt.Sprintf("At this pace you retire at %d with about %s, supporting %s per month",
					r.RetirementAge, money(outlook.ProjectedBalance), money(outlook.SafeMonthlyIncome)))
		}
	}
	return it
}

func investmentFees(inv models.InvestmentFeeFacts) *item {
	if !inv.ExpenseRatio.GreaterThan(feeThreshold) {
		return nil
	}
	expected := inv.ExpectedReturn
	if expected.IsZero() {
		expected = finmath.DefaultExpectedReturn
	}

	excess := inv.ExpenseRatio.Sub(lowCostExpenseRatio)
	annualCost := inv.PortfolioValue.Mul(models.Percent(excess))
	lowCost := finmath.FutureValue(inv.PortfolioValue, expected.Sub(lowCostExpenseRatio), feeHorizonMonths)
	current := finmath.FutureValue(inv.PortfolioValue, expected.Sub(inv.ExpenseRatio), feeHorizonMonths)
	drag := models.Cents(lowCost.Sub(current))

	monthly, annual := quantified(annualCost.Div(models.Twelve))
	tier := ImpactFor(annual)
	return &item{horizon: ShortTerm, rec: models.Recommendation{
		ID:       models.StableID("recommendation", "investment_fees"),
		Category: "investment_fees",
		Title:    "Cut investment fees",
		Description: fmt.Sprintf("A %s%% expense ratio costs %s a year more than a %s%% index fund, about %s over 20 years.",
			inv.ExpenseRatio.String(), money(annual), lowCostExpenseRatio.String(), money(drag)),
		ImpactTier:     tier,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.08,
		Priority:       Priority(impactScore(tier), 6, 3),
		ActionItems: []string{
			"List the expense ratio of every fund you hold",
			"Move high-fee funds to broad index funds",
			"Check for tax consequences before selling in taxable accounts",
		},
	}}
}

func (e *Engine) debts(debts []models.Debt, state models.FinancialState, prefs models.UserPreferences) *item {
	ordered := finmath.DebtAvalanche(debts)
	if len(ordered) == 0 {
		return nil
	}
	target := ordered[0]
	extra := models.Cents(models.NonNegative(state.MonthlySurplus).Mul(debtExtraShare))

	monthly, annual := quantified(target.MonthlyInterest)
	desc := fmt.Sprintf("Pay debts highest rate first, starting with %s at %s%%.", target.Description, target.InterestRate.String())
	if extra.IsPositive() {
		cmp, err := finmath.ComparePayoffStrategies(target.Balance, target.InterestRate, target.MinimumPayment, target.MinimumPayment.Add(extra))
		if err != nil {
			e.log.WithFields(logrus.Fields{
				logging.FieldError: err,
				"debt":             target.Description,
			}).Warn("cannot quantify debt payoff")
		} else if cmp.Minimum.ExactMonths.IsPositive() {
			monthly, annual = quantified(cmp.InterestSaved.Div(cmp.Minimum.ExactMonths))
			desc += fmt.Sprintf(" Adding %s per month saves %s of interest and %d months.", money(extra), money(cmp.InterestSaved), cmp.MonthsSaved)
		}
	}

	actions := make([]string, 0, len(ordered))
	for _, d := range ordered {
		actions = append(actions, fmt.Sprintf("%d. %s: %s at %s%% (%s interest per month)",
			d.Priority, d.Description, money(d.Balance), d.InterestRate.String(), money(d.MonthlyInterest)))
	}

	horizon, urgency := ShortTerm, 6.0
	if target.Urgency == finmath.UrgencyCritical || target.Urgency == finmath.UrgencyHigh {
		horizon, urgency = Immediate, 8.0
	}
	if prefs.PrioritizeDebtPayoff {
		urgency = 10
	}
	tier := ImpactFor(annual)
	return &item{horizon: horizon, rec: models.Recommendation{
		ID:             models.StableID("recommendation", "debt_avalanche"),
		Category:       "debt",
		Title:          "Pay down debt with the avalanche method",
		Description:    desc,
		ImpactTier:     tier,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.10,
		Priority:       Priority(impactScore(tier), urgency, 3),
		ActionItems:    actions,
	}}
}

func (e *Engine) subscriptions(subs models.SubscriptionFacts) *item {
	now := e.now()
	var names []string
	total := models.Zero
	for _, s := range subs.Items {
		if s.LastUsed == nil || now.Sub(*s.LastUsed) <= unusedSubscriptionAge {
			continue
		}
		names = append(names, s.Name)
		total = total.Add(s.MonthlyCost)
	}
	if len(names) == 0 {
		return nil
	}

	monthly, annual := quantified(total)
	tier := ImpactFor(annual)
	actions := make([]string, 0, len(names))
	for _, n := range names {
		actions = append(actions, "Cancel "+n)
	}
	return &item{horizon: Immediate, rec: models.Recommendation{
		ID:             models.StableID("recommendation", "unused_subscriptions"),
		Category:       "subscriptions",
		Title:          "Cancel unused subscriptions",
		Description:    fmt.Sprintf("%s have not been used in over 60 days and cost %s a month.", strings.Join(names, ", "), money(monthly)),
		ImpactTier:     tier,
		MonthlySavings: monthly,
		AnnualSavings:  annual,
		SuccessImpact:  0.02,
		Priority:       Priority(impactScore(tier), 7, 1),
		ActionItems:    actions,
	}}
}

func rebalancingReview() models.Recommendation {
	return models.Recommendation{
		ID:            models.StableID("recommendation", "rebalancing_review"),
		Category:      "investing",
		Title:         "Review your investment allocation",
		Description:   "Check that your allocation still matches your risk tolerance and goal timelines.",
		ImpactTier:    models.ImpactMedium,
		SuccessImpact: 0.03,
		ActionItems: []string{
			"Compare current allocation with your target",
			"Rebalance when any asset class drifts more than five points",
		},
	}
}

func incomeGrowth(goals []models.Goal) models.Recommendation {
	desc := "Plan raises, certifications or a job change to grow income over the next few years."
	if len(goals) > 0 {
		desc = fmt.Sprintf("Growing income is the most durable way to fund all %d of your goals.", len(goals))
	}
	return models.Recommendation{
		ID:            models.StableID("recommendation", "income_growth"),
		Category:      "income",
		Title:         "Plan for income growth",
		Description:   desc,
		ImpactTier:    models.ImpactMedium,
		SuccessImpact: 0.10,
		ActionItems: []string{
			"Research market pay for your role",
			"Set a skill or certification target for the year",
		},
	}
}
