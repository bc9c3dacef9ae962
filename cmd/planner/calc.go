package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"finplan/internal/models"
	"finplan/internal/services/finmath"
)

type payoffCmd struct {
	*app
	balance     decimalFlag
	rate        decimalFlag
	payment     decimalFlag
	accelerated decimalFlag
}

func (*payoffCmd) Name() string     { return "payoff" }
func (*payoffCmd) Synopsis() string { return "months and interest to pay off a loan" }
func (*payoffCmd) Usage() string {
	return `planner payoff -balance <amount> -rate <annual %> -payment <monthly> [-accelerated <monthly>]

  Computes the payoff time and total interest of a loan. With -accelerated the
  larger payment is compared against the regular one.
`
}

func (c *payoffCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.balance, "balance", "Outstanding balance")
	f.Var(&c.rate, "rate", "Annual interest rate in percent, e.g. 19.99")
	f.Var(&c.payment, "payment", "Monthly payment")
	f.Var(&c.accelerated, "accelerated", "Larger monthly payment to compare against")
}

func (c *payoffCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.balance.set || !c.payment.set {
		fmt.Fprintln(c.errOut, "-balance and -payment are required")
		return subcommands.ExitUsageError
	}

	summary, err := finmath.LoanPayoff(c.balance.value, c.rate.value, c.payment.value)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "Paid off in %d months (%s exactly)\n", summary.MonthsToPayoff, summary.ExactMonths.StringFixed(1))
	fmt.Fprintf(c.out, "Total interest %s, total paid %s\n", summary.TotalInterest.StringFixed(2), summary.TotalPaid.StringFixed(2))
	fmt.Fprintf(c.out, "Interest costs %s a day, %s a month\n", summary.DailyInterestCost.StringFixed(2), summary.MonthlyInterestCost.StringFixed(2))

	if !c.accelerated.set {
		return subcommands.ExitSuccess
	}
	cmp, err := finmath.ComparePayoffStrategies(c.balance.value, c.rate.value, c.payment.value, c.accelerated.value)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "\nPaying %s a month instead:\n", c.accelerated.value.StringFixed(2))
	fmt.Fprintf(c.out, "Paid off in %d months, %d sooner (%s years)\n",
		cmp.Accelerated.MonthsToPayoff, cmp.MonthsSaved, cmp.YearsSaved.StringFixed(1))
	fmt.Fprintf(c.out, "Interest saved %s, a %s%% return on the extra money\n",
		cmp.InterestSaved.StringFixed(2), cmp.ReturnOnExtraPayment.StringFixed(1))
	return subcommands.ExitSuccess
}

type avalancheCmd struct {
	*app
	input string
}

func (*avalancheCmd) Name() string     { return "avalanche" }
func (*avalancheCmd) Synopsis() string { return "order debts by interest rate, highest first" }
func (*avalancheCmd) Usage() string {
	return `planner avalanche -input <debts.json>

  Reads a JSON array of debts (description, balance, interest_rate,
  minimum_payment) and prints the order in which to pay them down.
`
}

func (c *avalancheCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", "", "JSON file holding the debts")
}

func (c *avalancheCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		fmt.Fprintln(c.errOut, "-input is required")
		return subcommands.ExitUsageError
	}
	var debts []models.Debt
	if err := readJSON(c.input, &debts); err != nil {
		return c.fail(err)
	}

	ordered := finmath.DebtAvalanche(debts)
	if len(ordered) == 0 {
		fmt.Fprintln(c.out, "No interest-bearing debts.")
		return subcommands.ExitSuccess
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDEBT\tRATE\tBALANCE\tINTEREST/MO\tURGENCY")
	for _, d := range ordered {
		fmt.Fprintf(tw, "%d\t%s\t%s%%\t%s\t%s\t%s\n", d.Priority, d.Description, d.InterestRate.StringFixed(2),
			d.Balance.StringFixed(2), d.MonthlyInterest.StringFixed(2), d.Urgency)
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

type retireCmd struct {
	*app
	age      int
	retireAt int
	savings  decimalFlag
	monthly  decimalFlag
	expected decimalFlag
}

func (*retireCmd) Name() string     { return "retire" }
func (*retireCmd) Synopsis() string { return "project savings to retirement" }
func (*retireCmd) Usage() string {
	return `planner retire -age <n> -retire-at <n> -savings <amount> -monthly <amount> [-return <annual %>]

  Projects the balance at retirement and the income a 4% withdrawal supports.
`
}

func (c *retireCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.age, "age", 0, "Current age")
	f.IntVar(&c.retireAt, "retire-at", 65, "Retirement age")
	f.Var(&c.savings, "savings", "Current retirement savings")
	f.Var(&c.monthly, "monthly", "Monthly contribution")
	f.Var(&c.expected, "return", "Expected annual return in percent (default 7)")
}

func (c *retireCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	outlook, err := finmath.RetirementProjection(c.age, c.retireAt, c.savings.value, c.monthly.value, c.expected.value)
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintf(c.out, "In %d years: %s (%s contributed, %s growth)\n", outlook.YearsToRetirement,
		outlook.ProjectedBalance.StringFixed(2), outlook.TotalContributed.StringFixed(2), outlook.InvestmentGains.StringFixed(2))
	fmt.Fprintf(c.out, "Safe withdrawal %s a year, %s a month\n",
		outlook.SafeAnnualWithdrawal.StringFixed(2), outlook.SafeMonthlyIncome.StringFixed(2))
	return subcommands.ExitSuccess
}
