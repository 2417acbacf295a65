package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/balance"
	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/payment"
)

const topN = 5

// InMonth reports whether d falls in the calendar month (1-12) of any year. Month 0 matches every date.
func InMonth(d core.Date, month int) bool {
	return month == 0 || int(d.Month()) == month
}

func filterPayments(payments []payment.Payment, month int) []payment.Payment {
	filtered := make([]payment.Payment, 0, len(payments))
	for _, p := range payments {
		if InMonth(p.PaidAt, month) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func filterExpenses(expenses []expense.Expense, month int) []expense.Expense {
	filtered := make([]expense.Expense, 0, len(expenses))
	for _, exp := range expenses {
		if InMonth(exp.SpentAt, month) {
			filtered = append(filtered, exp)
		}
	}
	return filtered
}

// Dashboard

type GroupDebt struct {
	Name string `json:"name"`
	balance.Balance
}

type Dashboard struct {
	Month          int               `json:"month"` // 0: all
	TotalIncome    decimal.Decimal   `json:"total_income"`
	TotalExpenses  decimal.Decimal   `json:"total_expenses"`
	NetIncome      decimal.Decimal   `json:"net_income"`
	PayingStudents int               `json:"paying_students"`
	GroupsWithDebt []GroupDebt       `json:"groups_with_debt"`
	LatestPayments []payment.Payment `json:"latest_payments"`
}

// BuildDashboard summarizes the month's income and expenses. Group debts are computed over all payments,
// the same way balance.Service.Get does.
func BuildDashboard(snap Snapshot, month int) Dashboard {
	payments := filterPayments(snap.Payments, month)
	expenses := filterExpenses(snap.Expenses, month)

	income := payment.Total(payments)
	spent := expense.Total(expenses)

	payers := make(map[string]struct{})
	for _, p := range payments {
		if p.StudentID.Valid {
			payers[p.StudentID.String] = struct{}{}
		}
	}

	paid := make(map[string]decimal.Decimal)
	for _, p := range snap.Payments {
		if p.GroupID.Valid {
			paid[p.GroupID.String] = paid[p.GroupID.String].Add(p.Amount)
		}
	}
	debts := make([]GroupDebt, 0)
	for _, grp := range snap.Groups {
		bal := balance.Compute(grp.DueTotal, paid[grp.ID])
		bal.GroupID = grp.ID
		if bal.Remaining.IsPositive() {
			debts = append(debts, GroupDebt{Name: grp.Name, Balance: bal})
		}
	}
	sort.SliceStable(debts, func(i, j int) bool { return debts[i].Remaining.GreaterThan(debts[j].Remaining) })
	if len(debts) > topN {
		debts = debts[:topN]
	}

	latest := make([]payment.Payment, len(payments))
	copy(latest, payments)
	sort.SliceStable(latest, func(i, j int) bool { return latest[i].PaidAt.After(latest[j].PaidAt.Time) })
	if len(latest) > topN {
		latest = latest[:topN]
	}

	return Dashboard{
		Month:          month,
		TotalIncome:    income,
		TotalExpenses:  spent,
		NetIncome:      income.Sub(spent),
		PayingStudents: len(payers),
		GroupsWithDebt: debts,
		LatestPayments: latest,
	}
}

// Monthly

type MonthTotal struct {
	Month    string          `json:"month"` // YYYY-MM
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type GroupIncome struct {
	GroupID string          `json:"group_id"`
	Name    string          `json:"name"`
	Income  decimal.Decimal `json:"income"`
}

type Monthly struct {
	Months  []MonthTotal  `json:"months"`
	Highest *MonthTotal   `json:"highest"` // by income, among months with payments
	Lowest  *MonthTotal   `json:"lowest"`
	ByGroup []GroupIncome `json:"by_group"`
}

// BuildMonthly aggregates income and expenses per YYYY-MM, oldest month first.
// Income by group attributes a payment without a group to its student's current group.
func BuildMonthly(snap Snapshot) Monthly {
	totals := make(map[string]*MonthTotal)
	get := func(key string) *MonthTotal {
		if mt, ok := totals[key]; ok {
			return mt
		}
		mt := &MonthTotal{Month: key}
		totals[key] = mt
		return mt
	}
	withIncome := make(map[string]bool)
	for _, p := range snap.Payments {
		key := p.PaidAt.MonthKey()
		mt := get(key)
		mt.Income = mt.Income.Add(p.Amount)
		withIncome[key] = true
	}
	for _, exp := range snap.Expenses {
		mt := get(exp.SpentAt.MonthKey())
		mt.Expenses = mt.Expenses.Add(exp.Amount)
	}

	monthly := Monthly{Months: make([]MonthTotal, 0, len(totals))}
	for _, mt := range totals {
		mt.Net = mt.Income.Sub(mt.Expenses)
		monthly.Months = append(monthly.Months, *mt)
	}
	sort.Slice(monthly.Months, func(i, j int) bool { return monthly.Months[i].Month < monthly.Months[j].Month })

	for i := range monthly.Months {
		mt := monthly.Months[i]
		if !withIncome[mt.Month] {
			continue
		}
		if monthly.Highest == nil || mt.Income.GreaterThan(monthly.Highest.Income) {
			monthly.Highest = &mt
		}
		if monthly.Lowest == nil || mt.Income.LessThan(monthly.Lowest.Income) {
			monthly.Lowest = &mt
		}
	}

	monthly.ByGroup = incomeByGroup(snap)
	return monthly
}

func incomeByGroup(snap Snapshot) []GroupIncome {
	studentGroup := make(map[string]string, len(snap.Students))
	for _, stu := range snap.Students {
		if stu.GroupID.Valid {
			studentGroup[stu.ID] = stu.GroupID.String
		}
	}
	names := make(map[string]string, len(snap.Groups))
	for _, grp := range snap.Groups {
		names[grp.ID] = grp.Name
	}

	income := make(map[string]decimal.Decimal)
	for _, p := range snap.Payments {
		groupID := p.GroupID.String
		if !p.GroupID.Valid && p.StudentID.Valid {
			groupID = studentGroup[p.StudentID.String]
		}
		if groupID == "" {
			continue
		}
		income[groupID] = income[groupID].Add(p.Amount)
	}

	byGroup := make([]GroupIncome, 0, len(income))
	for id, amount := range income {
		byGroup = append(byGroup, GroupIncome{GroupID: id, Name: names[id], Income: amount})
	}
	sort.Slice(byGroup, func(i, j int) bool {
		if !byGroup[i].Income.Equal(byGroup[j].Income) {
			return byGroup[i].Income.GreaterThan(byGroup[j].Income)
		}
		return byGroup[i].GroupID < byGroup[j].GroupID
	})
	return byGroup
}

// Insights

type (
	InsightKind string
	Tone        string
)

// Insight kinds
const (
	InsightNoData      InsightKind = "no_data"
	InsightIncomeTrend InsightKind = "income_trend"
	InsightBreakEven   InsightKind = "break_even"
	InsightImprovement InsightKind = "improvement"
)

// Tones
const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
)

type Insight struct {
	Kind    InsightKind                `json:"kind"`
	Tone    Tone                       `json:"tone"`
	Figures map[string]decimal.Decimal `json:"figures,omitempty"`
}

var (
	growthThreshold  = decimal.RequireFromString("0.1")
	declineThreshold = decimal.RequireFromString("-0.05")
)

func toneByChange(change decimal.Decimal) Tone {
	switch {
	case change.GreaterThan(growthThreshold):
		return ToneSuccess
	case change.LessThan(declineThreshold):
		return ToneWarning
	}
	return ToneInfo
}

// BuildInsights compares the income of now's month with the previous calendar month's
// and the month's income with its expenses.
func BuildInsights(payments []payment.Payment, expenses []expense.Expense, now time.Time) []Insight {
	if len(payments) == 0 {
		return []Insight{{Kind: InsightNoData, Tone: ToneInfo}}
	}

	y, m, _ := now.Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	previous := time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")

	income, prevIncome, spent := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range payments {
		switch p.PaidAt.MonthKey() {
		case current:
			income = income.Add(p.Amount)
		case previous:
			prevIncome = prevIncome.Add(p.Amount)
		}
	}
	for _, exp := range expenses {
		if exp.SpentAt.MonthKey() == current {
			spent = spent.Add(exp.Amount)
		}
	}

	change := decimal.Zero
	if !prevIncome.IsZero() {
		change = income.Sub(prevIncome).DivRound(prevIncome, 4)
	}

	breakEven := ToneWarning
	if income.GreaterThan(spent) {
		breakEven = ToneSuccess
	}
	improvement := ToneInfo
	if change.IsNegative() {
		improvement = ToneWarning
	}

	return []Insight{
		{
			Kind:    InsightIncomeTrend,
			Tone:    toneByChange(change),
			Figures: map[string]decimal.Decimal{"income": income, "previous_income": prevIncome, "change": change},
		},
		{
			Kind:    InsightBreakEven,
			Tone:    breakEven,
			Figures: map[string]decimal.Decimal{"income": income, "expenses": spent, "net": income.Sub(spent)},
		},
		{
			Kind:    InsightImprovement,
			Tone:    improvement,
			Figures: map[string]decimal.Decimal{"change": change},
		},
	}
}

// Guest summary

// GuestRow is an anonymized payment: no student, group or note.
type GuestRow struct {
	Index  int             `json:"index"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt core.Date       `json:"paid_at"`
}

type GuestSummary struct {
	Month int             `json:"month"`
	Rows  []GuestRow      `json:"rows"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func BuildGuestSummary(payments []payment.Payment, month int) GuestSummary {
	filtered := filterPayments(payments, month)
	rows := make([]GuestRow, 0, len(filtered))
	for i, p := range filtered {
		rows = append(rows, GuestRow{Index: i + 1, Amount: p.Amount, PaidAt: p.PaidAt})
	}
	return GuestSummary{
		Month: month,
		Rows:  rows,
		Total: payment.Total(filtered),
		Count: len(filtered),
	}
}
