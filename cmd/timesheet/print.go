package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func usd(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func printShifts(w io.Writer, shifts []payroll.Shift) {
	if len(shifts) == 0 {
		fmt.Fprintln(w, "No shifts recorded.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tDAY\tSTART\tEND\tHOURS\tPER DIEM\tBONUS")
	for _, s := range shifts {
		bonus := ""
		if s.SiteBonus {
			bonus = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Date.Format(payroll.DateLayout),
			s.Date.Format("Mon"),
			s.StartTime,
			s.EndTime,
			s.Hours().StringFixed(2),
			s.PerDiem,
			bonus)
	}
	tw.Flush()
}

func printPeriodReport(w io.Writer, r payroll.PeriodReport) {
	fmt.Fprintf(w, "Pay period: %s", r.Period.Label)
	if r.Period.Synthesized {
		fmt.Fprintf(w, " (%s to %s)", r.Period.Start.Format(payroll.DateLayout), r.Period.End.Format(payroll.DateLayout))
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "\tHOURS\tDAYS\tBONUS\tOVERTIME\tTAXABLE\tPER DIEM")
	for i, wk := range []struct {
		in  payroll.WeekInput
		pay payroll.WeeklyPayResult
	}{{r.Week1, r.Pay.Week1}, {r.Week2, r.Pay.Week2}} {
		fmt.Fprintf(tw, "Week %d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			i+1,
			wk.in.Hours.StringFixed(2),
			wk.in.Days,
			usd(wk.pay.SiteBonusTotal),
			usd(wk.pay.OvertimePay),
			usd(wk.pay.TaxableGross),
			usd(wk.pay.PerDiemTotal))
	}
	tw.Flush()

	fmt.Fprintf(w, "Total hours:   %s\n", r.TotalHours().StringFixed(2))
	fmt.Fprintf(w, "Taxable gross: %s\n", usd(r.Pay.TaxableGross))
	fmt.Fprintf(w, "Tax:           %s\n", usd(r.Pay.Tax))
	fmt.Fprintf(w, "Per diem:      %s\n", usd(r.Pay.PerDiemTotal))
	fmt.Fprintf(w, "After tax:     %s\n", usd(r.Pay.AfterTax))
}

func printProjection(w io.Writer, p timesheet.Projection) {
	if p.Sample.Days > 0 {
		fmt.Fprintf(w, "Sample week: %d days, %s hours, %d bonus days, usual per diem %q\n",
			p.Sample.Days, p.Sample.Hours.StringFixed(2), p.Sample.BonusDays, p.Sample.CommonPerDiem)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SCENARIO\tHOURS\tOVERTIME\tTAXABLE\tPER DIEM\tTAKE HOME")
	for _, s := range p.Scenarios {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Label,
			s.Hours.StringFixed(1),
			usd(s.OvertimePay),
			usd(s.TaxableGross),
			usd(s.PerDiemTotal),
			usd(s.TakeHome))
	}
	tw.Flush()
}

func printPeriods(w io.Writer, periods []payroll.PayPeriod, current payroll.PayPeriod) {
	tw := newTable(w)
	fmt.Fprintln(tw, "\tSTART\tEND\tLABEL")
	for _, p := range periods {
		marker := ""
		if p.Start.Equal(current.Start) {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker,
			p.Start.Format(payroll.DateLayout), p.End.Format(payroll.DateLayout), p.Label)
	}
	tw.Flush()
}
