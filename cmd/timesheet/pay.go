package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amauryrb/hwtimesheet/payroll"
)

func payCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Calculate pay from recorded shifts",
	}
	cmd.AddCommand(payPeriodCmd(app))
	cmd.AddCommand(payCurrentCmd(app))
	cmd.AddCommand(payAnalysisCmd(app))
	cmd.AddCommand(payProjectCmd(app))
	return cmd
}

func payPeriodCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "period [date]",
		Short: "Pay for the period containing date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := app.service.Today()
			if len(args) == 1 {
				d, err := payroll.ParseDate(args[0])
				if err != nil {
					return err
				}
				date = d
			}

			report, err := app.service.PeriodReport(app.ctx, date, app.params)
			if err != nil {
				return err
			}
			printPeriodReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func payCurrentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Pay for the current and previous period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, previous, err := app.service.CurrentReports(app.ctx, app.params)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printPeriodReport(out, current)
			fmt.Fprintln(out)
			printPeriodReport(out, previous)
			return nil
		},
	}
}

func payAnalysisCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analysis",
		Short: "Pay for every period that has shifts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := app.service.Analyze(app.ctx, app.params)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				fmt.Fprintln(out, "No shifts recorded.")
				return nil
			}
			for i, r := range reports {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printPeriodReport(out, r)
			}
			return nil
		},
	}
}

func payProjectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Project monthly take-home from a representative week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := app.service.Project(app.ctx, app.params)
			if err != nil {
				return err
			}
			printProjection(cmd.OutOrStdout(), proj)
			return nil
		},
	}
}

func periodsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "Print the pay period table (* marks the current period)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, _ := payroll.CurrentAndPrevious(app.service.Today())
			printPeriods(cmd.OutOrStdout(), payroll.Periods(), current)
			if current.Synthesized {
				fmt.Fprintf(cmd.OutOrStdout(), "\nToday is outside the table: %s to %s\n",
					current.Start.Format(payroll.DateLayout), current.End.Format(payroll.DateLayout))
			}
			return nil
		},
	}
}
