package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

func shiftCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Record, list and delete shifts",
	}
	cmd.AddCommand(shiftAddCmd(app))
	cmd.AddCommand(shiftBulkCmd(app))
	cmd.AddCommand(shiftListCmd(app))
	cmd.AddCommand(shiftDeleteCmd(app))
	cmd.AddCommand(shiftClearCmd(app))
	return cmd
}

func shiftAddCmd(app *App) *cobra.Command {
	var in timesheet.ShiftInput
	cmd := &cobra.Command{
		Use:   "add <date> <start> <end>",
		Short: "Record one shift, e.g. add 2025-08-12 08:00 17:00",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Date, in.StartTime, in.EndTime = args[0], args[1], args[2]

			shift, err := app.service.AddShift(app.ctx, in)
			if err != nil {
				return errors.New(timesheet.FailureMessage("save shift to database", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), timesheet.SavedMessage(shift.Date))
			printShifts(cmd.OutOrStdout(), []payroll.Shift{shift})
			return nil
		},
	}
	cmd.Flags().StringVar(&in.PerDiem, "per-diem", "", `Per diem tier, e.g. "Breakfast + Lunch"`)
	cmd.Flags().BoolVar(&in.SiteBonus, "bonus", false, "Shift earned a site bonus")
	return cmd
}

func shiftBulkCmd(app *App) *cobra.Command {
	var in timesheet.BulkShiftInput
	cmd := &cobra.Command{
		Use:   "bulk <from> <to> <start> <end>",
		Short: "Record the same shift on every day of a date range",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.StartDate, in.EndDate, in.StartTime, in.EndTime = args[0], args[1], args[2], args[3]

			shifts, err := app.service.AddShifts(app.ctx, in)
			if err != nil {
				return errors.New(timesheet.FailureMessage("save shifts to database", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), timesheet.BulkSavedMessage(len(shifts)))
			printShifts(cmd.OutOrStdout(), shifts)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.PerDiem, "per-diem", "", "Per diem tier for every shift")
	cmd.Flags().BoolVar(&in.SiteBonus, "bonus", false, "Every shift earned a site bonus")
	cmd.Flags().BoolVar(&in.WeekdaysOnly, "weekdays", false, "Skip Saturdays and Sundays")
	return cmd
}

func shiftListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all shifts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shifts, err := app.service.ListShifts(app.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), timesheet.ReadyMessage(len(shifts)))
			printShifts(cmd.OutOrStdout(), shifts)
			return nil
		},
	}
}

func shiftDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one shift by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.service.DeleteShift(app.ctx, args[0])
			if err != nil {
				return errors.New(timesheet.FailureMessage("delete shift", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), timesheet.DeletedMessage(id))
			return nil
		},
	}
}

func shiftClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all shifts without --yes")
			}
			n, err := app.service.DeleteAllShifts(app.ctx)
			if err != nil {
				return errors.New(timesheet.FailureMessage("delete shifts", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), timesheet.ClearedMessage(n))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every shift")
	return cmd
}
