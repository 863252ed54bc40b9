package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amauryrb/hwtimesheet/config"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

func demoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Demo timesheets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "list",
		Short:       "List demo timesheets",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range timesheet.Demos() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", d.ID, d.Description)
			}
			return nil
		},
	})

	var yes bool
	load := &cobra.Command{
		Use:   "load <id>",
		Short: "Replace every shift with a demo timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("loading a demo deletes all shifts; pass --yes to confirm")
			}
			shifts, err := app.service.LoadDemo(app.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), timesheet.BulkSavedMessage(len(shifts)))
			return nil
		},
	}
	load.Flags().BoolVar(&yes, "yes", false, "Confirm replacing every shift")
	cmd.AddCommand(load)

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write the default configuration",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName + ".yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
