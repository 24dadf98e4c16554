package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photolink/internal/failure"
	"photolink/internal/preflight"
	"photolink/internal/reconcile"
	"photolink/internal/report"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Reconcile the catalog, back it up and write it in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runReconcile(cmd, reconcile.ModeApply, false)
		},
	}
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report what apply would do without touching the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runReconcile(cmd, reconcile.ModeVerify, diff)
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "Print a diff of the catalog apply would write")
	return cmd
}

// runOutput is the --json shape of apply and verify.
type runOutput struct {
	Report     report.Report `json:"report"`
	ReportPath string        `json:"report_path,omitempty"`
	BackupPath string        `json:"backup_path,omitempty"`
	Diff       string        `json:"diff,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func (c *commandContext) runReconcile(cmd *cobra.Command, mode reconcile.Mode, diff bool) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if failed := preflight.Failed(preflight.RunAll(cfg, mode == reconcile.ModeApply)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, r := range failed {
			details = append(details, r.Name+": "+r.Detail)
		}
		return failure.Wrap(failure.ErrInput, "preflight", string(mode), strings.Join(details, "; "), nil)
	}
	logger, err := c.newLogger(cfg)
	if err != nil {
		return err
	}

	result, runErr := reconcile.Run(cmd.Context(), cfg, reconcile.Options{
		Mode:   mode,
		Logger: logger,
		Diff:   diff,
	})
	if result == nil {
		return runErr
	}

	if c.flags.json {
		out := runOutput{
			Report:     result.Report,
			ReportPath: result.ReportPath,
			BackupPath: result.BackupPath,
			Diff:       result.Diff.Text,
		}
		if runErr != nil {
			out.Error = runErr.Error()
		}
		if err := writeJSON(cmd, out); err != nil {
			return err
		}
		return runErr
	}

	stdout := cmd.OutOrStdout()
	if diff {
		if result.Diff.Empty() {
			fmt.Fprintln(stdout, "No catalog changes.")
		} else {
			fmt.Fprint(stdout, result.Diff.Text)
			fmt.Fprintf(stdout, "%d line(s) added, %d removed\n\n", result.Diff.Added, result.Diff.Deleted)
		}
	}
	fmt.Fprint(stdout, renderReport(result, shouldColorize(stdout)))
	return runErr
}
