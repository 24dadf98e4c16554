package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"photolink/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reconcile runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.HistoryPath()
			var runs []history.Run
			if _, statErr := os.Stat(path); statErr == nil {
				store, err := history.Open(cmd.Context(), path)
				if err != nil {
					return err
				}
				defer store.Close()
				runs, err = store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
			} else if !errors.Is(statErr, fs.ErrNotExist) {
				return fmt.Errorf("stat history: %w", statErr)
			}

			if ctx.flags.json {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprint(out, renderHistory(runs))
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func renderHistory(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "ok"
		if r.ErrorKind != "" {
			status = r.ErrorKind
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format(time.DateTime),
			r.Mode,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.AlreadyLocal),
			strconv.Itoa(r.Resolved),
			strconv.Itoa(r.Unresolved),
			strconv.Itoa(r.Changed),
			formatRate(r.ResolutionRate),
			yesNo(r.Committed),
			status,
		})
	}
	return tableSpec{
		Headers: []string{"Started", "Mode", "Total", "Local", "Resolved", "Unresolved", "Changed", "Rate", "Committed", "Status"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	}.render()
}
