package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"photolink/internal/backup"
	"photolink/internal/catalog"
	"photolink/internal/failure"
)

// restoreOutput is the --json shape of restore.
type restoreOutput struct {
	Catalog    string `json:"catalog"`
	Restored   string `json:"restored_from"`
	BackupPath string `json:"backup_path,omitempty"`
	Unchanged  bool   `json:"unchanged"`
}

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "restore [backup|latest]",
		Short: "Put a catalog backup back in place",
		Long: "Restore replaces the catalog with a backup written by apply. The backup may be\n" +
			"a path, a file name inside backup_dir, or \"latest\" (the default). The catalog\n" +
			"being replaced is itself backed up first.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if list {
				return ctx.listBackups(cmd, cfg.Paths.BackupDir, cfg.Paths.Catalog)
			}

			ref := backup.LatestRef
			if len(args) == 1 {
				ref = args[0]
			}
			source, err := backup.Resolve(cfg.Paths.BackupDir, cfg.Paths.Catalog, ref)
			if err != nil {
				return failure.Wrap(failure.ErrInput, "restore", "locate", "Backup not found", err)
			}
			data, err := backup.Read(source)
			if err != nil {
				return failure.Wrap(failure.ErrInput, "restore", "read", "Backup unreadable", err)
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			res, err := catalog.Restore(cmd.Context(), catalog.RestoreRequest{
				Path:         cfg.Paths.Catalog,
				Data:         data,
				BackupDir:    cfg.Paths.BackupDir,
				RunTime:      time.Now(),
				MinFreeBytes: int64(cfg.Backup.MinFreeMB) << 20,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			if ctx.flags.json {
				return writeJSON(cmd, restoreOutput{
					Catalog:    cfg.Paths.Catalog,
					Restored:   source,
					BackupPath: res.BackupPath,
					Unchanged:  res.Unchanged,
				})
			}
			out := cmd.OutOrStdout()
			if res.Unchanged {
				fmt.Fprintf(out, "Catalog already matches %s\n", filepath.Base(source))
				return nil
			}
			fmt.Fprintf(out, "Restored %s from %s\n", cfg.Paths.Catalog, source)
			if res.BackupPath != "" {
				fmt.Fprintf(out, "Previous catalog saved to %s\n", res.BackupPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List available backups instead of restoring")
	return cmd
}

func (c *commandContext) listBackups(cmd *cobra.Command, dir, catalogPath string) error {
	files, err := backup.List(dir, catalogPath)
	if err != nil {
		return failure.Wrap(failure.ErrInput, "restore", "list", "Unable to list backups", err)
	}
	if c.flags.json {
		if files == nil {
			files = []backup.File{}
		}
		return writeJSON(cmd, files)
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No backups found")
		return nil
	}
	rows := make([][]string, 0, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		rows = append(rows, []string{
			filepath.Base(f.Path),
			f.ModTime.Local().Format(time.DateTime),
			strconv.FormatInt(f.Size, 10),
			yesNo(f.Compressed),
		})
	}
	fmt.Fprint(out, tableSpec{
		Headers: []string{"Backup", "Written", "Bytes", "Compressed"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	}.render())
	fmt.Fprintln(out)
	return nil
}
