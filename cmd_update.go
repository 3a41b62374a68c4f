package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Someblueman/semmap/internal/semmap"
)

func newUpdateCmd(a *app) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Add new files to and drop deleted files from an existing semantic map",
		Long: "update regenerates the map from the scan root and merges it into the existing\n" +
			"document. Entries already present are never rewritten, so hand edits survive.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := semmap.Update(cmd.Context(), a.updateOptions(check))
			if err != nil {
				return err
			}
			a.reportWarnings(result.Warnings)
			fmt.Fprint(a.stdout, a.out.reconcileSummary(result.Report))

			switch {
			case check && !result.Report.Empty():
				fmt.Fprintln(a.stdout, a.out.failure(a.cfg.File+" is stale"))
				return failed()
			case check:
				fmt.Fprintln(a.stdout, a.out.ok(a.cfg.File+" is up to date"))
			case result.Changed:
				fmt.Fprintln(a.stdout, a.out.ok("Updated "+a.cfg.File))
			default:
				fmt.Fprintln(a.stdout, a.out.dim(a.cfg.File+" unchanged"))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("file", "f", "SEMMAP.md", "semantic map to update")
	f.String("root", "", "directory to scan (default: the document's directory)")
	f.StringSlice("exclude", nil, "extra doublestar exclude globs")
	f.Bool("include-hidden", false, "scan dot-prefixed files and directories")
	f.BoolVar(&check, "check", false, "report without writing; exit 1 when entries would change")
	return cmd
}

func (a *app) updateOptions(dryRun bool) semmap.UpdateOptions {
	return semmap.UpdateOptions{
		DocPath: a.cfg.File,
		Root:    a.documentRoot(a.cfg.File),
		Scan:    a.scanOptions(),
		DryRun:  dryRun,
	}
}
