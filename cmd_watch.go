package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Someblueman/semmap/internal/semmap"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a semantic map up to date while files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, a.out.dim("watching "+a.documentRoot(a.cfg.File)+" (ctrl-c to stop)"))
			return semmap.Watch(cmd.Context(), semmap.WatchOptions{
				Update:   a.updateOptions(false),
				Debounce: debounce,
				OnUpdate: func(result *semmap.UpdateResult, err error) {
					if err != nil {
						fmt.Fprintln(a.stderr, a.errOut.failure("update failed: "+err.Error()))
						return
					}
					if result.Report.Empty() {
						return
					}
					fmt.Fprint(a.stdout, a.out.reconcileSummary(result.Report))
				},
			})
		},
	}

	f := cmd.Flags()
	f.StringP("file", "f", "SEMMAP.md", "semantic map to keep updated")
	f.String("root", "", "directory to watch (default: the document's directory)")
	f.StringSlice("exclude", nil, "extra doublestar exclude globs")
	f.DurationVar(&debounce, "debounce", semmap.DefaultDebounce, "quiet period before updating")
	return cmd
}
