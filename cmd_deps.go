package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Someblueman/semmap/internal/semmap"
)

func newDepsCmd(a *app) *cobra.Command {
	var (
		format string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Render the file dependency graph and report layer violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, _, err := semmap.ReadDocument(a.cfg.File)
			if err != nil {
				return err
			}
			g, err := semmap.BuildGraph(cmd.Context(), doc, semmap.GraphOptions{
				Root:   a.documentRoot(a.cfg.File),
				Logger: a.log,
			})
			if err != nil {
				return err
			}
			a.reportWarnings(g.Warnings)

			switch format {
			case "mermaid":
				err = semmap.MermaidRenderer{}.Render(a.stdout, g)
			case "json":
				err = semmap.RenderGraphJSON(a.stdout, g)
			default:
				return userError(fmt.Errorf("%w: %q (want mermaid or json)", semmap.ErrUnknownFormat, format))
			}
			if err != nil {
				return err
			}

			violations := g.Violations()
			for _, v := range violations {
				fmt.Fprintln(a.stderr, a.errOut.warning("violation: "+v.String()))
			}
			if check && len(violations) > 0 {
				fmt.Fprintln(a.stderr, a.errOut.failure(fmt.Sprintf("%d layer violation(s)", len(violations))))
				return failed()
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("file", "f", "SEMMAP.md", "semantic map to read")
	f.String("root", "", "directory entry paths are relative to (default: the document's directory)")
	f.StringVar(&format, "format", "mermaid", "output format: mermaid or json")
	_ = f.SetAnnotation("format", unboundAnnotation, []string{"true"})
	f.BoolVar(&check, "check", false, "exit 1 when layer violations exist")
	return cmd
}
