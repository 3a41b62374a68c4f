package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Someblueman/semmap/internal/semmap"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		checkFiles bool
		legendTags bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a semantic map for structural and content problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docPath := a.cfg.File
			doc, lines, err := readDocumentWithLines(docPath)
			if err != nil {
				return err
			}

			root := a.documentRoot(docPath)
			scan := a.scanOptions()
			scan.Root = root
			scan.ExcludeFiles = append(scan.ExcludeFiles, docPath)
			report := semmap.Validate(cmd.Context(), doc, semmap.ValidateOptions{
				Root:          root,
				CheckFiles:    checkFiles,
				Strict:        a.cfg.Strict,
				AllowedTags:   a.cfg.AllowedTags,
				UseLegendTags: legendTags,
				Lines:         lines,
				Scan:          scan,
			})

			for _, issue := range report.Issues {
				fmt.Fprintln(a.stdout, a.out.issueLine(issue))
			}
			fmt.Fprintf(a.stdout, "%s: %s\n", docPath, a.out.validationSummary(report))
			if report.Failed(a.cfg.Strict) {
				return failed()
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("file", "f", "SEMMAP.md", "semantic map to validate")
	f.String("root", "", "directory entry paths are relative to (default: the document's directory)")
	f.BoolVar(&checkFiles, "check-files", false, "report entries whose file does not exist")
	f.Bool("strict", false, "report unlisted files and fail on warnings")
	f.BoolVar(&legendTags, "legend-tags", false, "only allow tags defined in the legend")
	f.StringSlice("allow-tag", nil, "allowed entry tag (repeatable)")
	f.StringSlice("exclude", nil, "extra doublestar exclude globs for --strict")
	f.Bool("include-hidden", false, "include dot-prefixed files for --strict")
	return cmd
}

// readDocumentWithLines reads a document and, for markdown, where each element sits in the file.
func readDocumentWithLines(docPath string) (*semmap.Document, *semmap.LineIndex, error) {
	if _, ok := semmap.CodecForPath(docPath).(semmap.MarkdownCodec); !ok {
		doc, _, err := semmap.ReadDocument(docPath)
		return doc, nil, err
	}
	data, err := os.ReadFile(docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", semmap.ErrNoDocument, docPath)
		}
		return nil, nil, err
	}
	doc, lines, err := semmap.ParseMarkdownWithLines(string(data))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", docPath, err)
	}
	return doc, lines, nil
}
