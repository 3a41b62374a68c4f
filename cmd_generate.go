package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Someblueman/semmap/internal/semmap"
)

func newGenerateCmd(a *app) *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan a project and write a fresh semantic map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codec := semmap.CodecForPath(a.cfg.Output)
			if cmd.Flags().Changed("format") || a.cfg.Format != "md" {
				c, err := semmap.CodecFor(a.cfg.Format)
				if err != nil {
					return userError(err)
				}
				codec = c
			}

			opts := a.scanOptions()
			if !toStdout {
				opts.ExcludeFiles = append(opts.ExcludeFiles, a.cfg.Output)
			}
			result, err := semmap.Generate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			a.reportWarnings(result.Warnings)

			data, err := codec.Encode(result.Document)
			if err != nil {
				return err
			}
			if toStdout {
				_, err = a.stdout.Write(data)
				return err
			}
			if err := semmap.WriteFileAtomic(a.cfg.Output, data); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s %s: %d files in %d layers\n",
				a.out.ok("Generated"), a.cfg.Output, result.Document.EntryCount(), len(result.Document.Layers))
			return nil
		},
	}

	f := cmd.Flags()
	f.String("root", ".", "project root to scan")
	f.StringP("output", "o", "SEMMAP.md", "output file")
	f.String("name", "", "project name (default: root directory name)")
	f.String("purpose", "", "one-line project purpose")
	f.String("format", "md", "output format: md, json, yaml, toml")
	f.StringSlice("exclude", nil, "extra doublestar exclude globs")
	f.Bool("include-hidden", false, "scan dot-prefixed files and directories")
	f.BoolVar(&toStdout, "stdout", false, "write the document to stdout instead of a file")
	return cmd
}
