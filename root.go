package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Someblueman/semmap/internal/config"
	"github.com/Someblueman/semmap/internal/semmap"
)

// app holds what every subcommand shares once the root command has loaded configuration.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
	out    *printer
	errOut *printer

	configFile string
}

// unboundAnnotation marks a flag that shares a name with a configuration key
// but means something else for its command.
const unboundAnnotation = "semmap:unbound"

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"root":           config.KeyRoot,
	"file":           config.KeyFile,
	"output":         config.KeyOutput,
	"format":         config.KeyFormat,
	"name":           config.KeyName,
	"purpose":        config.KeyPurpose,
	"log-level":      config.KeyLogLevel,
	"log-format":     config.KeyLogFormat,
	"exclude":        config.KeyExclude,
	"allow-tag":      config.KeyAllowedTags,
	"strict":         config.KeyStrict,
	"include-hidden": config.KeyHidden,
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.NewViper(),
		stdout: stdout,
		stderr: stderr,
		out:    newPrinter(stdout),
		errOut: newPrinter(stderr),
	}

	root := &cobra.Command{
		Use:           "semmap",
		Short:         "Derive and maintain a semantic map of a codebase",
		Long:          "semmap writes SEMMAP.md, a layered description of every file in a project,\nand keeps it in sync with the code without losing hand edits.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: ./.semmap.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text or json")

	root.AddCommand(
		newGenerateCmd(a),
		newValidateCmd(a),
		newDepsCmd(a),
		newUpdateCmd(a),
		newWatchCmd(a),
		newVersionCmd(a),
	)
	return root
}

// load binds the running command's flags, reads configuration and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if _, skip := f.Annotations[unboundAnnotation]; skip {
			return
		}
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return bindErr
	}
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return userError(err)
	}
	a.cfg = cfg

	level, _ := cfg.Level()
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(a.stderr, handlerOpts)
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(a.stderr, handlerOpts)
	}
	a.log = slog.New(handler)
	a.log.Debug("configuration loaded",
		slog.String("config", a.v.ConfigFileUsed()),
		slog.String("root", cfg.Root),
		slog.String("file", cfg.File))
	return nil
}

func (a *app) scanOptions() semmap.ScanOptions {
	return a.cfg.ScanOptions(a.log)
}

// documentRoot is the directory document paths are relative to: --root when
// given, otherwise the directory holding the document.
func (a *app) documentRoot(docPath string) string {
	if a.cfg.Root != "" {
		return a.cfg.Root
	}
	return filepath.Dir(docPath)
}

func (a *app) reportWarnings(warnings []semmap.Warning) {
	for _, w := range warnings {
		fmt.Fprintln(a.stderr, a.errOut.warning("warning: "+w.String()))
	}
}
