// Package main provides the CLI entry point for hocon, a tool that parses,
// resolves, and inspects HOCON configuration documents.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/hocon"
	"go.jacobcolvin.com/hocon/log"
	"go.jacobcolvin.com/hocon/profile"
	"go.jacobcolvin.com/hocon/version"
)

func main() {
	logCfg := log.NewConfig()
	hoconCfg := hocon.NewConfig()
	profileCfg := profile.NewConfig()

	rootCmd := &cobra.Command{
		Use:           "hocon",
		Short:         "Parse, resolve, and inspect HOCON configuration documents",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	hoconCfg.RegisterFlags(rootCmd.PersistentFlags())
	profileCfg.RegisterFlags(rootCmd.PersistentFlags())

	for _, cfg := range []interface {
		RegisterCompletions(*cobra.Command) error
	}{logCfg, hoconCfg, profileCfg} {
		if err := cfg.RegisterCompletions(rootCmd); err != nil {
			fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
		}
	}

	rootCmd.AddCommand(
		newEvalCmd(logCfg, hoconCfg, profileCfg),
		newGetCmd(logCfg, hoconCfg, profileCfg),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newEvalCmd(logCfg *log.Config, hoconCfg *hocon.Config, profileCfg *profile.Config) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "eval [flags] <file.conf | ->",
		Short: "Resolve a HOCON document and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withRun(logCfg, profileCfg, func() error {
				return runEval(hoconCfg, args[0], pretty)
			})
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent the JSON output")

	return cmd
}

func runEval(hoconCfg *hocon.Config, arg string, pretty bool) error {
	v, err := loadArg(hoconCfg, arg)
	if err != nil {
		return err
	}

	return writeJSON(os.Stdout, v.ToAny(), pretty)
}

func newGetCmd(logCfg *log.Config, hoconCfg *hocon.Config, profileCfg *profile.Config) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "get [flags] <file.conf | -> <dotted.path>",
		Short: "Resolve a HOCON document and print the value at a dotted path",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return withRun(logCfg, profileCfg, func() error {
				return runGet(hoconCfg, args[0], args[1], pretty)
			})
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent the JSON output")

	return cmd
}

func runGet(hoconCfg *hocon.Config, arg, dottedPath string, pretty bool) error {
	v, err := loadArg(hoconCfg, arg)
	if err != nil {
		return err
	}

	segments := splitDotted(dottedPath)

	found, ok := v.GetPath(segments...)
	if !ok {
		return fmt.Errorf("path %q not found", dottedPath)
	}

	return writeJSON(os.Stdout, found.ToAny(), pretty)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Printf("hocon %s (%s, %s/%s, rev %s)\n",
				orDefault(version.Version, "dev"), version.GoVersion, version.GoOS, version.GoArch, version.Revision)

			return nil
		},
	}
}

func loadArg(hoconCfg *hocon.Config, arg string) (*hocon.Value, error) {
	opts := hoconCfg.Options()

	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return hocon.ParseString(string(data), hocon.WithOptions(opts))
	}

	return hocon.Load(arg, hocon.WithOptions(opts))
}

// withRun wires up logging and profiling around fn. Log output is written
// to stderr and, via a [log.Publisher], fanned out to a background
// subscriber that tallies warnings and errors so the command can report a
// one-line summary on exit (log.Publisher's documented multi-consumer
// fan-out, put to use instead of sitting unreferenced).
func withRun(logCfg *log.Config, profileCfg *profile.Config, fn func() error) error {
	pub := log.NewPublisher()
	sub := pub.Subscribe()

	var warnings, errs atomic.Int32

	drained := make(chan struct{})

	go func() {
		defer close(drained)

		for entry := range sub.C() {
			switch {
			case bytes.Contains(entry, []byte("ERROR")):
				errs.Add(1)
			case bytes.Contains(entry, []byte("WARN")):
				warnings.Add(1)
			}
		}
	}()

	handler, err := logCfg.NewHandler(io.MultiWriter(os.Stderr, pub))
	if err != nil {
		pub.Close()
		<-drained

		return err
	}

	slog.SetDefault(slog.New(handler))

	profiler := profileCfg.NewProfiler()
	if err := profiler.Start(); err != nil {
		pub.Close()
		<-drained

		return fmt.Errorf("starting profiler: %w", err)
	}

	defer func() {
		if err := profiler.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "stopping profiler: %v\n", err)
		}
	}()

	runErr := fn()

	pub.Close()
	<-drained

	if n, m := warnings.Load(), errs.Load(); n+m > 0 {
		fmt.Fprintf(os.Stderr, "hocon: %d warning(s), %d error(s) logged\n", n, m)
	}

	return runErr
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(v)
}

func splitDotted(s string) []string {
	var segs []string

	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			segs = append(segs, s[start:i])
			start = i + 1
		}
	}

	return append(segs, s[start:])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
