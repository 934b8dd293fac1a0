package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"meterc/internal/diag"
	"meterc/internal/prof"
	"meterc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "meterc",
	Short: "Telemetry definition compiler",
	Long: `meterc validates metrics, pings and tags definition files, lints them
and renders the merged definitions with a generator`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: startProfiling,
}

// profSession is stopped by main after the command returns, error or not.
var profSession *prof.Session

// errFailed signals a run that already reported its problems and only needs
// a non-zero exit status.
var errFailed = errors.New("run failed")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(glinterCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to collect (0 = unlimited)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); default from meterc.toml or warn")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file as well")
	rootCmd.PersistentFlags().String("config", "", "path to meterc.toml (default: discovered from the working directory)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

func startProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpuprofile")
	opts.Mem, _ = flags.GetString("memprofile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	if !opts.Enabled() {
		return nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profSession = s
	return nil
}

// main executes the root command and maps errors onto the exit status.
func main() {
	err := rootCmd.Execute()
	if stopErr := profSession.Stop(); stopErr != nil {
		fmt.Fprintf(os.Stderr, "meterc: %v\n", stopErr)
	}
	if err != nil {
		if !errors.Is(err, errFailed) {
			printError(err)
		}
		os.Exit(1)
	}
}

func printError(err error) {
	if fe, ok := diag.AsFatal(err); ok {
		d := fe.Diagnostic()
		if d.Path == "" {
			d.Path = "meterc"
		}
		fmt.Fprintln(os.Stderr, d.String())
		return
	}
	fmt.Fprintf(os.Stderr, "meterc: %v\n", err)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
