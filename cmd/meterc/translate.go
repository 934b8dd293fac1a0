package main

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"

	"meterc/internal/driver"
	"meterc/internal/generate"
	"meterc/internal/pipeline"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] [inputs...]",
	Short: "Validate, lint and render definition files with a generator",
	Long: `Validate and lint the given definition files (or directories), then render
the merged definitions with the selected generator into the output directory.
Nothing is written when validation or lint reports errors.`,
	RunE: runTranslate,
}

func init() {
	addParserFlags(translateCmd)
	translateCmd.Flags().StringP("output-format", "f", "", "generator to use (json|msgpack|cbor); default from meterc.toml or json")
	translateCmd.Flags().StringP("output", "o", "", "output directory")
	translateCmd.Flags().StringArrayP("option", "s", nil, "generator option as key=value (repeatable)")
	translateCmd.Flags().StringSlice("clear-pattern", nil, "glob of stale files to remove from the output directory")
	translateCmd.Flags().String("ui", "off", "progress UI mode (auto|on|off)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(cmd, args)
	if err != nil {
		return err
	}
	defer env.close()

	var out struct {
		format, dir string
		clear       []string
		options     generate.Options
	}
	out.options = generate.Options{}
	if env.manifest != nil {
		o := env.manifest.Config.Output
		out.format, out.dir, out.clear = o.Format, o.Dir, o.ClearPatterns
		maps.Copy(out.options, o.Options)
	}
	if f, _ := cmd.Flags().GetString("output-format"); f != "" {
		out.format = f
	}
	if out.format == "" {
		out.format = "json"
	}
	if d, _ := cmd.Flags().GetString("output"); d != "" {
		out.dir = d
	}
	if out.dir == "" {
		return fmt.Errorf("no output directory: pass --output or set [output].dir in meterc.toml")
	}
	if cmd.Flags().Changed("clear-pattern") {
		out.clear, _ = cmd.Flags().GetStringSlice("clear-pattern")
	}
	raw, _ := cmd.Flags().GetStringArray("option")
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return fmt.Errorf("invalid --option %q (expected key=value)", kv)
		}
		out.options[k] = v
	}

	topts := driver.TranslateOptions{
		Format:        out.format,
		OutDir:        out.dir,
		Options:       out.options,
		ClearPatterns: out.clear,
	}
	run := func(ctx context.Context, opts driver.Options) (*driver.Result, error) {
		return driver.Translate(ctx, opts, topts)
	}

	uiValue, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	var res *driver.Result
	if shouldUseTUI(mode) && !env.quiet && env.output != "json" {
		res, err = runWithUI(cmd.Context(), "translate", env.opts, pipeline.StageWrite, run)
	} else {
		res, err = run(cmd.Context(), env.opts)
	}
	if rerr := env.report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, err, true); rerr != nil {
		return rerr
	}
	if !env.quiet && env.output != "json" && res.Output != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d file(s) to %s\n", len(res.Output.Written), out.dir)
	}
	return nil
}
