package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"meterc/internal/driver"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [inputs...]",
	Short: "Print the merged, transformed definitions",
	Long: `Print the definitions exactly as generators receive them: merged across all
inputs, with default pings filled in, rates linked and expiry applied.
Diagnostics go to stderr; nothing is printed on stdout when they contain errors.`,
	RunE: runDump,
}

func init() {
	addParserFlags(dumpCmd)
	dumpCmd.Flags().String("as", "yaml", "dump encoding (json|yaml)")
}

func runDump(cmd *cobra.Command, args []string) error {
	as, _ := cmd.Flags().GetString("as")
	if !slices.Contains(driver.DumpFormats, as) {
		return fmt.Errorf("unknown dump encoding %q (expected one of %v)", as, driver.DumpFormats)
	}
	env, err := setupEnv(cmd, args)
	if err != nil {
		return err
	}
	defer env.close()

	res, err := driver.Dump(cmd.Context(), env.opts)
	// диагностики в stderr при любом формате, stdout занят деревом
	if rerr := env.report(cmd.ErrOrStderr(), cmd.ErrOrStderr(), res, err, false); rerr != nil {
		return rerr
	}
	return driver.EncodeTree(cmd.OutOrStdout(), res.Parse.Tree, as)
}
