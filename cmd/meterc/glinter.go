package main

import (
	"github.com/spf13/cobra"

	"meterc/internal/driver"
)

var glinterCmd = &cobra.Command{
	Use:   "glinter [flags] [inputs...]",
	Short: "Validate and lint definition files",
	Long: `Validate the given definition files and run the lint checks over the merged
definitions. Error nits fail the run, warning nits do not.`,
	RunE: runGlinter,
}

func init() {
	addParserFlags(glinterCmd)
}

func runGlinter(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(cmd, args)
	if err != nil {
		return err
	}
	defer env.close()

	res, err := driver.Glinter(cmd.Context(), env.opts)
	return env.report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, err, true)
}
