package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"meterc/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [inputs...]",
	Short: "Validate definition files without linting",
	RunE:  runCheck,
}

func init() {
	addParserFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	env, err := setupEnv(cmd, args)
	if err != nil {
		return err
	}
	defer env.close()

	res, err := driver.Check(cmd.Context(), env.opts)
	if rerr := env.report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, err, false); rerr != nil {
		return rerr
	}
	if !env.quiet && env.output != "json" {
		nm, np, nt := res.Parse.Tree.Len()
		fmt.Fprintf(cmd.ErrOrStderr(), "ok: %d metric(s), %d ping(s), %d tag(s)\n", nm, np, nt)
	}
	return nil
}
