package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meterc/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the embedded schema catalogue",
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known $schema identifiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := schema.NewRegistry()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, id := range reg.Known() {
			family, version, _ := schema.ParseID(id)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", family, version, id)
		}
		return tw.Flush()
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <id|metrics|pings|tags>",
	Short: "Print one embedded schema",
	Long:  "Print an embedded schema by identifier, or the newest schema of a family.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := schema.NewRegistry()
		if err != nil {
			return err
		}
		id := args[0]
		for _, f := range []schema.Family{schema.FamilyMetrics, schema.FamilyPings, schema.FamilyTags} {
			if id == f.String() {
				id, _ = reg.IDFor(f)
				break
			}
		}
		src, err := reg.Source(id)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(src)
		return err
	},
}

func init() {
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
}
