package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ByLCY/lessonplan/profile"
	"github.com/ByLCY/lessonplan/record"
	"github.com/ByLCY/lessonplan/resolver"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve FILE",
		Short: "Print the normalized document and labels of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := record.DecodeFile(args[0])
			if err != nil {
				return err
			}
			doc, labels := resolver.Resolve(raw)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"document": doc,
				"labels":   labels,
			})
		},
	}
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List built-in layout profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range profile.Builtin() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
