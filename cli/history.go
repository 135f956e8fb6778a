package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ByLCY/lessonplan/exportlog"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var params exportlog.ListParams
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return errors.New("no history database configured")
			}
			store, err := exportlog.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []exportlog.Entry{}
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&params.Limit, "limit", "l", 20, "Max results")
	cmd.Flags().StringVar(&params.Format, "format", "", "Filter by format")
	cmd.Flags().BoolVar(&params.FailedOnly, "failed", false, "Only failed exports")
	return cmd
}
