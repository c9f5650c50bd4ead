package main

import (
	"github.com/spf13/cobra"
)

var ingestOrg string

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest tender documents into an organization registry",
	Long:  "Extracts text, fields and product candidates from the given files and archives, stores the artifacts and appends a manual tender to the registry. Without --org the launcher's active organization is used.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Ingest(ctx, ingestOrg, args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOrg, "org", "", "organization INN (default: active organization)")
	rootCmd.AddCommand(ingestCmd)
}
