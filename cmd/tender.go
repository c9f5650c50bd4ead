package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tenderOrg string

var tenderCmd = &cobra.Command{
	Use:   "tender",
	Short: "Read stored tender artifacts",
}

var tenderProductsCmd = &cobra.Command{
	Use:   "products <number>",
	Short: "Print the product candidates of a tender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		candidates, err := env.Layout.ProductCandidates(tenderOrg, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), candidates)
	},
}

var tenderTextCmd = &cobra.Command{
	Use:   "text <number>",
	Short: "Print the extracted text of a tender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		text, err := env.Layout.ExtractedText(tenderOrg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	tenderCmd.PersistentFlags().StringVar(&tenderOrg, "org", "", "organization INN")
	_ = tenderCmd.MarkPersistentFlagRequired("org")

	tenderCmd.AddCommand(tenderProductsCmd, tenderTextCmd)
	rootCmd.AddCommand(tenderCmd)
}
