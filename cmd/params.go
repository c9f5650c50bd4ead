package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/tender-cli/internal/model"
)

var (
	paramsOrg       string
	paramsYAML      bool
	paramsEffective bool
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Manage an organization's search parameters",
}

var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the search parameters",
	Long:  "Prints the stored search parameters, or with --effective the parameters merged with the profile classifiers and keyword file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		var params model.SearchParameters
		if paramsEffective {
			params, err = env.Params.Effective(paramsOrg)
		} else {
			params, err = env.Params.Load(paramsOrg)
		}
		if err != nil {
			return err
		}

		if paramsYAML {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(params); err != nil {
				return eris.Wrap(err, "encode yaml")
			}
			return enc.Close()
		}
		return printJSON(cmd.OutOrStdout(), params)
	},
}

var paramsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default search parameters if none exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		params, err := env.Params.Load(paramsOrg)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), params)
	},
}

func init() {
	paramsCmd.PersistentFlags().StringVar(&paramsOrg, "org", "", "organization INN")
	_ = paramsCmd.MarkPersistentFlagRequired("org")
	paramsShowCmd.Flags().BoolVar(&paramsYAML, "yaml", false, "print as YAML")
	paramsShowCmd.Flags().BoolVar(&paramsEffective, "effective", false, "merge profile classifiers and keyword rules")

	paramsCmd.AddCommand(paramsShowCmd, paramsInitCmd)
	rootCmd.AddCommand(paramsCmd)
}
