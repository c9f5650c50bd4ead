package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	monitorOrg string
	monitorAll bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Match incoming tenders against search parameters",
	Long:  "Filters each organization's incoming tenders by deadline, region, category, stage, platform and keywords, and appends the matches to its registry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if monitorOrg == "" && !monitorAll {
			return eris.New("monitor: one of --org or --all is required")
		}

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		inns := []string{monitorOrg}
		if monitorAll {
			inns, err = env.Layout.Organizations()
			if err != nil {
				return err
			}
			zap.L().Info("monitoring organizations", zap.Int("count", len(inns)))
		}

		results, err := env.Monitor.RunAll(ctx, inns, cfg.Monitor.MaxConcurrentOrgs)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), results)
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorOrg, "org", "", "organization INN")
	monitorCmd.Flags().BoolVar(&monitorAll, "all", false, "monitor every organization under the storage root")
	monitorCmd.MarkFlagsMutuallyExclusive("org", "all")
	rootCmd.AddCommand(monitorCmd)
}
