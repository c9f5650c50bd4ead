package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/registry"
)

var (
	registryOrg      string
	registryXLSXPath string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect an organization's tender registry",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the registry as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.Registry.List(ctx, registryOrg)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), records)
	},
}

var registryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the registry to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.Registry.List(ctx, registryOrg)
		if err != nil {
			return err
		}
		if err := registry.ExportXLSX(records, registryXLSXPath); err != nil {
			return err
		}

		zap.L().Info("registry exported",
			zap.String("inn", registryOrg),
			zap.Int("records", len(records)),
			zap.String("path", registryXLSXPath),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d tenders to %s\n", len(records), registryXLSXPath)
		return nil
	},
}

func init() {
	registryCmd.PersistentFlags().StringVar(&registryOrg, "org", "", "organization INN")
	_ = registryCmd.MarkPersistentFlagRequired("org")
	registryExportCmd.Flags().StringVar(&registryXLSXPath, "xlsx", "registry.xlsx", "output workbook path")

	registryCmd.AddCommand(registryListCmd, registryExportCmd)
	rootCmd.AddCommand(registryCmd)
}
