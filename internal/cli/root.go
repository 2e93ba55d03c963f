package cli

import (
	"fmt"

	"catalog/internal/config"

	"github.com/spf13/cobra"
)

var (
	version = config.ServiceVersion
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Inventory catalog service",
		Long:          "catalog stores products and adjusts their stock levels over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s (%s)\n", version, commit)
		},
	}
}

// .env → 環境変数の順で設定を読む
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(".env", "../.env"); err != nil {
		return config.Config{}, err
	}
	return config.Load()
}
