package gonext

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local gonext database and config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := config.Load(cfgPath); err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			path, err := resolveDBPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized gonext database at %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", cfgPath)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
