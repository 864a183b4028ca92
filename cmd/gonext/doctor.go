package gonext

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/service"
	"github.com/saadjs/gonext/internal/storage/sqlite"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check stored state for corruption",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			store := sqlite.New(sqldb)
			report, err := service.RunDoctor(commandContext(cmd), store, doctorFix)
			if err != nil {
				return err
			}
			for _, k := range report.Keys {
				if k.Detail != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", k.Key, k.Status, k.Detail)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k.Key, k.Status)
			}
			if report.Corrupt() > 0 {
				return fmt.Errorf("doctor found %d corrupt key(s); rerun with --fix", report.Corrupt())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Restore corrupt keys from history or reset them")
}
