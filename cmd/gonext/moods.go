package gonext

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/service"
)

var moodsJSON bool

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List moods and the place categories they search",
	RunE: func(cmd *cobra.Command, args []string) error {
		moods := service.Moods()
		if moodsJSON {
			return printJSON(cmd, moods)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ID\tLABEL\tSORT\tCATEGORIES")
		for _, m := range moods {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", m.ID, m.Label, m.SortBy, m.Categories)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moodsCmd)
	moodsCmd.Flags().BoolVar(&moodsJSON, "json", false, "Output JSON")
}
