package gonext

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/app"
	"github.com/saadjs/gonext/internal/geo"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Manage favorite places",
}

var (
	favoriteAddFlags placeSearchFlags
	favoriteListJSON bool
)

var favoriteAddCmd = &cobra.Command{
	Use:   "add <place-id>",
	Short: "Save a place from a mood search as a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if a.Favorites.IsFavorite(id) {
				fmt.Fprintf(cmd.OutOrStdout(), "Already a favorite: %s\n", id)
				return nil
			}
			places, err := favoriteAddFlags.find(ctx, cmd, a)
			if err != nil {
				return err
			}
			if places == nil {
				return fmt.Errorf("no location: pass --lat/--lon or set home in %s", a.ConfigPath)
			}
			place, ok := a.Places.CachedPlace(id)
			if !ok {
				return fmt.Errorf("place %q not found near this location for mood %q", id, favoriteAddFlags.mood)
			}
			if _, err := a.Favorites.AddFavorite(ctx, place, favoriteAddFlags.mood); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved favorite %s (%s)\n", place.Name, place.ID)
			return nil
		})
	},
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite places",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			favs := a.Favorites.Favorites()
			if favoriteListJSON {
				return printJSON(cmd, favs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tMOOD\tDISTANCE\tRATING\tSAVED")
			for _, f := range favs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%s\n",
					f.ID, oneLine(f.Name), f.Mood, geo.FormatDistance(f.Distance), formatRating(f.Rating), f.SavedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove <place-id>",
	Short: "Remove a favorite place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			removed, err := a.Favorites.RemoveFavorite(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Not a favorite: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed favorite %s\n", args[0])
			return nil
		})
	},
}

var favoriteCheckCmd = &cobra.Command{
	Use:   "check <place-id>",
	Short: "Report whether a place is a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.Favorites.IsFavorite(strings.TrimSpace(args[0])))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
	favoriteCmd.AddCommand(favoriteAddCmd, favoriteListCmd, favoriteRemoveCmd, favoriteCheckCmd)
	favoriteAddFlags.register(favoriteAddCmd)
	favoriteListCmd.Flags().BoolVar(&favoriteListJSON, "json", false, "Output JSON")
}
