package gonext

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/app"
	"github.com/saadjs/gonext/internal/geo"
	"github.com/saadjs/gonext/internal/model"
)

const searchTimeout = 15 * time.Second

type placeSearchFlags struct {
	mood        string
	lat         float64
	lon         float64
	maxDistance int
	minRating   float64
	openNow     bool
	sortBy      string
}

func (f *placeSearchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mood, "mood", "", "Mood id (work, date, quickbite, budget, explore)")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Latitude (default: config home)")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "Longitude (default: config home)")
	cmd.Flags().IntVar(&f.maxDistance, "max-distance", 0, "Max distance in meters, also the search radius (default: config default_radius)")
	cmd.Flags().Float64Var(&f.minRating, "min-rating", 0, "Minimum rating 0-5 in steps of 0.5")
	cmd.Flags().BoolVar(&f.openNow, "open-now", false, "Only places with opening hours")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort by distance or rating (default: mood's order)")
	_ = cmd.MarkFlagRequired("mood")
}

func (f *placeSearchFlags) filters(a *app.App) model.FilterConfig {
	filters := model.DefaultFilters()
	filters.MaxDistance = a.Config.DefaultRadius
	if f.maxDistance > 0 {
		filters.MaxDistance = f.maxDistance
	}
	filters.MinRating = f.minRating
	filters.OpenNow = f.openNow
	filters.SortBy = strings.TrimSpace(f.sortBy)
	return filters
}

// find runs the search bounded by searchTimeout. A nil slice with no error
// means no location was available.
func (f *placeSearchFlags) find(ctx context.Context, cmd *cobra.Command, a *app.App) ([]model.Place, error) {
	at, err := resolveCoords(cmd, a, f.lat, f.lon)
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()
	return a.Places.Find(ctx, f.mood, at, f.filters(a))
}

var (
	placesFlags placeSearchFlags
	placesJSON  bool
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Find nearby places for a mood",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			places, err := placesFlags.find(ctx, cmd, a)
			if err != nil {
				return err
			}
			if places == nil {
				return fmt.Errorf("no location: pass --lat/--lon or set home in %s", a.ConfigPath)
			}
			if placesJSON {
				return printJSON(cmd, places)
			}
			if len(places) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No places match these filters.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tDISTANCE\tRATING\tSTATUS\tFAV\tADDRESS")
			for _, p := range places {
				fav := ""
				if a.Favorites.IsFavorite(p.ID) {
					fav = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, oneLine(p.Name), geo.FormatDistance(p.Distance), formatRating(p.Rating), formatOpen(p.IsOpen), fav, oneLine(p.Address))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(placesCmd)
	placesFlags.register(placesCmd)
	placesCmd.Flags().BoolVar(&placesJSON, "json", false, "Output JSON")
}
