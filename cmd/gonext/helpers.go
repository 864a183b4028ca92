package gonext

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/app"
	"github.com/saadjs/gonext/internal/db"
	"github.com/saadjs/gonext/internal/geo"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

// withApp opens the full application: config, database and restored stores.
func withApp(cmd *cobra.Command, run func(context.Context, *app.App) error) error {
	ctx := commandContext(cmd)
	a, err := app.Open(ctx, app.Options{DBPath: dbPath, ConfigPath: configPath, APIKey: apiKeyFlag})
	if err != nil {
		return err
	}
	defer a.Close()
	return run(ctx, a)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

// resolveCoords prefers --lat/--lon and falls back to the configured home.
// Nil means no location is known.
func resolveCoords(cmd *cobra.Command, a *app.App, lat, lon float64) (*geo.Point, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if latSet != lonSet {
		return nil, fmt.Errorf("--lat and --lon must be set together")
	}
	if !latSet {
		return a.Home(), nil
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("--lat must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("--lon must be between -180 and 180")
	}
	return &geo.Point{Lat: lat, Lon: lon}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(*r, 'f', 1, 64)
}

func formatOpen(open *bool) string {
	switch {
	case open == nil:
		return "?"
	case *open:
		return "open"
	default:
		return "closed"
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
