package gonext

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saadjs/gonext/internal/app"
	"github.com/saadjs/gonext/internal/scheduler"
	"github.com/saadjs/gonext/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and run the event notifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := a.Config.Listen
			if serveListen != "" {
				addr = serveListen
			}

			sched := scheduler.New(a.Log)
			if err := a.Events.StartNotifier(ctx, sched, a.Config.PollInterval); err != nil {
				return err
			}
			sched.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := sched.Stop(stopCtx); err != nil {
					a.Log.Warn("scheduler did not stop cleanly", zap.Error(err))
				}
			}()

			h := server.New(a.Log, server.Deps{
				Places:    a.Places,
				Favorites: a.Favorites,
				Events:    a.Events,
				Sessions:  a.Sessions,
				Home:      a.Home(),
			})
			return server.Serve(ctx, addr, h.Routes(), a.Log, func(bound net.Addr) {
				fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", bound)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default: config listen)")
}
