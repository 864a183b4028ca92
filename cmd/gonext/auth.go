package gonext

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/gonext/internal/app"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the local account session",
}

var (
	authName     string
	authEmail    string
	authPassword string
)

var authSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a local account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			sess, err := a.Sessions.Signup(ctx, authName, authEmail, authPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s <%s>\n", sess.Name, sess.Email)
			return nil
		})
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a local account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			sess, err := a.Sessions.Login(ctx, authEmail, authPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", sess.Name, sess.Email)
			return nil
		})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			sess := a.Sessions.Current()
			if sess == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", sess.Name, sess.Email)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSignupCmd, authLoginCmd, authLogoutCmd, authWhoamiCmd)

	authSignupCmd.Flags().StringVar(&authName, "name", "", "Display name")
	for _, c := range []*cobra.Command{authSignupCmd, authLoginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Email address")
		c.Flags().StringVar(&authPassword, "password", "", "Password")
	}
}
