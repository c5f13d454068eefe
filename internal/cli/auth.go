package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/session"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in and out of the blog API",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the configured identity provider",
	Long: `Sign in with the identity provider named by auth.provider.

google runs the device flow and prints a URL and code to enter in a browser,
ed25519 signs a server challenge with auth.ed25519.private_key_path, and
token asks for a credential to paste. The session token is kept in the
credential store until you sign out or it expires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			if err := a.waitReady(ctx); err != nil {
				return err
			}
			if s := a.Sessions.Current(); s != nil {
				printOK(a.Out, "Already signed in as %s", s.User.Label())
				return nil
			}

			s, err := a.Sessions.Login(ctx)
			if err != nil {
				printNotice(a.Out, err)
				return err
			}
			printOK(a.Out, "Signed in as %s", s.User.Label())
			if a.Config.Auth.RequireAdmin && !s.User.IsAdmin {
				fmt.Fprintln(a.Out, noticeStyle.Render("This account is not an admin; post commands will be refused."))
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			if err := a.Sessions.Logout(ctx); err != nil {
				return err
			}
			printOK(a.Out, "Signed out")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the stored session is still valid",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), func(ctx context.Context, a *App) error {
			if err := a.waitReady(ctx); err != nil {
				return err
			}
			printStatus(a, a.Sessions.State())
			return nil
		})
	},
}

func printStatus(a *App, st session.State) {
	printField(a.Out, "Server", a.Config.Server.BaseURL)
	printField(a.Out, "Provider", a.Config.Auth.Provider)
	printField(a.Out, "Status", st.Status.String())
	if st.Session == nil {
		return
	}
	u := st.Session.User
	printField(a.Out, "User", u.Label())
	printField(a.Out, "Admin", fmt.Sprintf("%t", u.IsAdmin))
}
