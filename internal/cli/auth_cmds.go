package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"studypath/internal/client"
	"studypath/internal/config"
	"studypath/internal/domain"
	"studypath/internal/util"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password, provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email/password or a social provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if provider != "" {
				return socialLogin(ctx, a, provider)
			}
			if email == "" || password == "" {
				return fmt.Errorf("either --provider or both --email and --password are required")
			}

			user, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.auth.Login(ctx, user); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&provider, "provider", "", "social provider (google|github)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.client.Register(ctx, name, email, password)
			if err != nil {
				return err
			}
			if err := a.auth.Login(ctx, user); err != nil {
				return err
			}
			fmt.Printf("Account created; signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			a.auth.Logout(ctx)
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			user := a.auth.CurrentUser()
			if user == nil {
				fmt.Println("Not signed in")
				return nil
			}
			fmt.Printf("%s <%s> via %s\n", user.Name, user.Email, user.Provider)
			return nil
		},
	}
}

// socialLogin runs the authorization-code flow: it serves the configured
// redirect URL on localhost, opens the consent URL, and exchanges the
// returned code for a session.
func socialLogin(ctx context.Context, a *app, provider string) error {
	flow, redirectURL, err := oauthFlow(a.cfg, provider)
	if err != nil {
		return err
	}

	state := util.NewULID()
	callback, shutdown, err := serveCallback(redirectURL)
	if err != nil {
		return err
	}
	defer shutdown()

	fmt.Println("Open this URL in your browser to continue:")
	fmt.Println(flow.LoginURL(state))

	var result callbackResult
	select {
	case result = <-callback:
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timed out waiting for the %s callback", provider)
	case <-ctx.Done():
		return ctx.Err()
	}

	user, err := flow.HandleCallback(ctx, result.code, result.state, state)
	if err != nil {
		return err
	}
	if err := a.auth.SocialLogin(ctx, user); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s <%s> via %s\n", user.Name, user.Email, user.Provider)
	return nil
}

func oauthFlow(cfg *config.Config, provider string) (*client.OAuthFlow, string, error) {
	switch domain.Provider(provider) {
	case domain.ProviderGoogle:
		if cfg.OAuth.Google.ClientID == "" {
			return nil, "", errors.New("oauth.google is not configured")
		}
		return client.NewGoogleFlow(cfg.OAuth.Google), cfg.OAuth.Google.RedirectURL, nil
	case domain.ProviderGitHub:
		if cfg.OAuth.GitHub.ClientID == "" {
			return nil, "", errors.New("oauth.github is not configured")
		}
		return client.NewGitHubFlow(cfg.OAuth.GitHub), cfg.OAuth.GitHub.RedirectURL, nil
	default:
		return nil, "", fmt.Errorf("unsupported provider %q (google|github)", provider)
	}
}

type callbackResult struct {
	code  string
	state string
}

// serveCallback listens on the redirect URL's host/port and delivers the
// first code+state pair it receives.
func serveCallback(redirectURL string) (<-chan callbackResult, func(), error) {
	parsed, err := url.Parse(redirectURL)
	if err != nil || parsed.Host == "" {
		return nil, nil, fmt.Errorf("invalid oauth redirect_url %q", redirectURL)
	}

	listener, err := net.Listen("tcp", parsed.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", parsed.Host, err)
	}

	path := parsed.Path
	if path == "" {
		path = "/"
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		select {
		case results <- callbackResult{
			code:  r.URL.Query().Get("code"),
			state: r.URL.Query().Get("state"),
		}:
		default:
		}
		fmt.Fprintln(w, "Signed in. You can close this tab and return to the terminal.")
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	return results, shutdown, nil
}
