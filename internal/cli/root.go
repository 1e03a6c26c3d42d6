// Package cli wires the config, store, REST client, and state machines
// into the studypath command tree.
package cli

import (
	"context"
	"fmt"

	"studypath/internal/auth"
	"studypath/internal/catalog"
	"studypath/internal/client"
	"studypath/internal/config"
	"studypath/internal/logger"
	"studypath/internal/store"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "studypath",
		Short:         "Client for the studypath learning platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newOnboardCmd())
	cmd.AddCommand(newSubjectsCmd())
	cmd.AddCommand(newChaptersCmd())
	cmd.AddCommand(newQuizzesCmd())
	cmd.AddCommand(newTakeCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// app bundles the wired client-side components one command invocation
// uses.
type app struct {
	cfg    *config.Config
	store  *store.SQLStore
	client *client.Client
	auth   *auth.Manager
	loader *catalog.Loader
}

// newApp loads config, opens the store, wires the REST client to the
// auth manager, and restores any persisted session.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	authMgr := auth.NewManager(store.NewCredentialStore(st), nil)
	api := client.New(cfg.API, authMgr, client.WithAuthExpiredHook(func() {
		authMgr.ForceLogout(context.Background())
	}))
	authMgr.AttachSessionAPI(api)

	if err := authMgr.CheckAuth(ctx); err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  st,
		client: api,
		auth:   authMgr,
		loader: catalog.NewLoader(api),
	}, nil
}

func (a *app) Close() error {
	defer logger.Sync()
	return a.store.Close()
}

func (a *app) requireAuth() error {
	if !a.auth.IsAuthenticated() {
		return fmt.Errorf("not signed in; run `studypath login` first")
	}
	return nil
}
