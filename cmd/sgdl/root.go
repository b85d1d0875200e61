// Command sgdl is a terminal client for the SGDL backend. It exercises the
// same session core the web client uses: durable token storage, transparent
// renewal and perfil-gated access.
package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sgdl/go-sgdl-client/auth"
	"github.com/sgdl/go-sgdl-client/demandas"
	"github.com/sgdl/go-sgdl-client/gateway"
	"github.com/sgdl/go-sgdl-client/internal/config"
	"github.com/sgdl/go-sgdl-client/sessions"
)

// app bundles the constructed SDK components for the subcommands.
type app struct {
	cfg      config.Config
	session  *sessions.Session
	authSvc  *auth.Service
	demandas *demandas.Client
	log      zerolog.Logger
}

func newRootCommand(log zerolog.Logger) *cobra.Command {
	var (
		configPath string
		verbose    bool
		a          app
	)

	root := &cobra.Command{
		Use:           "sgdl",
		Short:         "Terminal client for the SGDL demandas system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				log = log.Level(zerolog.InfoLevel)
			}
			built, err := buildApp(configPath, log)
			if err != nil {
				return err
			}
			a = *built
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCommand(&a),
		newLogoutCommand(&a),
		newWhoamiCommand(&a),
		newPerfilCommand(&a),
		newChangePasswordCommand(&a),
		newDemandasCommand(&a),
		newSecretariasCommand(&a),
		newServicosCommand(&a),
	)
	return root
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sgdl.yaml"
	}
	return filepath.Join(home, ".sgdl", "config.yaml")
}

func buildApp(configPath string, log zerolog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "[buildApp] config.Load")
	}

	var storeOptions []sessions.FileStoreOption
	if passphrase := cfg.GetStatePassphrase(); passphrase != "" {
		storeOptions = append(storeOptions, sessions.WithEncryptionPassphrase(passphrase))
	}
	store, durable := sessions.OpenStore(cfg.GetStateFolder(), storeOptions...)
	if !durable {
		log.Warn().Str("folder", cfg.GetStateFolder()).Msg("state folder unavailable, session will not survive restarts")
	}

	session := sessions.New(store)
	defer session.FinishLoading()

	// A terminal has no route history to push to; a forced navigation to
	// the login entry point becomes a hint to run `sgdl login`.
	navigator := gateway.NavigatorFunc(func(path string) {
		log.Warn().Str("target", path).Msg("session ended, run `sgdl login`")
	})

	gw, err := gateway.New(cfg.GetBaseURL(), session,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		gateway.WithNavigator(navigator),
		gateway.WithLogger(log.With().Str("component", "gateway").Logger()),
		gateway.WithLoginPath(cfg.GetLoginPath()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[buildApp] gateway.New")
	}

	authSvc, err := auth.NewService(session, gw,
		auth.WithNavigator(navigator),
		auth.WithLogger(log.With().Str("component", "auth").Logger()),
		auth.WithLoginPath(cfg.GetLoginPath()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[buildApp] auth.NewService")
	}

	demandasClient, err := demandas.NewClient(gw)
	if err != nil {
		return nil, errors.Wrap(err, "[buildApp] demandas.NewClient")
	}

	return &app{
		cfg:      cfg,
		session:  session,
		authSvc:  authSvc,
		demandas: demandasClient,
		log:      log,
	}, nil
}
