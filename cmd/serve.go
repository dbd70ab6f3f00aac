package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jSherz/break-glass-access/internal/api"
	"github.com/jSherz/break-glass-access/internal/audit"
	"github.com/jSherz/break-glass-access/internal/config"
	"github.com/jSherz/break-glass-access/internal/identity"
	"github.com/jSherz/break-glass-access/internal/secrets"
	"github.com/jSherz/break-glass-access/internal/service"
	"github.com/jSherz/break-glass-access/internal/storage"
	"github.com/jSherz/break-glass-access/internal/workflow"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the break-glass webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Workflow.Validate(); err != nil {
			return fmt.Errorf("validating workflow config: %w", err)
		}
		if cfg.SSO.IdentityStoreID == "" {
			return fmt.Errorf("validating sso config: identity_store_id is required")
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}

		auditor, err := audit.Build(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			_ = auditor.Close()
		}()

		log.Info().Msg("Initializing mapping store...")
		store, err := storage.Build(cfg.Storage, dynamodb.NewFromConfig(awsCfg))
		if err != nil {
			return fmt.Errorf("building mapping store: %w", err)
		}

		requestService := service.NewRequestService(
			store,
			identity.NewSSOUserLookup(identitystore.NewFromConfig(awsCfg), cfg.SSO.IdentityStoreID),
			workflow.NewDispatcher(sfn.NewFromConfig(awsCfg), cfg.Workflow.StateMachineArn),
			auditor,
		)

		srv := api.NewServer(
			secrets.NewCachedParameterStore(ssm.NewFromConfig(awsCfg)),
			cfg.Secrets.SigningSecretParameter,
			requestService,
		)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}
