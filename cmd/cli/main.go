package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/cofit/cofitcli/internal/buildinfo"
	"github.com/cofit/cofitcli/internal/client/api"
	"github.com/cofit/cofitcli/internal/client/cli"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/config"
	"github.com/cofit/cofitcli/internal/client/gateway"
	"github.com/cofit/cofitcli/internal/client/repositories/kv"
	"github.com/cofit/cofitcli/internal/client/session"
	"github.com/cofit/cofitcli/internal/client/upload"
	"github.com/cofit/cofitcli/internal/cryptox"
	"github.com/cofit/cofitcli/internal/filex"
	"github.com/cofit/cofitcli/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return err
	}
	repos, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	defer repos.Close()

	var store kv.Repository = repos.KV
	if cfg.StoreSecret != "" {
		sealed, err := cryptox.NewSealedRepository(ctx, repos.KV, []byte(cfg.StoreSecret))
		if err != nil {
			return fmt.Errorf("error opening session store: %w", err)
		}
		defer sealed.Close()
		store = sealed
	}

	gw := gateway.New(http.DefaultTransport, logger)
	httpClient := gw.Client()
	httpClient.Timeout = cfg.RequestTimeout

	apiClient, err := api.New(cfg.APIURL, httpClient, cfg.AppType, logger)
	if err != nil {
		return err
	}

	sessions := session.NewStore(store, apiClient, logger)
	gw.Bind(sessions)
	sessions.Rehydrate(ctx)

	policy := upload.RetryPolicy{MaxAttempts: cfg.UploadMaxAttempts, BaseDelay: cfg.UploadBaseDelay}

	var broker upload.Broker
	switch cfg.TicketSource {
	case config.TicketSourceS3:
		broker = upload.NewS3Broker(upload.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, logger)
	case config.TicketSourceAPI, "":
		broker = upload.NewAPIBroker(apiClient, logger)
	default:
		return fmt.Errorf("unknown ticket source %q", cfg.TicketSource)
	}

	// signed URLs are fetched with a plain client so no bearer token leaks
	// to the storage host
	transfer := upload.NewHTTPTransferer(&http.Client{}, logger)

	engine := upload.NewEngine(
		upload.NewRetryBroker(broker, policy, logger),
		upload.NewResolver(repos.Media, logger),
		upload.NewRetryTransferer(transfer, policy, logger),
		logger,
	)

	app := cli.NewApp(cli.Deps{
		Session:  sessions,
		Library:  upload.NewLibrary(repos.Media, logger),
		Uploader: engine,
		API:      apiClient,
		Logger:   logger,
	}, in, out)

	app.Run(ctx)
	return nil
}
