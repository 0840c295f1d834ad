package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mindfixhq/mindfix/internal/auth"
	"github.com/mindfixhq/mindfix/internal/billing"
	"github.com/mindfixhq/mindfix/internal/config"
	"github.com/mindfixhq/mindfix/internal/db"
	"github.com/mindfixhq/mindfix/internal/entitlement"
	"github.com/mindfixhq/mindfix/internal/handler"
	"github.com/mindfixhq/mindfix/internal/httpserver"
	"github.com/mindfixhq/mindfix/internal/logger"
	"github.com/mindfixhq/mindfix/internal/pg"
	"github.com/mindfixhq/mindfix/internal/plan"
	"github.com/mindfixhq/mindfix/internal/redisconn"
	"github.com/mindfixhq/mindfix/internal/session"
	"github.com/mindfixhq/mindfix/internal/user"
)

func main() {
	ctx := context.Background()

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.New(logCfg, os.Stdout)
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		pgCfg      pg.Config
		redisCfg   redisconn.Config
		httpCfg    httpserver.Config
		sessionCfg session.Config
		authCfg    auth.Config
		billingCfg billing.Config
		stripeCfg  billing.StripeConfig
		mailerCfg  auth.MailerConfig
	)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&billingCfg)
	config.MustLoad(&stripeCfg)
	config.MustLoad(&mailerCfg)

	checks := make(map[string]handler.Healthcheck)

	// User record store: Postgres when configured, otherwise the app runs in
	// local-only mode and the entitlement resolver fails open.
	var (
		userStore    user.Store
		credStorage  auth.CredentialStorage
		haveRecordDB bool
	)
	if pgCfg.Configured() {
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, db.Migrations(), log); err != nil {
			return err
		}

		userStore = user.NewPostgresStore(pool)
		credStorage = auth.NewPostgresCredentialStorage(pool)
		checks["postgres"] = pg.Healthcheck(pool)
		haveRecordDB = true
	} else {
		log.WarnContext(ctx, "no database configured, running in local-only mode")
		userStore = user.NewMemoryStore()
		credStorage = auth.NewMemoryCredentialStorage()
	}

	// Session store: Redis when configured, in-process otherwise.
	var sessionStore session.Store
	if redisCfg.Configured() {
		client, err := redisconn.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		sessionStore = session.NewRedisStore(client, "mindfix")
		checks["redis"] = redisconn.Healthcheck(client)
	} else {
		log.WarnContext(ctx, "no redis configured, sessions are in-process only")
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, sessionCfg)

	var mailer auth.Mailer
	if mailerCfg.Configured() {
		m, err := auth.NewPostmarkMailer(mailerCfg)
		if err != nil {
			return err
		}
		mailer = m
	} else {
		mailer = auth.DevMailer{Log: log}
	}

	authenticator := auth.NewPasswordService(credStorage, authCfg, billingCfg.SiteURL,
		auth.WithLogger(log),
		auth.WithMailer(mailer),
	)

	syncSvc := user.NewSyncService(userStore,
		user.WithMirror(sessions),
		user.WithSyncLogger(log),
	)

	// A missing record store resolves everything as local-only.
	var resolverStore user.Store
	if haveRecordDB {
		resolverStore = userStore
	}
	resolver := entitlement.NewResolver(resolverStore, entitlement.WithLogger(log))

	provider, err := billing.NewStripeProvider(stripeCfg)
	if err != nil {
		return err
	}
	catalog := plan.Default()
	billingSvc := billing.NewService(provider, userStore, billingCfg,
		billing.WithCatalog(catalog),
		billing.WithLogger(log),
	)

	router := handler.New(handler.Deps{
		Auth:     authenticator,
		Sync:     syncSvc,
		Resolver: resolver,
		Billing:  billingSvc,
		Sessions: sessions,
		Catalog:  catalog,
		Checks:   checks,
		Log:      log,
	})

	return httpserver.Run(ctx, httpCfg, router, log)
}
