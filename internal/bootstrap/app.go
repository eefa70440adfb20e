package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"visaverse-backend/internal/admin"
	"visaverse-backend/internal/audit"
	"visaverse-backend/internal/chat"
	"visaverse-backend/internal/generator"
	"visaverse-backend/internal/kb"
	"visaverse-backend/internal/llm"
	"visaverse-backend/internal/llm/gemini"
	"visaverse-backend/internal/llm/openai"
	"visaverse-backend/internal/plans"
	"visaverse-backend/internal/rules"
	"visaverse-backend/internal/services/health"
	"visaverse-backend/internal/shared/auth"
	"visaverse-backend/internal/shared/config"
	"visaverse-backend/internal/shared/server"
	"visaverse-backend/internal/shared/storage/db"
	"visaverse-backend/internal/shared/storage/object"
	localstore "visaverse-backend/internal/shared/storage/object/local"
	s3store "visaverse-backend/internal/shared/storage/object/s3"
	"visaverse-backend/internal/shared/telemetry"
	"visaverse-backend/internal/users"
)

const devJWTSecret = "change-me"

// App holds shared dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	KBStore   object.Store
	LLM       llm.Client
	Issuer    *auth.Issuer
	KBFiles   *kb.StoreSource
	Retriever *kb.Retriever
	Assembler *plans.Assembler
	Chat      *chat.Service
	KB        *kb.Service
	Users     *users.Service
	Audit     *audit.Recorder
	Admin     *admin.Service
	Runs      plans.RunRepo
	Health    *health.Service
}

// Options adjusts Build for callers other than the API server.
type Options struct {
	// SkipRouter leaves App.Router nil.
	SkipRouter bool
	// DBOptions overrides the pool settings; zero means server defaults.
	DBOptions *db.Options
}

// Build prepares shared dependencies and the router.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	secret, err := jwtSecret(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	store, err := buildKBStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		KBStore: store,
		LLM:     client,
		Issuer:  auth.NewIssuer(secret, cfg.AccessTokenTTL),
	}
	buildServices(app)
	warmKB(ctx, app.KBFiles)

	if !opts.SkipRouter {
		app.Router = server.NewRouter(server.RouterDeps{
			Config:       cfg,
			Verifier:     app.Issuer,
			PlanHandler:  plans.NewHandler(app.Assembler),
			ChatHandler:  chat.NewHandler(app.Chat),
			UserHandler:  users.NewHandler(app.Users),
			KBHandler:    kb.NewHandler(app.KB),
			AuditHandler: audit.NewHandler(app.Audit),
			AdminHandler: admin.NewHandler(app.Admin, app.KBFiles),
			Health:       app.Health,
		})
	}

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":        cfg.Env,
		"database":   sqlDB != nil,
		"kb_source":  cfg.KBSource,
		"provider":   client.Provider(),
		"completion": cfg.CompletionEnabled(),
	})
	return app, nil
}

// warmKB loads the file knowledge base before the first request. A failure
// is retried lazily by the retriever.
func warmKB(ctx context.Context, files *kb.StoreSource) {
	if _, err := files.Passages(context.WithoutCancel(ctx)); err != nil {
		telemetry.Warn("bootstrap.kb.warm_failed", map[string]any{"err": err})
	}
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func jwtSecret(cfg config.Config) (string, error) {
	if s := strings.TrimSpace(cfg.JWTSecret); s != "" {
		return s, nil
	}
	if cfg.IsDevLike() {
		return devJWTSecret, nil
	}
	return "", errors.New("JWT_SECRET_KEY is required")
}

func buildDB(ctx context.Context, cfg config.Config, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	poolOpts := db.OptionsFromEnv(db.DefaultServerOptions())
	if opts.DBOptions != nil {
		poolOpts = *opts.DBOptions
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, poolOpts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildKBStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.KBSource {
	case "s3":
		if strings.TrimSpace(cfg.KBS3Bucket) == "" {
			return nil, fmt.Errorf("KB_SOURCE=s3 requires KB_S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.KBS3Bucket, cfg.KBS3Prefix)
	default:
		return localstore.New(cfg.KBDir), nil
	}
}

// buildLLM returns the placeholder client when completion is disabled, so
// the generator and chat always run deterministically in that case.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if !cfg.CompletionEnabled() {
		return llm.PlaceholderClient{}, nil
	}
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	}
}

func buildServices(app *App) {
	var (
		userRepo  users.Repo
		auditRepo audit.Repo
		kbRepo    kb.Repo
		runRepo   plans.RunRepo
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		auditRepo = &audit.PGRepo{DB: app.DB}
		kbRepo = &kb.PGRepo{DB: app.DB}
		runRepo = &plans.PGRunRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		auditRepo = audit.NewMemoryRepo()
		kbRepo = kb.NewMemoryRepo()
		runRepo = plans.NewMemoryRunRepo()
	}

	cfg := app.Config
	recorder := audit.NewRecorder(auditRepo)
	kbSvc := kb.NewService(kbRepo, recorder)
	files := kb.NewStoreSource(app.KBStore)
	retriever := kb.NewRetriever(kb.MultiSource{
		files,
		kb.NewPublishedSource(kbRepo),
	})
	enabled := cfg.CompletionEnabled()

	app.Audit = recorder
	app.KB = kbSvc
	app.Users = users.NewService(userRepo, app.Issuer, recorder)
	app.KBFiles = files
	app.Retriever = retriever
	app.Runs = runRepo
	app.Assembler = &plans.Assembler{
		Retriever:   retriever,
		Generator:   generator.New(app.LLM, enabled, cfg.LLMTimeout),
		Rules:       rules.NewEngine(),
		MaxSnippets: cfg.MaxSnippets,
		Policy:      plans.Policy{DedupeRisks: cfg.DedupeRisks},
		Runs:        runRepo,
	}
	app.Chat = chat.NewService(retriever, app.LLM, enabled, cfg.LLMTimeout, cfg.MaxSnippets)
	app.Admin = admin.NewService(kbRepo, userRepo, runRepo, auditRepo)
	if app.DB != nil {
		app.Health = health.NewService(app.DB)
	} else {
		app.Health = health.NewService(nil)
	}
}
