package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secondbrain/internal/ai"
	"secondbrain/internal/auth"
	"secondbrain/internal/collection"
	"secondbrain/internal/config"
	"secondbrain/internal/content"
	"secondbrain/internal/db"
	"secondbrain/internal/embedding"
	httpx "secondbrain/internal/http"
	"secondbrain/internal/jobs"
	"secondbrain/internal/mail"
	"secondbrain/internal/qa"
	"secondbrain/internal/scrape"
	"secondbrain/internal/share"
	"secondbrain/internal/storage"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mailer mail.Mailer = mail.Discard{}
	if cfg.SMTPHost != "" {
		mailer = &mail.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	} else {
		log.Warn("SMTP not configured, outbound mail is discarded")
	}

	// Without an API key the AI-backed features (enrichment, embeddings,
	// Q&A generation) degrade to their extractive fallbacks.
	var aiClient *ai.Client
	if cfg.GeminiAPIKey != "" {
		aiClient, err = ai.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbeddingModel, embedding.Dim, log)
		if err != nil {
			log.Error("gemini client init failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("GEMINI_API_KEY not set, AI features run in fallback mode")
	}

	var store *storage.Store
	if cfg.S3Bucket != "" {
		store, err = storage.New(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.S3Bucket, log)
		if err != nil {
			log.Error("s3 client init failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("S3_BUCKET_NAME not set, file uploads are disabled")
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	jobsRepo := &jobs.Repo{DB: gdb}

	contentSvc := &content.Service{DB: gdb, Log: log}
	contentSvc.Scraper = scrape.New(cfg.ScrapeTimeout, log)
	if aiClient != nil {
		contentSvc.Summarizer = aiClient
	}

	collectionSvc := collection.NewService(gdb, log)

	var embeddingSvc *embedding.Service
	if aiClient != nil {
		embeddingSvc = embedding.NewService(gdb, aiClient, contentSvc, log)
	} else {
		embeddingSvc = embedding.NewService(gdb, nil, contentSvc, log)
	}

	var qaSvc *qa.Service
	if aiClient != nil {
		qaSvc = qa.NewService(contentSvc, aiClient, log)
	} else {
		qaSvc = qa.NewService(contentSvc, nil, log)
	}

	shareSvc := share.NewService(gdb, contentSvc, collectionSvc, jobsRepo, cfg.FrontendURL, log)

	authSvc := &auth.Service{
		DB:          gdb,
		JWT:         jwtSvc,
		Mailer:      mailer,
		Jobs:        jobsRepo,
		FrontendURL: cfg.FrontendURL,
		Log:         log,
	}

	r := httpx.NewRouter(cfg, httpx.Deps{
		Auth:        authSvc,
		JWT:         jwtSvc,
		Contents:    contentSvc,
		Collections: collectionSvc,
		Embeddings:  embeddingSvc,
		Shares:      shareSvc,
		QA:          qaSvc,
		Store:       store,
	})

	worker := &jobs.Worker{ID: "worker-1", Repo: jobsRepo, DB: gdb, Mailer: mailer}
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
