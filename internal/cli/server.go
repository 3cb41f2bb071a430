package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"history-quiz-service/internal/app"
	"history-quiz-service/internal/config"
	"history-quiz-service/internal/domain"
	"history-quiz-service/internal/infra/memory"
	pginfra "history-quiz-service/internal/infra/postgres"
	redisinfra "history-quiz-service/internal/infra/redis"
	transport "history-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)

	var (
		progressStore     app.ProgressStore
		quizStore         app.QuizStore
		collaboratorStore app.CollaboratorStore
		badgeStore        app.BadgeStore
		loader            memory.CatalogLoader
	)

	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		progressStore = pginfra.NewProgressStore(db)
		quizStore = pginfra.NewQuizStore(db)
		collaboratorStore = pginfra.NewCollaboratorStore(db)
		badgeStore = pginfra.NewBadgeStore(db)
		loader = pginfra.NewCatalogLoader(pool)
	} else {
		memQuizzes := memory.NewQuizStore()
		seedSampleData(ctx, memQuizzes)
		progressStore = memory.NewProgressStore()
		quizStore = memQuizzes
		collaboratorStore = memory.NewCollaboratorStore()
		badgeStore = memory.NewBadgeStore(sampleBadges())
		loader = memQuizzes
	}

	var catalog app.QuestionCatalog
	if redisClient != nil {
		catalog = redisinfra.NewCatalogCache(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogCache(loader, catalogTTL)
	}

	engine := app.NewEngine(progressStore, catalog, badgeStore)
	authoring := app.NewAuthoring(quizStore, collaboratorStore)
	wsHandler := transport.NewWSHandler(engine, authoring)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedSampleData loads a demo quiz; swap for real data by configuring Postgres.
func seedSampleData(ctx context.Context, quizzes *memory.QuizStore) {
	quiz := domain.Quiz{
		ID:        "quiz-rome",
		Title:     "History of Rome",
		Published: true,
		CreatedBy: "demo",
		CreatedAt: time.Now(),
		Questions: []domain.Question{
			{
				ID:         "q1",
				QuizID:     "quiz-rome",
				Prompt:     "Which city was the capital of the Roman Empire?",
				Options:    []string{"Rome", "Athens", "Carthage"},
				Answer:     "Rome",
				Difficulty: domain.DifficultyEasy,
			},
			{
				ID:         "q2",
				QuizID:     "quiz-rome",
				Prompt:     "Who was the first Roman emperor?",
				Options:    []string{"Julius Caesar", "Augustus", "Nero"},
				Answer:     "Augustus",
				Difficulty: domain.DifficultyMedium,
			},
			{
				ID:         "q3",
				QuizID:     "quiz-rome",
				Prompt:     "In which year was the Western Empire's last emperor deposed?",
				Options:    []string{"410", "476", "1453"},
				Answer:     "476",
				Difficulty: domain.DifficultyHard,
			},
		},
	}
	if err := quizzes.InsertQuiz(ctx, quiz); err != nil {
		log.Printf("seed quiz: %v", err)
	}
}

func sampleBadges() []domain.Badge {
	return []domain.Badge{
		{ID: "badge-historian", Name: "Historian"},
		{ID: "badge-quiz-master", Name: "Quiz Master"},
	}
}
