package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/skillgraph/internal/api/handlers"
	mw "github.com/Harshitk-cp/skillgraph/internal/api/middleware"
	"github.com/Harshitk-cp/skillgraph/internal/buildconfig"
	"github.com/Harshitk-cp/skillgraph/internal/config"
	"github.com/Harshitk-cp/skillgraph/internal/domain"
	"github.com/Harshitk-cp/skillgraph/internal/service"
	"github.com/Harshitk-cp/skillgraph/internal/store"
	"github.com/Harshitk-cp/skillgraph/internal/trueskill"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router     *chi.Mux
	Inactivity *service.InactivityService
	startTime  time.Time
	counters   mw.Counters
}

// Stores is the persistence the app runs on.
type Stores struct {
	Leagues domain.LeagueStore
	Players domain.PlayerStore
	Matches domain.MatchStore
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Settings are the rating parameters read from the environment.
type Settings struct {
	Game            domain.GameInfo
	Engine          trueskill.Options
	InactivityEvery time.Duration
	InactiveAfter   time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

// SettingsFromConfig reads Settings from the loaded environment.
func SettingsFromConfig() Settings {
	return Settings{
		Game: domain.GameInfo{
			InitialMean:            config.TrueSkillInitialMean(),
			InitialStdev:           config.TrueSkillInitialStdev(),
			Beta:                   config.TrueSkillBeta(),
			DynamicsFactor:         config.TrueSkillDynamicsFactor(),
			DrawProbability:        config.TrueSkillDrawProbability(),
			ConservativeMultiplier: config.TrueSkillConservativeMultiplier(),
		},
		Engine: trueskill.Options{
			Kind:                 domain.RatingKindGaussian,
			ConvergenceTolerance: config.TrueSkillConvergenceTolerance(),
			MaxIterations:        config.TrueSkillMaxIterations(),
		},
		InactivityEvery: config.InactivityInterval(),
		InactiveAfter:   time.Duration(config.InactivityAfterDays()) * 24 * time.Hour,
		RateLimitRPS:    config.RateLimitRPS(),
		RateLimitBurst:  config.RateLimitBurst(),
	}
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	return newApp(db, Stores{
		Leagues: store.NewLeagueStore(db),
		Players: store.NewPlayerStore(db),
		Matches: store.NewMatchStore(db),
	}, SettingsFromConfig(), logger)
}

func newApp(db pinger, stores Stores, settings Settings, logger *zap.Logger) *App {
	// Services
	leagueSvc := service.NewLeagueService(stores.Leagues, settings.Game)
	playerSvc := service.NewPlayerService(stores.Players)
	ratingSvc := service.NewRatingService(stores.Players, stores.Matches, settings.Engine, logger)
	inactivitySvc := service.NewInactivityService(stores.Players, stores.Leagues, logger)
	inactivitySvc.SetInterval(settings.InactivityEvery)
	inactivitySvc.SetAfter(settings.InactiveAfter)

	// Handlers
	leagueHandler := handlers.NewLeagueHandler(leagueSvc)
	playerHandler := handlers.NewPlayerHandler(playerSvc)
	matchHandler := handlers.NewMatchHandler(ratingSvc)

	r := chi.NewRouter()

	app := &App{
		Router:     r,
		Inactivity: inactivitySvc,
		startTime:  time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.counters)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(settings.RateLimitRPS, settings.RateLimitBurst))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// League creation (no auth, bootstrap endpoint)
	r.Post("/v1/leagues", leagueHandler.Create)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(stores.Leagues))

		r.Route("/players", func(r chi.Router) {
			r.Post("/", playerHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", playerHandler.GetByID)
				r.Get("/opponents", playerHandler.Opponents)
			})
		})

		r.Get("/leaderboard", playerHandler.Leaderboard)

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchHandler.Create)
			r.Post("/quality", matchHandler.Quality)
			r.Get("/{id}", matchHandler.GetByID)
		})
	})

	return app
}

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Server", buildconfig.UserAgent())
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"build":          buildconfig.VersionInfo(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.counters.Requests.Load(),
			"error_count":    app.counters.Errors(),
			"client_errors":  app.counters.ClientErrors.Load(),
			"server_errors":  app.counters.ServerErrors.Load(),
			"matches_rated":  app.counters.MatchesRated.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.LeagueStore = (*store.LeagueStore)(nil)
	_ domain.PlayerStore = (*store.PlayerStore)(nil)
	_ domain.MatchStore  = (*store.MatchStore)(nil)
)
