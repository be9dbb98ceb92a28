// Command concierge runs the conversational assistant core behind a minimal
// HTTP surface. All behavior lives in internal/; this binary only wires
// configuration into components.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brightpath-advisory/concierge/internal/admission"
	"github.com/brightpath-advisory/concierge/internal/config"
	"github.com/brightpath-advisory/concierge/internal/costcontrol"
	"github.com/brightpath-advisory/concierge/internal/llm"
	"github.com/brightpath-advisory/concierge/internal/monitoring"
	"github.com/brightpath-advisory/concierge/internal/notify"
	"github.com/brightpath-advisory/concierge/internal/orchestrator"
	"github.com/brightpath-advisory/concierge/internal/roi"
	"github.com/brightpath-advisory/concierge/internal/scheduling"
	"github.com/brightpath-advisory/concierge/internal/session"
	"github.com/brightpath-advisory/concierge/internal/tools"
	"github.com/brightpath-advisory/concierge/internal/utils"
)

func main() {
	configPath := flag.String("config", "concierge.yaml", "path to config file")
	listenAddr := flag.String("listen", ":8080", "HTTP listen address")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	_ = godotenv.Load()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	log.Info().
		Str("model", cfg.Provider.Model).
		Str("session_driver", cfg.Session.Driver).
		Str("api_key", utils.MaskKey(cfg.Provider.APIKey)).
		Msg("concierge starting")

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build session store")
	}

	var archive *costcontrol.Archive
	if cfg.CostControl.ArchivePath != "" {
		archive, err = costcontrol.OpenArchive(cfg.CostControl.ArchivePath)
		if err != nil {
			log.Fatal().Err(err).Msg("open ledger archive")
		}
	}
	ledger := costcontrol.NewLedger(cfg.CostControl, archive)

	limiter := admission.NewLimiter(admission.Limits{
		ShortWindow:   cfg.RateLimit.ShortWindow.Std(),
		ShortLimit:    cfg.RateLimit.ShortLimit,
		LongWindow:    cfg.RateLimit.LongWindow.Std(),
		LongLimit:     cfg.RateLimit.LongLimit,
		BlockDuration: cfg.RateLimit.BlockDuration.Std(),
		SweepInterval: config.DefaultSweepInterval,
	})

	book := scheduling.NewBook(cfg.Booking.SlotMinutes)
	registry, err := tools.NewSuite(tools.SuiteConfig{
		Availability: book,
		Booker:       book,
		Links:        &scheduling.LinkBuilder{Title: "Brightpath Advisory consultation"},
		Mailer:       notify.LogMailer{},
		CRM:          notify.LogCRM{},
		WindowDays:   cfg.Booking.WindowDays,
		Timezone:     cfg.Booking.Timezone,
		ToolTimeout:  config.DefaultToolTimeout,
		LeadWeights: roi.ScoreWeights{
			Industry: cfg.Lead.IndustryWeight,
			TeamSize: cfg.Lead.TeamSizeWeight,
			Contact:  cfg.Lead.ContactWeight,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build tool suite")
	}

	orch := orchestrator.New(orchestrator.Deps{
		Limiter:  limiter,
		Ledger:   ledger,
		Store:    store,
		Client:   llm.NewHTTPClient(cfg.Provider.Endpoint, cfg.Provider.APIKey, cfg.Provider.Timeout.Std()),
		Registry: registry,
		Metrics:  monitoring.NewMetricsCollector(),
		Model:    cfg.Provider.Model,
		CacheTTL: config.DefaultReplyCacheTTL,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", chatHandler(orch))

	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", *listenAddr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	limiter.Close()
	if err := store.Close(); err != nil {
		log.Warn().Err(err).Msg("close session store")
	}
	if err := ledger.Close(); err != nil {
		log.Warn().Err(err).Msg("close ledger")
	}
}

func buildStore(cfg *config.Config) (session.Store, error) {
	opts := []session.Option{
		session.WithTTL(cfg.Session.TTL.Std()),
		session.WithMaxTurns(cfg.Session.MaxTurns),
	}
	if cfg.Session.Driver == "redis" {
		redisOpts, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, session.WithRedisClient(redis.NewClient(redisOpts)))
	}
	return session.New(session.Driver(cfg.Session.Driver), opts...)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Language  string `json:"language,omitempty"`
}

type chatResponse struct {
	Reply      string `json:"reply"`
	Route      string `json:"route"`
	Rejected   bool   `json:"rejected,omitempty"`
	Reason     string `json:"reason,omitempty"`
	RetryAfter string `json:"retry_after,omitempty"`
}

func chatHandler(orch *orchestrator.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" || req.SessionID == "" {
			http.Error(w, "message and session_id are required", http.StatusBadRequest)
			return
		}

		caller, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			caller = r.RemoteAddr
		}

		resp := orch.Handle(r.Context(), orchestrator.Request{
			Message:   req.Message,
			SessionID: req.SessionID,
			Caller:    caller,
			Language:  req.Language,
		})

		out := chatResponse{
			Reply:    resp.Reply,
			Route:    string(resp.Route),
			Rejected: resp.Rejected,
			Reason:   resp.Reason,
		}
		if !resp.RetryAfter.IsZero() {
			out.RetryAfter = resp.RetryAfter.Format(time.RFC3339)
		}

		status := http.StatusOK
		if resp.Rejected {
			status = http.StatusTooManyRequests
			if resp.Reason == orchestrator.ReasonDailyLimit {
				status = http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(out)
	}
}
