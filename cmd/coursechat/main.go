// Command coursechat is a terminal client for a retrieval-augmented course
// assistant backend.
//
// Usage:
//
//	COURSECHAT_BASE_URL=http://localhost:8000/api coursechat [flags]
//
// Flags:
//
//	-base-url string      API root (overrides COURSECHAT_BASE_URL)
//	-subject string       Initial subject filter: DataMining, Network, Distributed
//	-mode string          chat, quiz or flashcards (default chat)
//	-topic string         Topic for quiz and flashcard modes
//	-count int            Number of questions or cards (default: backend default)
//	-serialize-sends      Queue sends so replies arrive in submission order (default true)
//	-export string        Write the active session to this path on exit
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-log-level string     debug, info, warn, error (default info)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fwojciec/coursechat"
	bt "github.com/fwojciec/coursechat/bubbletea"
	"github.com/fwojciec/coursechat/chat"
	"github.com/fwojciec/coursechat/httpapi"
	chatjson "github.com/fwojciec/coursechat/json"
	chatprom "github.com/fwojciec/coursechat/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "coursechat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		baseURL     = flag.String("base-url", "", "API root (overrides COURSECHAT_BASE_URL)")
		subject     = flag.String("subject", "", "Initial subject filter: DataMining, Network, Distributed")
		mode        = flag.String("mode", modeChat, "Mode: chat, quiz, flashcards")
		topic       = flag.String("topic", "", "Topic for quiz and flashcard modes")
		count       = flag.Int("count", 0, "Number of questions or cards (0 = backend default)")
		serialize   = flag.Bool("serialize-sends", true, "Queue sends so replies arrive in submission order")
		exportPath  = flag.String("export", "", "Write the active session to this path on exit")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg, err := resolveConfig(*baseURL, os.Getenv("COURSECHAT_BASE_URL"), *subject, *mode, *logLevel, *serialize)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := openLogger(cfg.level)
	if err != nil {
		return err
	}
	defer closeLog()

	clientOpts := []httpapi.Option{httpapi.WithLogger(logger)}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, httpapi.WithBaseURL(cfg.baseURL))
	}
	client := httpapi.New(clientOpts...)

	reg := prometheus.NewRegistry()
	svc := chatprom.New(client, reg)
	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	switch cfg.mode {
	case modeQuiz:
		req := coursechat.QuizRequest{Topic: *topic, Subject: cfg.subject, NumQuestions: *count}
		return runQuiz(ctx, svc.Generator(client), req, os.Stdin, os.Stdout)
	case modeFlashcards:
		req := coursechat.FlashcardRequest{Topic: *topic, Subject: cfg.subject, NumCards: *count}
		return runDeck(ctx, svc.Generator(client), req, os.Stdin, os.Stdout)
	}

	ctrl := chat.NewController(svc, chat.WithLogger(logger), chat.WithSendPolicy(cfg.policy))
	tuiModel := bt.New(ctrl, coursechat.DefaultTheme(),
		bt.WithSubject(cfg.subject),
		bt.WithContext(ctx),
	)
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if *exportPath != "" {
		view := ctrl.View()
		if view.State != chat.SessionActive {
			fmt.Fprintln(os.Stderr, "No active session to export")
			return nil
		}
		s := coursechat.Session{ID: view.ActiveSessionID, Messages: view.Messages}
		if err := chatjson.Save(*exportPath, s); err != nil {
			return fmt.Errorf("export session: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Session exported to %s\n", *exportPath)
	}
	return nil
}

// openLogger writes JSON logs to ~/.coursechat/coursechat.log since the TUI
// owns the terminal.
func openLogger(level zerolog.Level) (zerolog.Logger, func(), error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".coursechat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "coursechat.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, func() { _ = f.Close() }, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}
