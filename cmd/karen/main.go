// Command karen runs the assistant server: the REST API for the chat, study
// and project state plus the live voice WebSocket endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/karen-assistant/karen/internal/config"
	"github.com/karen-assistant/karen/internal/i18n"
	"github.com/karen-assistant/karen/pkg/assistant"
	"github.com/karen-assistant/karen/pkg/live"
	"github.com/karen-assistant/karen/pkg/server"
	"github.com/karen-assistant/karen/pkg/shell"
)

type serverDeps struct {
	loadConfig   func() (config.Config, error)
	newGenClient func(ctx context.Context, cfg config.Config) (*genai.Client, error)
	signalNotify func(chan<- os.Signal, ...os.Signal)
	signalStop   func(chan<- os.Signal)
}

func defaultServerDeps() serverDeps {
	return serverDeps{
		loadConfig: config.LoadFromEnv,
		newGenClient: func(ctx context.Context, cfg config.Config) (*genai.Client, error) {
			return genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  cfg.GeminiAPIKey,
				Backend: genai.BackendGeminiAPI,
			})
		},
		signalNotify: func(c chan<- os.Signal, sig ...os.Signal) {
			signal.Notify(c, sig...)
		},
		signalStop: signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
	}
}

func runServer(ctx context.Context, logger *slog.Logger, deps serverDeps) error {
	if deps.loadConfig == nil {
		return errors.New("missing loadConfig dependency")
	}
	if deps.newGenClient == nil {
		return errors.New("missing newGenClient dependency")
	}
	if deps.signalNotify == nil || deps.signalStop == nil {
		return errors.New("missing signal dependency")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}

	localizer, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load message catalogs: %w", err)
	}

	genClient, err := deps.newGenClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}

	gen := assistant.NewGeminiGenerator(genClient, cfg.ChatModel, cfg.TTSModel, cfg.TTSVoice)
	client := assistant.New(gen, localizer, assistant.Options{
		UserName: cfg.UserName,
		Language: cfg.DefaultLanguage,
		Logger:   logger,
	})

	sh := shell.New(shell.NewStore(), client, localizer, shell.Options{
		Logger: logger,
		OnNotify: func(text string) {
			logger.Info("notification", "text", text)
		},
	})
	sh.Greet()

	upstream := live.NewGenaiUpstream(genClient, cfg.LiveModel, client.SystemInstruction(), logger)

	srv := server.New(cfg, sh, client, upstream, logger)
	httpSrv := buildHTTPServer(cfg, srv.Handler())

	logger.Info("starting server", "addr", cfg.Addr, "chat_model", cfg.ChatModel, "live_model", cfg.LiveModel)

	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func runMain(ctx context.Context, stderr io.Writer, deps serverDeps) int {
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(stderr, "karen: %v\n", err)
		return 1
	}

	if err := runServer(ctx, logger, deps); err != nil {
		fmt.Fprintf(stderr, "karen: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultServerDeps()))
}
