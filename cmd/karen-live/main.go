// Command karen-live is a terminal voice client: it streams the microphone to
// the assistant and plays the spoken replies through the speakers. ffmpeg and
// ffplay must be on PATH.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/karen-assistant/karen/internal/config"
	"github.com/karen-assistant/karen/internal/i18n"
	"github.com/karen-assistant/karen/pkg/assistant"
	"github.com/karen-assistant/karen/pkg/core"
	"github.com/karen-assistant/karen/pkg/live"
)

type options struct {
	model string
	user  string
	debug bool
}

func main() {
	os.Exit(runMain())
}

func runMain() int {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "karen-live: %v\n", err)
		return 1
	}

	var opt options
	flag.StringVar(&opt.model, "model", "", "live model override (default: KAREN_LIVE_MODEL)")
	flag.StringVar(&opt.user, "user", "", "user name override (default: KAREN_USER_NAME)")
	flag.BoolVar(&opt.debug, "debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opt.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), logger, opt); err != nil {
		fmt.Fprintf(os.Stderr, "karen-live: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger, opt options) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(opt.model) != "" {
		cfg.LiveModel = strings.TrimSpace(opt.model)
	}
	if strings.TrimSpace(opt.user) != "" {
		cfg.UserName = strings.TrimSpace(opt.user)
	}

	localizer, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("load message catalogs: %w", err)
	}
	say := func(messageID string) {
		fmt.Println(localizer.Get(cfg.DefaultLanguage, messageID, nil))
	}

	genClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}

	speaker, err := live.NewSpeaker()
	if err != nil {
		return fmt.Errorf("open speaker: %w", err)
	}
	defer speaker.Close()

	upstream := live.NewGenaiUpstream(genClient, cfg.LiveModel, assistant.Persona(cfg.UserName), logger)

	session := live.NewSession(live.NewMicSource(), upstream, speaker, live.Callbacks{
		OnState: func(st live.State) {
			fmt.Printf("\r[%s]          \n", st)
			if st == live.StateErrored {
				say(i18n.MsgLiveFailed)
			}
		},
		OnSpeaking: func(speaking bool) {
			if speaking {
				fmt.Println("assistant is speaking...")
			}
		},
	}, logger)

	fmt.Printf("Talk to KAREN (model %s). Ctrl-C to hang up.\n", cfg.LiveModel)
	if err := session.Start(ctx); err != nil {
		if core.IsType(err, core.ErrDeviceUnavailable) {
			say(i18n.MsgMicDenied)
		}
		return fmt.Errorf("start session: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-session.Done():
		say(i18n.MsgLiveEnded)
		return nil
	case <-sigCh:
	}

	if err := session.Stop(); err != nil {
		logger.Warn("stop session", "error", err)
	}
	select {
	case <-session.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("session did not reach idle before exit")
	}
	say(i18n.MsgLiveEnded)
	return nil
}
