// Package config loads the KAREN server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// Gemini API access.
	GeminiAPIKey string
	ChatModel    string
	TTSModel     string
	TTSVoice     string
	LiveModel    string

	// System instruction sent with every chat turn and live session.
	UserName string

	DefaultLanguage string

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Live WebSocket limits.
	LiveMaxFrameBytes      int64
	LiveMaxAudioFPS        float64
	LiveInboundBurstFrames int
	LiveWriteTimeout       time.Duration

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                   envOr("KAREN_ADDR", ":8080"),
		GeminiAPIKey:           strings.TrimSpace(firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")),
		ChatModel:              envOr("KAREN_CHAT_MODEL", "gemini-3-flash-preview"),
		TTSModel:               envOr("KAREN_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		TTSVoice:               envOr("KAREN_TTS_VOICE", "Kore"),
		LiveModel:              envOr("KAREN_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-12-2025"),
		UserName:               envOr("KAREN_USER_NAME", "Anthony"),
		DefaultLanguage:        envOr("KAREN_LANGUAGE", "es"),
		CORSAllowedOrigins:     make(map[string]struct{}),
		LiveMaxFrameBytes:      envInt64Or("KAREN_LIVE_MAX_FRAME_BYTES", 16*1024),
		LiveMaxAudioFPS:        envFloat64Or("KAREN_LIVE_MAX_AUDIO_FPS", 30),
		LiveInboundBurstFrames: envIntOr("KAREN_LIVE_INBOUND_BURST_FRAMES", 60),
		LiveWriteTimeout:       envDurationOr("KAREN_LIVE_WRITE_TIMEOUT", 5*time.Second),
		ReadHeaderTimeout:      envDurationOr("KAREN_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:            envDurationOr("KAREN_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod:    envDurationOr("KAREN_SHUTDOWN_GRACE_PERIOD", 15*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("KAREN_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if strings.TrimSpace(cfg.ChatModel) == "" {
		return Config{}, fmt.Errorf("KAREN_CHAT_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.LiveModel) == "" {
		return Config{}, fmt.Errorf("KAREN_LIVE_MODEL must not be empty")
	}
	if cfg.LiveMaxFrameBytes <= 0 {
		return Config{}, fmt.Errorf("KAREN_LIVE_MAX_FRAME_BYTES must be > 0")
	}
	if cfg.LiveMaxAudioFPS < 0 {
		return Config{}, fmt.Errorf("KAREN_LIVE_MAX_AUDIO_FPS must be >= 0")
	}
	if cfg.LiveMaxAudioFPS > 0 && cfg.LiveInboundBurstFrames < 1 {
		return Config{}, fmt.Errorf("KAREN_LIVE_INBOUND_BURST_FRAMES must be >= 1 when the frame limit is enabled")
	}
	if cfg.LiveWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("KAREN_LIVE_WRITE_TIMEOUT must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("KAREN_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("KAREN_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("KAREN_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
