package types

// Theme selects the UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Settings is the single mutable settings record. It is never persisted;
// every process start resets it to DefaultSettings.
type Settings struct {
	Language      string  `json:"language"`
	VoiceSpeed    float64 `json:"voice_speed"`
	VoicePitch    float64 `json:"voice_pitch"`
	Notifications bool    `json:"notifications"`
	Theme         Theme   `json:"theme"`
	VoiceEnabled  bool    `json:"voice_enabled"`
}

// DefaultSettings returns the initial settings. Spanish is the default
// language; KAREN was built for a Spanish-speaking user.
func DefaultSettings() Settings {
	return Settings{
		Language:      "es",
		VoiceSpeed:    1.0,
		VoicePitch:    1.0,
		Notifications: true,
		Theme:         ThemeDark,
		VoiceEnabled:  true,
	}
}

// Valid reports whether the record holds representable values.
func (s Settings) Valid() bool {
	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return false
	}
	if s.VoiceSpeed <= 0 || s.VoicePitch <= 0 {
		return false
	}
	return s.Language != ""
}
