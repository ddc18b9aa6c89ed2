// Package i18n localizes KAREN's user-facing strings. Spanish is the
// default; the settings record selects the active language at call time.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Message IDs.
const (
	MsgFallback   = "assistant_fallback"
	MsgGreeting   = "greeting"
	MsgTimerDone  = "timer_done"
	MsgMicDenied  = "mic_denied"
	MsgLiveEnded  = "live_ended"
	MsgLiveFailed = "live_failed"
)

var supported = []string{"es", "en"}

// Localizer resolves message ids to localized strings.
type Localizer struct {
	defaultLanguage string
	localizers      map[string]*i18n.Localizer
}

// New loads the embedded catalogs. defaultLanguage is used when a requested
// language has no catalog.
func New(defaultLanguage string) (*Localizer, error) {
	bundle := i18n.NewBundle(language.Spanish)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range supported {
		if _, err := bundle.LoadMessageFileFS(localeFS, fmt.Sprintf("locales/%s.json", lang)); err != nil {
			return nil, fmt.Errorf("load locale %s: %w", lang, err)
		}
	}

	localizers := make(map[string]*i18n.Localizer, len(supported))
	for _, lang := range supported {
		localizers[lang] = i18n.NewLocalizer(bundle, lang)
	}
	if _, ok := localizers[defaultLanguage]; !ok {
		defaultLanguage = "es"
	}

	return &Localizer{defaultLanguage: defaultLanguage, localizers: localizers}, nil
}

// Get returns the localized message, falling back to the default language
// and finally to the message id itself.
func (l *Localizer) Get(lang, messageID string, data map[string]any) string {
	localizer, ok := l.localizers[lang]
	if !ok {
		localizer = l.localizers[l.defaultLanguage]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
