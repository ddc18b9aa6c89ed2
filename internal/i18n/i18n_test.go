package i18n

import (
	"strings"
	"testing"
)

func TestLocalizedFallback(t *testing.T) {
	l, err := New("es")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}

	es := l.Get("es", MsgFallback, nil)
	if !strings.Contains(es, "Anthony") {
		t.Errorf("spanish fallback should address the user: %q", es)
	}

	en := l.Get("en", MsgFallback, nil)
	if en == es {
		t.Error("english fallback should differ from spanish")
	}
}

func TestUnknownLanguageFallsBack(t *testing.T) {
	l, err := New("es")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if got, want := l.Get("fr", MsgGreeting, nil), l.Get("es", MsgGreeting, nil); got != want {
		t.Errorf("expected default-language fallback, got %q want %q", got, want)
	}
}

func TestUnknownMessageReturnsID(t *testing.T) {
	l, err := New("es")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if got := l.Get("es", "no_such_message", nil); got != "no_such_message" {
		t.Errorf("expected message id passthrough, got %q", got)
	}
}

func TestUnknownDefaultLanguage(t *testing.T) {
	l, err := New("de")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if got := l.Get("de", MsgGreeting, nil); got == "" || got == MsgGreeting {
		t.Errorf("expected spanish fallback, got %q", got)
	}
}
