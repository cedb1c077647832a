package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPing_FirstAnsweringModel(t *testing.T) {
	first := named("gemini-3-flash-preview", MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("404 model not found")}})
	second := named("gemini-2.0-flash-exp", MockResponse{Content: json.RawMessage(`"ok"`)})

	model, err := Ping(context.Background(), []Provider{first, second}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "gemini-2.0-flash-exp" {
		t.Fatalf("model = %q", model)
	}
	req := second.Calls()[0]
	if req.MaxTokens != 1 || req.Purpose != "key-check" {
		t.Fatalf("ping call = %+v", req)
	}
}

func TestPing_InvalidKeyStopsImmediately(t *testing.T) {
	first := named("a", MockResponse{Err: &ErrInvalidAPIKey{Err: errors.New("API key not valid")}})
	second := named("b", MockResponse{Content: json.RawMessage(`"ok"`)})

	_, err := Ping(context.Background(), []Provider{first, second}, time.Second)
	if Classify(err) != KindInvalidKey {
		t.Fatalf("expected invalid key, got %v", err)
	}
	if second.CallCount() != 0 {
		t.Fatal("second model should not be probed")
	}
}

func TestPing_NoProviders(t *testing.T) {
	_, err := Ping(context.Background(), nil, time.Second)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestPingMessage(t *testing.T) {
	tests := []struct {
		name  string
		model string
		err   error
		want  string
	}{
		{"success", "gemini-1.5-flash", nil, "✅ Koneksi Berhasil! (Model: gemini-1.5-flash)"},
		{"missing", "", ErrMissingAPIKey, "API Key kosong."},
		{"bad key", "", &ErrInvalidAPIKey{Err: errors.New("x")}, "❌ API Key Salah (400) atau Tidak Valid."},
		{"other", "", errors.New("network unreachable"), "❌ Validasi Gagal: network unreachable..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PingMessage(tt.model, tt.err); got != tt.want {
				t.Fatalf("PingMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPingMessage_TruncatesLongErrors(t *testing.T) {
	msg := PingMessage("", errors.New(strings.Repeat("é", 200)))
	body := strings.TrimSuffix(strings.TrimPrefix(msg, "❌ Validasi Gagal: "), "...")
	if n := len([]rune(body)); n != 80 {
		t.Fatalf("expected 80 runes, got %d", n)
	}
}

func TestCheckKey_Mock(t *testing.T) {
	model, err := CheckKey(context.Background(), Config{Provider: "mock"})
	if err != nil || model != "mock" {
		t.Fatalf("CheckKey = %q, %v", model, err)
	}
}

func TestCheckKey_MissingKey(t *testing.T) {
	_, err := CheckKey(context.Background(), Config{Provider: ProviderGemini, Model: "gemini-1.5-flash"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
