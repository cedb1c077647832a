package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// DefaultPingTimeout bounds each model probe during a key check.
const DefaultPingTimeout = 10 * time.Second

// ErrMissingAPIKey is returned by a key check when no key is configured.
var ErrMissingAPIKey = errors.New("API key is empty")

// Ping checks a key by sending a one-token request to each provider in turn
// and returns the first model that answers. An invalid key stops the check
// at the first model; other failures move on to the next one.
func Ping(ctx context.Context, chain []Provider, timeout time.Duration) (string, error) {
	if len(chain) == 0 {
		return "", ErrMissingAPIKey
	}

	req := Request{Prompt: "Tes koneksi", MaxTokens: 1}

	var lastErr error
	for _, p := range chain {
		pctx, cancel := context.WithTimeout(WithPurpose(ctx, "key-check"), timeout)
		_, err := p.Generate(pctx, req)
		cancel()
		if err == nil {
			return p.ModelID(), nil
		}
		lastErr = err
		if k := Classify(err); k == KindInvalidKey || k == KindCanceled {
			return "", err
		}
	}
	return "", lastErr
}

// PingMessage formats the outcome of Ping for display.
func PingMessage(model string, err error) string {
	switch {
	case err == nil:
		return fmt.Sprintf("✅ Koneksi Berhasil! (Model: %s)", model)
	case errors.Is(err, ErrMissingAPIKey):
		return "API Key kosong."
	case Classify(err) == KindInvalidKey:
		return "❌ API Key Salah (400) atau Tidak Valid."
	default:
		return fmt.Sprintf("❌ Validasi Gagal: %s...", truncateRunes(err.Error(), 80))
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
