package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
		{"canceled", context.Canceled, KindCanceled},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"timeout", &ErrTimeout{Model: "m"}, KindTimeout},
		{"invalid key", &ErrInvalidAPIKey{Err: errors.New("401")}, KindInvalidKey},
		{"quota", &ErrQuotaExceeded{Err: errors.New("429")}, KindQuota},
		{"rate limit", &ErrRateLimit{Err: errors.New("429")}, KindRateLimit},
		{"empty", &ErrInvalidResponse{Err: ErrEmptyResponse}, KindEmpty},
		{"invalid", &ErrInvalidResponse{Err: errors.New("schema")}, KindInvalidResponse},
		{"max tokens", &ErrMaxTokensExceeded{}, KindMaxTokens},
		{"unavailable", &ErrProviderUnavailable{}, KindUnavailable},
		{"wrapped", fmt.Errorf("all 3 models failed: %w", &ErrQuotaExceeded{}), KindQuota},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_Fatal(t *testing.T) {
	for _, k := range []Kind{KindInvalidKey, KindQuota, KindCanceled} {
		if !k.Fatal() {
			t.Errorf("%v should be fatal", k)
		}
	}
	for _, k := range []Kind{KindTimeout, KindRateLimit, KindUnavailable, KindEmpty, KindInvalidResponse} {
		if k.Fatal() {
			t.Errorf("%v should not be fatal", k)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrInvalidAPIKey{}, "API Key Tidak Valid/Expired."},
		{&ErrQuotaExceeded{}, "Kuota API Habis. Ganti API Key."},
		{errors.New("x"), "Gagal generate konten. Server AI sibuk atau API Key bermasalah."},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMessageHeuristics(t *testing.T) {
	if !looksLikeQuota("You exceeded your current quota") {
		t.Error("quota message not detected")
	}
	if looksLikeQuota("Rate limit reached for requests") {
		t.Error("rate limit taken for quota")
	}
	if !looksLikeBadKey("API key not valid. Please pass a valid API key.") {
		t.Error("bad key message not detected")
	}
}
