package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Kind is a coarse error category used to pick a user-facing message and to
// decide whether another model is worth trying.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidKey
	KindQuota
	KindRateLimit
	KindUnavailable
	KindTimeout
	KindInvalidResponse
	KindEmpty
	KindMaxTokens
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindInvalidKey:      "invalid_key",
	KindQuota:           "quota",
	KindRateLimit:       "rate_limit",
	KindUnavailable:     "unavailable",
	KindTimeout:         "timeout",
	KindInvalidResponse: "invalid_response",
	KindEmpty:           "empty",
	KindMaxTokens:       "max_tokens",
	KindCanceled:        "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Classify maps an error returned by a Provider to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		invalidKey *ErrInvalidAPIKey
		quota      *ErrQuotaExceeded
		timeout    *ErrTimeout
		maxTok     *ErrMaxTokensExceeded
		rl         *ErrRateLimit
		invalid    *ErrInvalidResponse
		unavail    *ErrProviderUnavailable
	)

	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &invalidKey):
		return KindInvalidKey
	case errors.As(err, &quota):
		return KindQuota
	case errors.Is(err, ErrEmptyResponse):
		return KindEmpty
	case errors.As(err, &maxTok):
		return KindMaxTokens
	case errors.As(err, &rl):
		return KindRateLimit
	case errors.As(err, &invalid):
		return KindInvalidResponse
	case errors.As(err, &unavail):
		return KindUnavailable
	}
	return KindUnknown
}

// Fatal reports whether errors of this kind end the model fallback chain.
func (k Kind) Fatal() bool {
	return k == KindInvalidKey || k == KindQuota || k == KindCanceled
}

// UserMessage returns the Indonesian message shown to teachers.
func (k Kind) UserMessage() string {
	switch k {
	case KindInvalidKey:
		return "API Key Tidak Valid/Expired."
	case KindQuota:
		return "Kuota API Habis. Ganti API Key."
	case KindRateLimit:
		return "Terlalu banyak permintaan. Coba lagi beberapa saat lagi."
	case KindTimeout:
		return "Waktu tunggu habis. Server AI terlalu lama merespons."
	case KindInvalidResponse, KindEmpty, KindMaxTokens:
		return "Respons AI tidak lengkap atau tidak sesuai format. Silakan coba lagi."
	case KindCanceled:
		return "Permintaan dibatalkan."
	default:
		return "Gagal generate konten. Server AI sibuk atau API Key bermasalah."
	}
}

// UserMessage classifies err and returns its user-facing message.
func UserMessage(err error) string {
	return Classify(err).UserMessage()
}

// looksLikeQuota reports whether a provider error message talks about quota
// rather than a short-lived rate limit.
func looksLikeQuota(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "quota") || strings.Contains(m, "resource_exhausted") ||
		strings.Contains(m, "insufficient_quota")
}

// looksLikeBadKey reports whether a 400-class provider message is about the
// API key.
func looksLikeBadKey(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "api key not valid") || strings.Contains(m, "api_key_invalid") ||
		strings.Contains(m, "invalid api key") || strings.Contains(m, "incorrect api key")
}

// fromStatus sorts an HTTP failure from any backend into the package error
// types. msg is the provider's message and retryAfter the raw Retry-After
// header, if any.
func fromStatus(status int, msg, retryAfter string, err error) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return &ErrInvalidAPIKey{Err: err}
	case status == http.StatusBadRequest && looksLikeBadKey(msg):
		return &ErrInvalidAPIKey{Err: err}
	case status == http.StatusTooManyRequests && looksLikeQuota(msg):
		return &ErrQuotaExceeded{Err: err}
	case status == http.StatusTooManyRequests:
		rl := &ErrRateLimit{Err: err}
		if secs, perr := strconv.Atoi(strings.TrimSpace(retryAfter)); perr == nil && secs > 0 {
			rl.RetryAfter = time.Duration(secs) * time.Second
		}
		return rl
	}
	return &ErrProviderUnavailable{Err: err}
}
