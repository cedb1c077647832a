package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(model string, rs ...MockResponse) *MockProvider {
	m := NewMockProvider(rs...)
	m.Model = model
	return m
}

func answer(s string) MockResponse { return MockResponse{Content: json.RawMessage(s)} }

func failure(err error) MockResponse { return MockResponse{Err: err} }

// hanging blocks until its context ends.
type hanging string

func (h hanging) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, &ErrProviderUnavailable{Err: ctx.Err()}
}

func (h hanging) ModelID() string { return string(h) }

func TestFallback_Order(t *testing.T) {
	tests := []struct {
		name      string
		chain     [][]MockResponse
		want      string
		wantCalls []int
	}{
		{
			name:      "first answers",
			chain:     [][]MockResponse{{answer(`{"n":1}`)}, {}},
			want:      `{"n":1}`,
			wantCalls: []int{1, 0},
		},
		{
			name: "transient errors move on",
			chain: [][]MockResponse{
				{failure(&ErrProviderUnavailable{Err: errors.New("503")})},
				{failure(&ErrInvalidResponse{Err: ErrEmptyResponse})},
				{answer(`{"n":3}`)},
			},
			want:      `{"n":3}`,
			wantCalls: []int{1, 1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mocks []*MockProvider
				chain []Provider
			)
			for i, rs := range tt.chain {
				m := named(string(rune('a'+i)), rs...)
				mocks = append(mocks, m)
				chain = append(chain, m)
			}
			resp, err := WithFallback(time.Second, chain...).Generate(context.Background(), Request{})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(resp.Content))
			for i, m := range mocks {
				assert.Equal(t, tt.wantCalls[i], m.CallCount(), "model %s", m.Model)
			}
		})
	}
}

func TestFallback_FatalErrorsStopTheChain(t *testing.T) {
	for _, err := range []error{
		&ErrInvalidAPIKey{Err: errors.New("401")},
		&ErrQuotaExceeded{Err: errors.New("429 quota")},
	} {
		t.Run(Classify(err).String(), func(t *testing.T) {
			second := named("b", answer(`{}`))
			_, got := WithFallback(time.Second, named("a", failure(err)), second).
				Generate(context.Background(), Request{})
			assert.Equal(t, Classify(err), Classify(got))
			assert.Zero(t, second.CallCount())
		})
	}
}

func TestFallback_AllFailKeepsLastError(t *testing.T) {
	f := WithFallback(time.Second,
		named("a", failure(&ErrProviderUnavailable{Err: errors.New("down")})),
		named("b", failure(&ErrRateLimit{Err: errors.New("slow down")})),
	)
	_, err := f.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Contains(t, err.Error(), "all 2 models failed")
}

func TestFallback_PerModelTimeout(t *testing.T) {
	fast := named("fast", answer(`{"ok":true}`))
	resp, err := WithFallback(5*time.Millisecond, hanging("slow"), fast).Generate(context.Background(), Request{})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 1, fast.CallCount())
}

func TestFallback_TimeoutIsReported(t *testing.T) {
	_, err := WithFallback(5*time.Millisecond, hanging("slow")).Generate(context.Background(), Request{})
	var to *ErrTimeout
	require.ErrorAs(t, err, &to)
	assert.Equal(t, "slow", to.Model)
	assert.Equal(t, KindTimeout, Classify(err))
}

func TestFallback_CanceledContextStops(t *testing.T) {
	second := named("b", answer(`{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithFallback(time.Second, hanging("slow"), second).Generate(ctx, Request{})
	require.Error(t, err)
	assert.Zero(t, second.CallCount())
}

func TestFallback_Empty(t *testing.T) {
	f := WithFallback(time.Second)
	_, err := f.Generate(context.Background(), Request{})
	assert.Equal(t, KindUnavailable, Classify(err))
	assert.Empty(t, f.ModelID())
}

func TestFallback_Models(t *testing.T) {
	f := WithFallback(0, named("x"), named("y"))
	assert.Equal(t, []string{"x", "y"}, f.Models())
	assert.Equal(t, "x", f.ModelID())
}
