package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const page = `<html><body>
<div class="quote">
  <div class="quote__body">
    Discipline is   the bridge
    between goals and <b>accomplishment</b>.
  </div>
  <div class="quote__author">Jim Rohn</div>
</div>
<div class="quote"><div class="quote__body quote__body--long">Small steps<br>every day.</div></div>
<span class="quote__body">not a div</span>
<div class="quote__body">   </div>
</body></html>`

type staticSource struct {
	quotes []string
	err    error
	calls  int
}

func (s *staticSource) Fetch(ctx context.Context) ([]string, error) {
	s.calls++
	return s.quotes, s.err
}

func TestScraperExtractsQuoteBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	got, err := NewScraper(srv.URL, "", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Discipline is the bridge between goals and accomplishment.",
		"Small steps every day.",
	}, got)
}

func TestScraperReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewScraper(srv.URL, "", time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestLoadFallsBack(t *testing.T) {
	logger := zaptest.NewLogger(t)

	failing := &staticSource{err: errors.New("boom")}
	empty := &staticSource{}
	got := Load(context.Background(), logger, "", failing, empty)
	assert.Equal(t, []string{DefaultFallback}, got)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)

	got = Load(context.Background(), logger, "Keep going.")
	assert.Equal(t, []string{"Keep going."}, got)
}

func TestLoadStopsAtFirstSuccess(t *testing.T) {
	first := &staticSource{quotes: []string{"a", "b"}}
	second := &staticSource{quotes: []string{"c"}}

	got := Load(context.Background(), zaptest.NewLogger(t), "", first, second)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Zero(t, second.calls)
}

func newTestGenerator(t *testing.T, content string) *Generator {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "cmpl-1",
			Object: "chat.completion",
			Model:  "gpt-test",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewGeneratorWithConfig(cfg, "gpt-test", 200, 0.7, 3, zaptest.NewLogger(t))
}

func TestGeneratorParsesQuotes(t *testing.T) {
	g := newTestGenerator(t, `{"quotes": ["  Show up. ", "", "Finish what you start."]}`)

	got, err := g.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Show up.", "Finish what you start."}, got)
}

func TestGeneratorRejectsMalformedReply(t *testing.T) {
	g := newTestGenerator(t, "Sure! Here are some quotes")

	_, err := g.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}
