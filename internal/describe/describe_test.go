package describe

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 4), 120, 255})
		}
	}
	return img
}

// chatServer answers every completion request with content.
func chatServer(t *testing.T, status int, content any) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) &&
			assert.Len(t, req.Messages, 1) &&
			assert.Len(t, req.Messages[0].Content, 2) {
			assert.Equal(t, "gpt-4o-mini", req.Model)
			assert.Equal(t, Prompt, req.Messages[0].Content[0].Text)
			if assert.NotNil(t, req.Messages[0].Content[1].ImageURL) {
				assert.True(t, strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,"))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(t *testing.T, url string) *OpenAI {
	t.Helper()
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = url
	c, err := NewOpenAI(cfg)
	require.NoError(t, err)
	return c
}

func TestNewOpenAI_NoKey(t *testing.T) {
	_, err := NewOpenAI(DefaultConfig())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestOpenAI_Describe(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, `{"top": "red polo shirt", "bottom": "light  denim shorts"}`)

	top, bottom, err := newClient(t, srv.URL).Describe(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "RED POLO SHIRT", top)
	assert.Equal(t, "LIGHT DENIM SHORTS", bottom)
}

func TestOpenAI_Describe_ContentParts(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, []any{
		map[string]any{"type": "text", "text": `{"top": "black hoodie",`},
		map[string]any{"type": "text", "text": ` "bottom": "grey joggers"}`},
	})

	top, bottom, err := newClient(t, srv.URL).Describe(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "BLACK HOODIE", top)
	assert.Equal(t, "GREY JOGGERS", bottom)
}

func TestOpenAI_Describe_HTTPError(t *testing.T) {
	srv, _ := chatServer(t, http.StatusInternalServerError, "boom")

	_, _, err := newClient(t, srv.URL).Describe(context.Background(), testImage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestOpenAI_Describe_Malformed(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, "I think they wear a shirt.")

	_, _, err := newClient(t, srv.URL).Describe(context.Background(), testImage())
	assert.True(t, errors.Is(err, ErrMalformedResponse), "got %v", err)
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		top, btm   string
		wantErrMal bool
	}{
		{"plain", `{"top":"white tee","bottom":"blue jeans"}`, "WHITE TEE", "BLUE JEANS", false},
		{"fenced", "```json\n{\"top\": \"green jacket\", \"bottom\": \"black skirt\"}\n```", "GREEN JACKET", "BLACK SKIRT", false},
		{"bare fence", "```\n{\"top\": \"a\", \"bottom\": \"b\"}```", "A", "B", false},
		{"missing bottom", `{"top":"white tee"}`, "", "", true},
		{"empty value", `{"top":"white tee","bottom":"  "}`, "", "", true},
		{"not json", "sorry", "", "", true},
		{"array", `["a","b"]`, "", "", true},
		{"non-string values", `{"top": 42, "bottom": {"color":"red"}}`, "", "", true},
		{"number bottom", `{"top":"white tee","bottom":7}`, "", "", true},
		{"null top", `{"top":null,"bottom":"blue jeans"}`, "", "", true},
		{"list top", `{"top":["white","tee"],"bottom":"blue jeans"}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, btm, err := ParseLabels(tt.reply)
			if tt.wantErrMal {
				assert.True(t, errors.Is(err, ErrMalformedResponse), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.top, top)
			assert.Equal(t, tt.btm, btm)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		// "é" is two bytes; cutting inside it backs off to the rune start
		{"aébc", 2, "a..."},
		{"日本語", 4, "日..."},
	}

	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got), "invalid UTF-8 in %q", got)
	}
}

func TestLabelPair_Display(t *testing.T) {
	top, bottom := LabelPair{Top: "RED SHIRT", Bottom: "JEANS"}.Display()
	assert.Equal(t, "TOP: RED SHIRT", top)
	assert.Equal(t, "BOTTOM: JEANS", bottom)

	top, bottom = DefaultLabels().Display()
	assert.Equal(t, "AI GENERATED TOP", top)
	assert.Equal(t, "AI GENERATED BOTTOM", bottom)
}

type funcDescriber func(ctx context.Context, img image.Image) (string, string, error)

func (f funcDescriber) Describe(ctx context.Context, img image.Image) (string, string, error) {
	return f(ctx, img)
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFallback(t *testing.T) {
	log, logs := observed()
	var calls int
	failing := funcDescriber(func(context.Context, image.Image) (string, string, error) {
		calls++
		return "", "", errors.New("network down")
	})

	got := NewFallback(failing, time.Second, log).Describe(context.Background(), testImage())

	assert.Equal(t, DefaultLabels(), got)
	assert.Equal(t, 1, calls, "fallback must not retry")
	assert.Equal(t, 1, logs.FilterMessage("description unavailable, using default labels").Len())
}

func TestFallback_Panic(t *testing.T) {
	log, logs := observed()
	panicking := funcDescriber(func(context.Context, image.Image) (string, string, error) {
		panic("bad client")
	})

	got := NewFallback(panicking, 0, log).Describe(context.Background(), testImage())
	assert.True(t, got.Fallback)
	assert.Equal(t, 1, logs.FilterField(zap.String("panic", "bad client")).Len())
}

func TestFallback_Timeout(t *testing.T) {
	slow := funcDescriber(func(ctx context.Context, _ image.Image) (string, string, error) {
		<-ctx.Done()
		return "", "", ctx.Err()
	})

	start := time.Now()
	got := NewFallback(slow, 20*time.Millisecond, nil).Describe(context.Background(), testImage())
	assert.True(t, got.Fallback)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFallback_EmptyResult(t *testing.T) {
	empty := funcDescriber(func(context.Context, image.Image) (string, string, error) {
		return "SHIRT", "", nil
	})
	assert.Equal(t, DefaultLabels(), NewFallback(empty, 0, nil).Describe(context.Background(), testImage()))
}

func TestFallback_Nil(t *testing.T) {
	assert.Equal(t, DefaultLabels(), NewFallback(nil, 0, nil).Describe(context.Background(), testImage()))
}

func TestFallback_Success(t *testing.T) {
	srv, calls := chatServer(t, http.StatusOK, `{"top": "navy blazer", "bottom": "chinos"}`)

	got := NewFallback(newClient(t, srv.URL), time.Second, nil).Describe(context.Background(), testImage())
	assert.Equal(t, LabelPair{Top: "NAVY BLAZER", Bottom: "CHINOS"}, got)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestFallback_NonStringLabels(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, `{"top": 42, "bottom": {"color": "red"}}`)

	got := NewFallback(newClient(t, srv.URL), time.Second, nil).Describe(context.Background(), testImage())
	assert.Equal(t, DefaultLabels(), got)
}

func TestFallback_ServerTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	got := NewFallback(newClient(t, srv.URL), 50*time.Millisecond, nil).Describe(context.Background(), testImage())
	assert.True(t, got.Fallback)
}
