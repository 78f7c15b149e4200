package describe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Prompt asks for a strict JSON answer with colour and garment type.
const Prompt = "You are a fashion assistant. Look at the person in the image and " +
	"describe concisely:\n" +
	"top: [color] [type]\n" +
	"bottom: [color] [type]\n" +
	"Respond ONLY as strict JSON like:\n" +
	`{"top": "red polo shirt", "bottom": "light denim shorts"}`

// Config configures the OpenAI describer.
type Config struct {
	Enabled bool          `yaml:"enabled"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns an enabled configuration without an API key.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
		Timeout: 30 * time.Second,
	}
}

// OpenAI describes clothing with a vision-capable chat model.
type OpenAI struct {
	client *resty.Client
	model  string
}

// NewOpenAI creates a client. It fails with ErrNoAPIKey when cfg has no key.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &OpenAI{client: client, model: cfg.Model}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe sends img as a JPEG data URL with Prompt and parses the reply.
func (o *OpenAI) Describe(ctx context.Context, img image.Image) (string, string, error) {
	dataURL, err := jpegDataURL(img)
	if err != nil {
		return "", "", err
	}

	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	}

	var out chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", "", errors.Wrap(err, "chat completion request failed")
	}
	if resp.IsError() {
		return "", "", errors.Errorf("chat completion returned %s: %s", resp.Status(), truncate(resp.String(), 200))
	}
	if len(out.Choices) == 0 {
		return "", "", errors.Wrap(ErrMalformedResponse, "no choices")
	}

	text, err := messageText(out.Choices[0].Message.Content)
	if err != nil {
		return "", "", err
	}
	return ParseLabels(text)
}

// messageText accepts both a plain string and a list of content parts.
func messageText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", errors.Wrap(ErrMalformedResponse, "unexpected message content")
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// ParseLabels extracts the upper-cased top and bottom descriptions from a
// model reply. Markdown code fences around the JSON are ignored.
//
// Both fields must be non-blank JSON strings; anything else (numbers,
// objects, null, missing keys) is ErrMalformedResponse.
func ParseLabels(reply string) (string, string, error) {
	body := stripFences(reply)

	var data struct {
		Top    *string `json:"top"`
		Bottom *string `json:"bottom"`
	}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", "", errors.Wrapf(ErrMalformedResponse, "invalid JSON %q", truncate(body, 80))
	}

	top := field(data.Top)
	bottom := field(data.Bottom)
	if top == "" || bottom == "" {
		return "", "", errors.Wrap(ErrMalformedResponse, "missing top or bottom")
	}
	return top, bottom, nil
}

func field(v *string) string {
	if v == nil {
		return ""
	}
	return strings.ToUpper(strings.Join(strings.Fields(*v), " "))
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func jpegDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return "", errors.Wrap(err, "failed to encode body crop")
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
