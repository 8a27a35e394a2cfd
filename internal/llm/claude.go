package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const (
	defaultClaudeModel = "claude-sonnet-4-5-20250929"
	claudeAPIVersion   = "2023-06-01"

	claudeRetryMax  = 3
	claudeRetryBase = time.Second
)

// ClaudeProvider drives chat completions through the Anthropic messages API.
// Retries are handled here (bounded, 5xx and timeouts only) so SDK retries
// stay disabled.
type ClaudeProvider struct {
	apiKey    string
	authToken string
	baseURL   string
	model     string
	retryMax  int
	retryBase time.Duration
}

// NewClaudeProvider constructs a provider. Missing credentials fall back to
// ANTHROPIC_API_KEY / ANTHROPIC_AUTH_TOKEN; missing base URL falls back to
// ANTHROPIC_BASE_URL.
func NewClaudeProvider(apiKey, baseURL, model string) *ClaudeProvider {
	p := &ClaudeProvider{
		apiKey:    strings.TrimSpace(apiKey),
		baseURL:   strings.TrimSpace(baseURL),
		model:     strings.TrimSpace(model),
		retryMax:  claudeRetryMax,
		retryBase: claudeRetryBase,
	}
	if p.baseURL == "" {
		p.baseURL = strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL"))
	}
	if p.apiKey == "" {
		if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
			p.apiKey = v
		} else if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
			p.authToken = v
		}
	}
	if p.model == "" {
		p.model = defaultClaudeModel
	}
	return p
}

func (p *ClaudeProvider) Name() string {
	return "claude"
}

func (p *ClaudeProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if p == nil {
		return nil, errors.New("llm: claude: nil provider")
	}
	if ctx == nil {
		return nil, errors.New("llm: claude: nil context")
	}
	if req == nil {
		return nil, errors.New("llm: claude: nil request")
	}
	if p.apiKey == "" && p.authToken == "" {
		return nil, errors.New("llm: claude: missing api key")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(clampMaxTokens(req.MaxTokens)),
		Messages:  toClaudeMessages(req.Messages),
	}
	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: system,
			Type: "text",
		}}
	}
	if req.Temperature != 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}

	sdk := p.newSDKClient()
	start := time.Now()
	for attempt := 0; ; attempt++ {
		msg, err := sdk.Messages.New(ctx, params)
		if err != nil {
			err = normalizeClaudeError(err)
			if !claudeShouldRetry(err) || attempt >= p.retryMax {
				return nil, err
			}
			if err := sleepWithContext(ctx, p.retryBase*time.Duration(1<<attempt)); err != nil {
				return nil, err
			}
			continue
		}
		return fromClaudeMessage(msg, time.Since(start).Milliseconds()), nil
	}
}

func (p *ClaudeProvider) newSDKClient() *anthropic.Client {
	opts := make([]option.RequestOption, 0, 4)
	if base := claudeSDKBaseURL(p.baseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if p.apiKey != "" {
		opts = append(opts, option.WithAPIKey(p.apiKey))
	} else if p.authToken != "" {
		opts = append(opts, option.WithAuthToken(p.authToken))
	}
	opts = append(opts, option.WithMaxRetries(0))
	opts = append(opts, option.WithHeader("anthropic-version", claudeAPIVersion))

	client := anthropic.NewClient(opts...)
	return &client
}

// claudeSDKBaseURL strips a trailing /v1; the SDK appends its own path.
func claudeSDKBaseURL(base string) string {
	base = strings.TrimSpace(strings.TrimRight(base, "/"))
	return strings.TrimSuffix(base, "/v1")
}

func toClaudeMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		role := anthropic.MessageParamRoleUser
		if strings.EqualFold(strings.TrimSpace(m.Role), "assistant") {
			role = anthropic.MessageParamRoleAssistant
		}
		out = append(out, anthropic.MessageParam{
			Role: role,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(m.Content),
			},
		})
	}
	return out
}

func fromClaudeMessage(msg *anthropic.Message, latencyMs int64) *Response {
	if msg == nil {
		return nil
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return &Response{
		Text:       sb.String(),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		LatencyMs: latencyMs,
	}
}

// ClaudeAPIError is a non-2xx response from the messages API.
type ClaudeAPIError struct {
	StatusCode int
	Status     string
	RequestID  string
	Type       string
	Message    string
}

func (e *ClaudeAPIError) Error() string {
	if e == nil {
		return "llm: claude: api error <nil>"
	}
	msg := strings.TrimSpace(e.Message)
	switch {
	case e.Type != "" && msg != "":
		return fmt.Sprintf("llm: claude: api error (%s): %s: %s", e.Status, e.Type, msg)
	case msg != "":
		return fmt.Sprintf("llm: claude: api error (%s): %s", e.Status, msg)
	default:
		return fmt.Sprintf("llm: claude: api error (%s)", e.Status)
	}
}

type claudeErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func normalizeClaudeError(err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *anthropic.Error
	if !errors.As(err, &sdkErr) {
		return err
	}

	apiErr := &ClaudeAPIError{
		StatusCode: sdkErr.StatusCode,
		RequestID:  sdkErr.RequestID,
	}
	if sdkErr.Response != nil {
		apiErr.Status = sdkErr.Response.Status
	} else if sdkErr.StatusCode != 0 {
		apiErr.Status = fmt.Sprintf("%d %s", sdkErr.StatusCode, http.StatusText(sdkErr.StatusCode))
	}
	if raw := strings.TrimSpace(sdkErr.RawJSON()); raw != "" {
		var env claudeErrorEnvelope
		if json.Unmarshal([]byte(raw), &env) == nil {
			apiErr.Type = env.Error.Type
			apiErr.Message = env.Error.Message
		}
	}
	return apiErr
}

func claudeShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *ClaudeAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 && apiErr.StatusCode <= 599
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
