// Package llm is the generation bridge: it turns a retrieved chunk and
// a question into a natural-language answer via a locally hosted
// LM Studio model. Transport, timeout and retry policy live here, not
// in the retrieval core.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrUnreachable indicates the model server could not be reached or
// did not answer in time. Callers degrade to the raw chunk text.
var ErrUnreachable = errors.New("model server unreachable")

// Style selects the system message and token budget for an answer.
type Style string

const (
	StyleStandard Style = "standard"
	StyleDetailed Style = "detailed"
	StyleQuick    Style = "quick"
)

var systemMessages = map[Style]string{
	StyleStandard: "You are a helpful nursing chatbot. Only answer based on the context provided. Focus on practical nursing considerations.",
	StyleDetailed: "You are an expert nursing educator. Provide detailed, evidence-based answers using only the context provided. Include step-by-step procedures when applicable.",
	StyleQuick:    "You are a nursing assistant. Provide concise, actionable answers based on the context provided. Focus on immediate actions and key points.",
}

var styleMaxTokens = map[Style]int{
	StyleStandard: 500,
	StyleDetailed: 800,
	StyleQuick:    200,
}

// Client talks to the LM Studio chat-completions endpoint.
type Client struct {
	client      *openai.Client
	model       string
	temperature float64
	timeout     time.Duration
}

func NewClient(baseURL, model string, temperature float64, timeout time.Duration) *Client {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey("lm-studio"),
		// Retry policy lives in Generate's backoff loop, not the SDK.
		option.WithMaxRetries(0),
	)
	return &Client{
		client:      &client,
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}
}

// BuildPrompt concatenates the retrieved chunk and the question in the
// fixed prompt shape the knowledge core contracts to produce.
func BuildPrompt(chunk, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", chunk, question)
}

// BuildDetailedPrompt is the long-form register: it asks the model for
// nursing considerations, safety implications and protocols alongside
// the direct answer.
func BuildDetailedPrompt(chunk, question string) string {
	return BuildPrompt(chunk, question) + `

Please provide a comprehensive nursing-focused answer based on the context provided. Include:
1. Direct answer to the question
2. Key nursing considerations
3. Safety implications if applicable
4. Any relevant protocols or procedures

Keep your response professional and focused on nursing practice.`
}

// BuildQuickPrompt is the terse register.
func BuildQuickPrompt(chunk, question string) string {
	return BuildPrompt(chunk, question) + "\n\nProvide a brief, actionable answer:"
}

// PromptFor builds the prompt for the given style.
func PromptFor(style Style, chunk, question string) string {
	switch style {
	case StyleDetailed:
		return BuildDetailedPrompt(chunk, question)
	case StyleQuick:
		return BuildQuickPrompt(chunk, question)
	default:
		return BuildPrompt(chunk, question)
	}
}

// Generate sends the prompt to the model under the style's system
// message and returns the generated text. The call carries an explicit
// timeout and retries transient transport failures with exponential
// backoff; API rejections fail immediately.
func (c *Client) Generate(ctx context.Context, style Style, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	system, ok := systemMessages[style]
	if !ok {
		system = systemMessages[StyleStandard]
	}
	maxTokens := styleMaxTokens[style]
	if maxTokens == 0 {
		maxTokens = styleMaxTokens[StyleStandard]
	}

	var answer string
	operation := func() error {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			},
			Model:       openai.ChatModel(c.model),
			Temperature: openai.Float(c.temperature),
			MaxTokens:   openai.Int(int64(maxTokens)),
		})
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("model returned no choices"))
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = c.timeout

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return answer, nil
}

// CheckConnection probes the models endpoint to verify LM Studio is up.
func (c *Client) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}

// isTransient reports whether a failure is worth retrying: server-side
// errors and rate limits are, client-side rejections are not, and
// anything that never produced an API response (connection refused,
// timeout) is.
func isTransient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return true
}
