// Package insight asks a generative-language collaborator for a
// one-sentence reading of the currently filtered records. The collaborator
// is strictly best-effort: no records, no credential, or any failure yields
// a fixed fallback sentence, and nothing else in the system ever waits on
// or breaks because of it.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"revpulse/pkg/contracts/domain"
)

// Fallback is the fixed sentence served when no insight can be generated.
const Fallback = "No insight is available right now; the dashboard figures below are unaffected."

// DefaultModel is used when the config does not name one.
const DefaultModel = "gemini-1.5-flash"

// Client talks to the Gemini API, lazily initializing the connection on
// first use so a missing credential costs nothing at startup.
type Client struct {
	apiKey    string
	modelName string
	logger    *slog.Logger

	mu         sync.Mutex
	client     *genai.Client
	generative *genai.GenerativeModel

	// generate is swapped out in tests; the default implementation calls
	// the Gemini API.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewClient creates an insight client. An empty apiKey disables the
// collaborator; Generate then always answers with Fallback.
func NewClient(apiKey, modelName string, logger *slog.Logger) *Client {
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiKey:    apiKey,
		modelName: modelName,
		logger:    logger.With(slog.String("component", "insight")),
	}
	c.generate = c.generateContent
	return c
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Generate returns a one-sentence insight for up to MaxRecords records, or
// Fallback when no records are supplied, the collaborator is disabled, or
// the call fails. Errors are logged, never returned, because insight
// failure must stay invisible to the rest of the dashboard.
func (c *Client) Generate(ctx context.Context, records []domain.DataRecord) string {
	if len(records) == 0 {
		return Fallback
	}
	if !c.Enabled() {
		c.logger.DebugContext(ctx, "insight disabled, no API key configured")
		return Fallback
	}

	text, err := c.generate(ctx, BuildPrompt(records))
	if err != nil {
		c.logger.WarnContext(ctx, "insight generation failed",
			slog.String("error", err.Error()))
		return Fallback
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback
	}
	return text
}

// ensureClient initializes the Gemini connection once.
func (c *Client) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}
	c.client = client
	c.generative = client.GenerativeModel(c.modelName)
	return nil
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	if err := c.ensureClient(ctx); err != nil {
		return "", err
	}

	resp, err := c.generative.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

// Close releases the underlying connection, if one was ever opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	c.generative = nil
	return err
}
