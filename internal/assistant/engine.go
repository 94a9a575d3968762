package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/team-sapphire/vayazh/internal/log"
)

// promptTemplate fixes the persona and the refusal convention. The model
// answering "Don't know." is the signal that retrieval gave it nothing
// usable; the orchestrator rewrites that into the farm-specific fallback.
const promptTemplate = `Your name is VAYAZH. You are an expert in Agriculture.
Provide short and brief with practical advice
If you don't know the answer, simply respond with 'Don't know.'

CONTEXT: %s
QUESTION: %s`

// refusalAnswer is what Answer degrades to when the model is unreachable,
// so downstream fallback handling treats outages and unknowns the same way.
const refusalAnswer = "Don't know."

const generateTimeout = 10 * time.Second

// Generator produces model output for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenkitModel is the production Generator backed by a Gemini model
// through Genkit.
type GenkitModel struct {
	g         *genkit.Genkit
	modelName string
}

func NewGenkitModel(g *genkit.Genkit, modelName string) *GenkitModel {
	return &GenkitModel{g: g, modelName: modelName}
}

func (m *GenkitModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.modelName),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return resp.Text(), nil
}

// Engine renders the prompt and calls the model, rate-limited and
// timeout-bounded. It never returns an error: model failures degrade to
// the refusal answer so a single farmer's chat stays responsive.
type Engine struct {
	gen     Generator
	limiter *rate.Limiter
	logger  log.Logger
}

// NewEngine wraps a Generator. The limiter keeps a chatty client from
// exhausting the Gemini free-tier quota.
func NewEngine(gen Generator, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger,
	}
}

// Answer renders the prompt from retrieved context and the personalized
// question, and returns the model's reply trimmed of surrounding
// whitespace.
func (e *Engine) Answer(ctx context.Context, contextText, question string) string {
	if err := e.limiter.Wait(ctx); err != nil {
		e.logger.Warn("rate limit wait aborted", "error", err)
		return refusalAnswer
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, contextText, question)
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("model call failed", "error", err)
		return refusalAnswer
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return refusalAnswer
	}
	return out
}
