// Package assistant orchestrates the answering pipeline: shortcut
// handling, profile and weather lookup, retrieval, prompt rendering,
// fallback detection, and history persistence.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/team-sapphire/vayazh/internal/farmer"
	"github.com/team-sapphire/vayazh/internal/knowledge"
	"github.com/team-sapphire/vayazh/internal/log"
	"github.com/team-sapphire/vayazh/internal/weather"
)

var (
	// ErrNotReady is returned while the knowledge index is still being
	// built at startup.
	ErrNotReady = errors.New("assistant: knowledge index not ready")

	// ErrEmptyMessage is returned for blank questions.
	ErrEmptyMessage = errors.New("assistant: empty message")
)

// Shortcut inputs are matched case-insensitively against the whole
// message. Shortcut answers skip retrieval, the model, and history.
var greetings = map[string]struct{}{
	"hi":           {},
	"hello":        {},
	"hey":          {},
	"good morning": {},
	"good evening": {},
}

var identityQuestions = map[string]struct{}{
	"who developed you?": {},
	"who created you?":   {},
	"who made you?":      {},
}

const identityAnswer = "I was developed by Team Sapphire."

// ProfileStore is the slice of the farmer store the assistant needs.
type ProfileStore interface {
	CurrentProfile(ctx context.Context) (*farmer.Profile, error)
	SaveChatTurn(ctx context.Context, turn farmer.ChatTurn) error
}

// WeatherService fetches current conditions for a location.
type WeatherService interface {
	Current(ctx context.Context, location string) (string, *weather.Snapshot)
}

// Answerer turns retrieved context and a personalized question into an
// answer. Implemented by Engine.
type Answerer interface {
	Answer(ctx context.Context, contextText, question string) string
}

// Assistant answers farming questions personalized to the saved farm
// profile. It starts not ready; MarkReady is called once the knowledge
// index has been built.
type Assistant struct {
	index   knowledge.Index
	engine  Answerer
	store   ProfileStore
	weather WeatherService
	logger  log.Logger

	topK          int
	minSimilarity float32

	ready atomic.Bool
}

// Options tunes retrieval.
type Options struct {
	TopK          int
	MinSimilarity float32
}

func New(index knowledge.Index, engine Answerer, store ProfileStore, ws WeatherService, opts Options, logger log.Logger) *Assistant {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Assistant{
		index:         index,
		engine:        engine,
		store:         store,
		weather:       ws,
		logger:        logger,
		topK:          opts.TopK,
		minSimilarity: opts.MinSimilarity,
	}
}

// MarkReady opens the assistant for questions.
func (a *Assistant) MarkReady() { a.ready.Store(true) }

// Ready reports whether the knowledge index has been built.
func (a *Assistant) Ready() bool { return a.ready.Load() }

// Ask answers one question. Collaborator failures (profile lookup,
// weather, retrieval, model, persistence) degrade the answer rather than
// failing the request; only a blank message or a not-yet-ready index
// produce errors.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if !a.ready.Load() {
		return "", ErrNotReady
	}

	query := strings.TrimSpace(message)
	if query == "" {
		return "", ErrEmptyMessage
	}
	lower := strings.ToLower(query)

	profile, err := a.store.CurrentProfile(ctx)
	if err != nil {
		a.logger.Warn("loading farmer profile failed, answering unpersonalized", "error", err)
		profile = nil
	}

	if _, ok := greetings[lower]; ok {
		return greetingAnswer(profile), nil
	}
	if _, ok := identityQuestions[lower]; ok {
		return identityAnswer, nil
	}

	var snapshot *weather.Snapshot
	if profile != nil && profile.Location != "" {
		_, snapshot = a.weather.Current(ctx, profile.Location)
	}

	personalized := ComposeQuery(profile, snapshot, query)

	results, err := a.index.Search(ctx, personalized,
		knowledge.WithTopK(a.topK),
		knowledge.WithMinSimilarity(a.minSimilarity))
	if err != nil {
		a.logger.Warn("retrieval failed, answering without context", "error", err)
		results = nil
	}

	answer := a.engine.Answer(ctx, joinChunks(results), personalized)
	if isRefusal(answer) {
		answer = fallbackAnswer(profile)
	}

	turn := farmer.ChatTurn{Question: query, Answer: answer}
	if profile != nil {
		turn.FarmerID = profile.ID
	}
	if err := a.store.SaveChatTurn(ctx, turn); err != nil {
		a.logger.Warn("saving chat turn failed", "error", err)
	}

	return answer, nil
}

// Weather returns the report, advice lines, and snapshot for a location.
// A blank location falls back to the saved profile's location.
func (a *Assistant) Weather(ctx context.Context, location string) (string, []string, *weather.Snapshot) {
	location = strings.TrimSpace(location)
	if location == "" {
		if profile, err := a.store.CurrentProfile(ctx); err == nil && profile != nil {
			location = profile.Location
		}
	}
	if location == "" {
		return "Weather data not available.", nil, nil
	}

	report, snapshot := a.weather.Current(ctx, location)
	return report, weather.Advice(snapshot), snapshot
}

// isRefusal detects the model's "unknown" convention from the prompt
// template. Matching is exact on the two known refusal phrasings, not a
// substring scan, so answers that merely mention not knowing survive.
func isRefusal(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "don't know.", "i don't know", "":
		return true
	}
	return false
}

func fallbackAnswer(profile *farmer.Profile) string {
	landSize, location := "unknown", "unknown"
	if profile != nil {
		landSize = orUnknown(profile.LandSize)
		location = orUnknown(profile.Location)
	}
	return fmt.Sprintf(
		"I'm here to help with agriculture-related questions for your %s acre farm in %s. Please ask me about farming, crops, soil, or related topics!",
		landSize, location)
}

func greetingAnswer(profile *farmer.Profile) string {
	location, soil := "", "a farm"
	if profile != nil {
		location = profile.Location
		if strings.TrimSpace(profile.SoilType) != "" {
			soil = profile.SoilType
		}
	}
	return fmt.Sprintf("Hello from %s! How can I assist with your %s today?", location, soil)
}

func joinChunks(results []knowledge.Result) string {
	if len(results) == 0 {
		return ""
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}
