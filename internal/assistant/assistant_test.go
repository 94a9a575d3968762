package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/team-sapphire/vayazh/internal/farmer"
	"github.com/team-sapphire/vayazh/internal/knowledge"
	"github.com/team-sapphire/vayazh/internal/log"
	"github.com/team-sapphire/vayazh/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	profile    *farmer.Profile
	profileErr error
	saveErr    error
	saved      []farmer.ChatTurn
}

func (f *fakeStore) CurrentProfile(context.Context) (*farmer.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeStore) SaveChatTurn(_ context.Context, turn farmer.ChatTurn) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, turn)
	return nil
}

type fakeWeather struct {
	snapshot *weather.Snapshot
	calls    int
}

func (f *fakeWeather) Current(_ context.Context, location string) (string, *weather.Snapshot) {
	f.calls++
	if f.snapshot == nil {
		return "Error fetching weather data.", nil
	}
	return "Weather in " + location, f.snapshot
}

type fakeIndex struct {
	results   []knowledge.Result
	err       error
	lastQuery string
}

func (f *fakeIndex) Insert(context.Context, knowledge.Chunk) error { return nil }

func (f *fakeIndex) Search(_ context.Context, text string, _ ...knowledge.SearchOption) ([]knowledge.Result, error) {
	f.lastQuery = text
	return f.results, f.err
}

func (f *fakeIndex) Len(context.Context) (int, error) { return len(f.results), nil }

type fakeAnswerer struct {
	answer     string
	lastCtx    string
	lastPrompt string
}

func (f *fakeAnswerer) Answer(_ context.Context, contextText, question string) string {
	f.lastCtx = contextText
	f.lastPrompt = question
	return f.answer
}

func testProfile() *farmer.Profile {
	return &farmer.Profile{
		ID:               7,
		Location:         "Coimbatore",
		LandSize:         "2.5",
		SoilType:         "red loam",
		IrrigationMethod: "drip",
		WaterSource:      "borewell",
	}
}

func newTestAssistant(idx knowledge.Index, eng Answerer, store ProfileStore, ws WeatherService) *Assistant {
	a := New(idx, eng, store, ws, Options{TopK: 4, MinSimilarity: 0.6}, log.NewNop())
	a.MarkReady()
	return a
}

func TestAskGroundedAnswer(t *testing.T) {
	idx := &fakeIndex{results: []knowledge.Result{
		{Chunk: knowledge.Chunk{ID: "c1", Text: "Red loam suits groundnut."}, Similarity: 0.9},
		{Chunk: knowledge.Chunk{ID: "c2", Text: "Drip irrigation conserves water."}, Similarity: 0.7},
	}}
	eng := &fakeAnswerer{answer: "Grow groundnut; drip irrigation fits your soil."}
	store := &fakeStore{profile: testProfile()}
	ws := &fakeWeather{snapshot: &weather.Snapshot{Description: "Clear sky", TemperatureC: 28, HumidityPct: 60, WindSpeedMS: 2}}

	a := newTestAssistant(idx, eng, store, ws)
	answer, err := a.Ask(context.Background(), "  what should I grow this season?  ")
	require.NoError(t, err)
	assert.Equal(t, "Grow groundnut; drip irrigation fits your soil.", answer)

	// Retrieval and the prompt both see the personalized query.
	assert.Contains(t, idx.lastQuery, "Farm Details: Location: Coimbatore")
	assert.Contains(t, idx.lastQuery, "Current Weather: Clear sky")
	assert.Contains(t, idx.lastQuery, "Query: what should I grow this season?")
	assert.Equal(t, idx.lastQuery, eng.lastPrompt)

	// Retrieved chunks become the prompt context, in rank order.
	assert.Equal(t, "Red loam suits groundnut.\n\nDrip irrigation conserves water.", eng.lastCtx)

	// The exchange is persisted with the trimmed question.
	require.Len(t, store.saved, 1)
	assert.Equal(t, "what should I grow this season?", store.saved[0].Question)
	assert.Equal(t, answer, store.saved[0].Answer)
	assert.Equal(t, int64(7), store.saved[0].FarmerID)
}

func TestAskRefusalBecomesFallback(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"exact refusal", "Don't know."},
		{"lowercase variant", "i don't know"},
		{"padded refusal", "  DON'T KNOW.  "},
		{"empty output", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{profile: testProfile()}
			a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{answer: tt.answer}, store, &fakeWeather{})

			answer, err := a.Ask(context.Background(), "how do I fix my tractor?")
			require.NoError(t, err)
			assert.Equal(t,
				"I'm here to help with agriculture-related questions for your 2.5 acre farm in Coimbatore. Please ask me about farming, crops, soil, or related topics!",
				answer)

			require.Len(t, store.saved, 1)
			assert.Equal(t, answer, store.saved[0].Answer, "fallback, not the refusal, is persisted")
		})
	}
}

func TestAskRefusalMentionedInAnswerSurvives(t *testing.T) {
	eng := &fakeAnswerer{answer: "I don't know the exact variety, but red loam generally suits groundnut."}
	a := newTestAssistant(&fakeIndex{}, eng, &fakeStore{profile: testProfile()}, &fakeWeather{})

	answer, err := a.Ask(context.Background(), "which variety?")
	require.NoError(t, err)
	assert.Equal(t, eng.answer, answer, "only exact refusal phrasings trigger the fallback")
}

func TestAskGreetingShortcut(t *testing.T) {
	store := &fakeStore{profile: testProfile()}
	eng := &fakeAnswerer{answer: "should not be called"}
	ws := &fakeWeather{}
	a := newTestAssistant(&fakeIndex{}, eng, store, ws)

	for _, greeting := range []string{"hi", "Hello", "HEY", "Good Morning", "good evening"} {
		answer, err := a.Ask(context.Background(), greeting)
		require.NoError(t, err)
		assert.Equal(t, "Hello from Coimbatore! How can I assist with your red loam today?", answer)
	}

	assert.Empty(t, eng.lastPrompt, "greetings must not reach the model")
	assert.Zero(t, ws.calls, "greetings must not fetch weather")
	assert.Empty(t, store.saved, "shortcut answers are not persisted")
}

func TestAskGreetingWithoutProfile(t *testing.T) {
	a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{}, &fakeStore{}, &fakeWeather{})

	answer, err := a.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from ! How can I assist with your a farm today?", answer)
}

func TestAskIdentityShortcut(t *testing.T) {
	store := &fakeStore{profile: testProfile()}
	a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{}, store, &fakeWeather{})

	for _, q := range []string{"who developed you?", "Who Created You?", "WHO MADE YOU?"} {
		answer, err := a.Ask(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, "I was developed by Team Sapphire.", answer)
	}
	assert.Empty(t, store.saved)
}

func TestAskNotReady(t *testing.T) {
	a := New(&fakeIndex{}, &fakeAnswerer{}, &fakeStore{}, &fakeWeather{}, Options{}, log.NewNop())

	_, err := a.Ask(context.Background(), "anything")
	require.ErrorIs(t, err, ErrNotReady)

	a.MarkReady()
	_, err = a.Ask(context.Background(), "anything")
	require.NoError(t, err)
}

func TestAskEmptyMessage(t *testing.T) {
	a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{}, &fakeStore{}, &fakeWeather{})

	_, err := a.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAskDegradesWhenCollaboratorsFail(t *testing.T) {
	// Profile lookup, weather, retrieval, and persistence all fail; the
	// model's answer still comes back.
	idx := &fakeIndex{err: errors.New("index offline")}
	eng := &fakeAnswerer{answer: "General advice: test your soil before fertilizing."}
	store := &fakeStore{profileErr: errors.New("db down"), saveErr: errors.New("db down")}

	a := newTestAssistant(idx, eng, store, &fakeWeather{})
	answer, err := a.Ask(context.Background(), "how much fertilizer?")
	require.NoError(t, err)
	assert.Equal(t, eng.answer, answer)

	assert.Equal(t, "", eng.lastCtx, "failed retrieval means empty context")
	assert.NotContains(t, eng.lastPrompt, "Farm Details", "no profile, no personalization")
}

func TestAskNoWeatherWithoutLocation(t *testing.T) {
	ws := &fakeWeather{snapshot: &weather.Snapshot{Description: "Clear"}}
	profile := testProfile()
	profile.Location = ""

	a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{answer: "ok"}, &fakeStore{profile: profile}, ws)
	_, err := a.Ask(context.Background(), "when to sow?")
	require.NoError(t, err)
	assert.Zero(t, ws.calls, "no location means no weather lookup")
}

func TestWeather(t *testing.T) {
	ws := &fakeWeather{snapshot: &weather.Snapshot{Description: "Clear", TemperatureC: 35, HumidityPct: 90}}
	a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{}, &fakeStore{profile: testProfile()}, ws)

	report, advice, snapshot := a.Weather(context.Background(), "")
	assert.Equal(t, "Weather in Coimbatore", report, "blank location uses the profile")
	require.NotNil(t, snapshot)
	assert.Len(t, advice, 2)
}

func TestWeatherNoLocationAnywhere(t *testing.T) {
	ws := &fakeWeather{}
	a := newTestAssistant(&fakeIndex{}, &fakeAnswerer{}, &fakeStore{}, ws)

	report, advice, snapshot := a.Weather(context.Background(), "")
	assert.Equal(t, "Weather data not available.", report)
	assert.Nil(t, snapshot)
	assert.Empty(t, advice)
	assert.Zero(t, ws.calls)
}

func TestComposeQuery(t *testing.T) {
	snapshot := &weather.Snapshot{Description: "Clear sky", TemperatureC: 28.5, HumidityPct: 60, WindSpeedMS: 2.1}

	got := ComposeQuery(testProfile(), snapshot, "what to grow?")
	want := "Farm Details: Location: Coimbatore, Land Size: 2.5 acres, Soil Type: red loam, Irrigation: drip, Water Source: borewell. " +
		"Current Weather: Clear sky, Temperature: 28.5°C, Humidity: 60%, Wind Speed: 2.1 m/s.\n" +
		"Query: what to grow?"
	assert.Equal(t, want, got)
}

func TestComposeQueryPartial(t *testing.T) {
	profile := testProfile()
	profile.SoilType = " "

	got := ComposeQuery(profile, nil, "what to grow?")
	assert.Contains(t, got, "Soil Type: unknown")
	assert.NotContains(t, got, "Current Weather")
	assert.True(t, strings.HasSuffix(got, "\nQuery: what to grow?"))

	bare := ComposeQuery(nil, nil, "what to grow?")
	assert.Equal(t, "\nQuery: what to grow?", bare)
}
