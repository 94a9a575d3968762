package knowledge

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"
)

// Embedder maps text to a fixed-length vector. Implementations must be
// deterministic for identical input and side-effect free.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// GenkitEmbedder adapts a Genkit ai.Embedder to the Embedder interface.
// Any transport or model failure is reported as ErrEmbedderUnavailable so
// callers can distinguish "model down" from programming errors.
type GenkitEmbedder struct {
	embedder ai.Embedder
}

// NewGenkitEmbedder wraps the given Genkit embedder.
func NewGenkitEmbedder(embedder ai.Embedder) *GenkitEmbedder {
	return &GenkitEmbedder{embedder: embedder}
}

// EmbedText embeds a single text.
//
// The embedder model must be configured for VectorDimension dimensions;
// the pgvector schema and the memory index both assume a fixed size for
// the lifetime of the process.
func (g *GenkitEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedderUnavailable, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbedderUnavailable)
	}

	return resp.Embeddings[0].Embedding, nil
}

// EmbeddingFunc adapts an Embedder to chromem-go's callback type.
// chromem-go normalizes vectors itself, so no manual normalization is
// needed here.
func EmbeddingFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return e.EmbedText(ctx, text)
	}
}
