package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-sapphire/vayazh/internal/log"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Wheat Cultivation Guide</title><style>body{color:red}</style></head>
<body>
<script>console.log("tracking")</script>
<article>
<h1>Wheat Cultivation</h1>
<p>Wheat grows best in loamy soil with moderate irrigation. Sow after the first monsoon rains and rotate with legumes to restore nitrogen.</p>
</article>
</body>
</html>`

func TestFetchWebsite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewFetcher(log.NewNop())
	text := f.FetchWebsite(context.Background(), srv.URL)

	require.NotEmpty(t, text)
	assert.Contains(t, text, "loamy soil")
	assert.NotContains(t, text, "console.log", "script content must be stripped")
}

func TestFetchWebsiteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(log.NewNop())
	assert.Empty(t, f.FetchWebsite(context.Background(), srv.URL))
}

func TestFetchWebsiteUnreachable(t *testing.T) {
	f := NewFetcher(log.NewNop())
	assert.Empty(t, f.FetchWebsite(context.Background(), "http://127.0.0.1:1/nothing"))
}

func TestExtractPDFMissingFile(t *testing.T) {
	f := NewFetcher(log.NewNop())
	assert.Empty(t, f.ExtractPDF("testdata/does-not-exist.pdf"))
}

func TestSourcesNeverFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewFetcher(log.NewNop())
	docs := f.Sources(context.Background(),
		[]string{srv.URL, "http://127.0.0.1:1/offline"},
		[]string{"testdata/does-not-exist.pdf"})

	require.Len(t, docs, 3)
	assert.NotEmpty(t, docs[0].Text)
	assert.Empty(t, docs[1].Text, "unreachable source yields empty text, not an error")
	assert.Empty(t, docs[2].Text)
}
