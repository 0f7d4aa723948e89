package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/fault"
)

type stubSearcher struct {
	results []Result
	err     error
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

func TestBraveSearchWithoutKeyFails(t *testing.T) {
	client := NewBraveClient("")
	_, err := client.Search(context.Background(), "nementium", 5)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.ProviderUnavailable))
}

func TestKeylessPrimaryDefersToSecondary(t *testing.T) {
	secondary := &stubSearcher{results: []Result{{Title: "Acme SL", URL: "https://acme.example"}}}

	client := NewClient(NewBraveClient(""), func(o *ClientOptions) { o.Secondary = secondary })
	results, err := client.Search(context.Background(), "acme", 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "https://acme.example", results[0].URL)
	assert.Equal(t, 1, secondary.calls)
}

func TestBraveSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-1", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "acme sl", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Acme SL","url":"https://acme.example","description":"Fabricante"},
			{"title":"Acme en LinkedIn","url":"https://linkedin.com/company/acme","description":"Perfil"}
		]}}`))
	}))
	defer srv.Close()

	client := NewBraveClient("token-1", func(o *BraveOptions) { o.Endpoint = srv.URL })
	results, err := client.Search(context.Background(), "acme sl", 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Acme SL", results[0].Title)
	assert.Equal(t, "https://acme.example", results[0].URL)
	assert.Equal(t, "Fabricante", results[0].Snippet)
}

func TestBraveSearchClampsCount(t *testing.T) {
	var gotCount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		_, _ = w.Write([]byte(`{"web":{"results":[]}}`))
	}))
	defer srv.Close()

	client := NewBraveClient("token-1", func(o *BraveOptions) { o.Endpoint = srv.URL })
	_, err := client.Search(context.Background(), "q", 50)
	require.NoError(t, err)
	assert.Equal(t, "10", gotCount)
}

func TestDuckDuckGoParsesResults(t *testing.T) {
	page := `<html><body>
		<div class="result">
			<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.example%2F">Acme SL</a>
			<a class="result__snippet" href="#">Fabricante de maquinaria</a>
		</div>
		<div class="result">
			<a class="result__a" href="https://other.example">Otro</a>
			<a class="result__snippet" href="#">Otra cosa</a>
		</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	client := NewDuckDuckGoClient(func(o *DuckDuckGoOptions) { o.Endpoint = srv.URL })
	results, err := client.Search(context.Background(), "acme", 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Acme SL", results[0].Title)
	assert.Equal(t, "https://acme.example/", results[0].URL)
	assert.Equal(t, "Fabricante de maquinaria", results[0].Snippet)
	assert.Equal(t, "https://other.example", results[1].URL)
}

func TestClientFallsBackToSecondary(t *testing.T) {
	primary := &stubSearcher{err: errors.New("backend down")}
	secondary := &stubSearcher{results: []Result{{Title: "ok", URL: "https://ok.example"}}}

	client := NewClient(primary, func(o *ClientOptions) { o.Secondary = secondary })
	results, err := client.Search(context.Background(), "q", 3)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFetchTextStripsChromeAndClamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><style>body{}</style><script>var x=1;</script></head>
			<body><nav>menu</nav><main>Contenido   principal
			de la    página</main><footer>pie</footer></body></html>`))
	}))
	defer srv.Close()

	fetcher := NewFetcher()
	text, err := fetcher.FetchText(context.Background(), srv.URL, 1000)
	require.NoError(t, err)

	assert.Contains(t, text, "Contenido principal de la página")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "pie")
	assert.NotContains(t, text, "var x=1")
}

func TestClampMax(t *testing.T) {
	assert.Equal(t, 5, ClampMax(0))
	assert.Equal(t, 1, ClampMax(1))
	assert.Equal(t, 10, ClampMax(99))
}
