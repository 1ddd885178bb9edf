package search

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/util/ptr"
)

type countingDoer struct {
	calls atomic.Int32
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return nil, errors.New("unexpected request")
}

type stubProvider struct {
	name     string
	url      string
	buildErr error
	parseErr error
	results  []Result
}

func (p *stubProvider) Name() string {
	if p.name == "" {
		return "stub"
	}
	return p.name
}

func (p *stubProvider) BuildRequest(ctx context.Context, _ Options) (*http.Request, error) {
	if p.buildErr != nil {
		return nil, p.buildErr
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
}

func (p *stubProvider) ParseResponse([]byte, Options) ([]Result, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.results, nil
}

func newOKServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWebSearchDuckDuckGo(t *testing.T) {
	fixture := loadFixture(t, "ddg_results.html")
	var (
		mu                sync.Mutex
		gotQuery, gotPath string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	results, err := WebSearch(context.Background(), Options{
		Query:      "rust programming",
		MaxResults: ptr.Ptr(3),
		Provider:   NewDuckDuckGoProvider(DDGConfig{BaseURL: server.URL}),
	})
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "/html/", gotPath)
	assert.Equal(t, "rust programming", gotQuery)
	mu.Unlock()
	require.Len(t, results, 3)
	for _, result := range results {
		assert.True(t, result.Valid())
		assert.Equal(t, ProviderDuckDuckGo, result.Provider)
		assert.NotEmpty(t, result.Domain)
	}
}

func TestWebSearchArxivByID(t *testing.T) {
	fixture := loadFixture(t, "arxiv_feed.xml")
	var gotIDs atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs.Store(r.URL.Query().Get("id_list"))
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	results, err := WebSearch(context.Background(), Options{
		ArxivIDs: []string{"2301.00001", "2301.00002"},
		Provider: NewArxivProvider(ArxivConfig{BaseURL: server.URL + "/api/query"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "2301.00001,2301.00002", gotIDs.Load())
	require.Len(t, results, 2)
	assert.Equal(t, "arxiv.org", results[0].Domain)
}

func TestWebSearchRejectsInvalidLimit(t *testing.T) {
	doer := &countingDoer{}
	for _, limit := range []int{0, -1} {
		_, err := WebSearch(context.Background(), Options{
			Query:      "golang",
			MaxResults: ptr.Ptr(limit),
			Provider:   NewDuckDuckGoProvider(DDGConfig{}),
			HTTPClient: doer,
		})
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, KindInvalidInput, KindOf(err))
	}
	assert.Zero(t, doer.calls.Load())
}

func TestWebSearchRequiresProvider(t *testing.T) {
	_, err := WebSearch(context.Background(), Options{Query: "golang"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestWebSearchBuildErrorSkipsNetwork(t *testing.T) {
	doer := &countingDoer{}
	_, err := WebSearch(context.Background(), Options{
		Query:      "  ",
		Provider:   NewDuckDuckGoProvider(DDGConfig{}),
		HTTPClient: doer,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, doer.calls.Load())
}

func TestWebSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("  down for\nmaintenance "))
	}))
	defer server.Close()

	_, err := WebSearch(context.Background(), Options{
		Query:    "golang",
		Provider: NewDuckDuckGoProvider(DDGConfig{BaseURL: server.URL}),
	})
	require.ErrorIs(t, err, ErrHTTP)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, ProviderDuckDuckGo, se.Provider)
	assert.Equal(t, "down for maintenance", se.Snippet)
	assert.Equal(t, "duckduckgo: http 503: Service Unavailable", se.Error())
}

func TestWebSearchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	_, err := WebSearch(context.Background(), Options{
		Query:    "golang",
		Provider: NewDuckDuckGoProvider(DDGConfig{BaseURL: baseURL}),
	})
	require.ErrorIs(t, err, ErrTransport)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Timeout)
	assert.Zero(t, se.StatusCode)
}

func TestWebSearchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := WebSearch(ctx, Options{
		Query:    "golang",
		Provider: NewDuckDuckGoProvider(DDGConfig{BaseURL: server.URL}),
	})
	require.ErrorIs(t, err, ErrTransport)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Timeout)
	assert.Contains(t, se.Error(), "request timed out")
}

func TestWebSearchParseError(t *testing.T) {
	body := "<html><body>Rate limited</body></html>"
	server := newOKServer(t, body)

	_, err := WebSearch(context.Background(), Options{
		Query:    "transformers",
		Provider: NewArxivProvider(ArxivConfig{BaseURL: server.URL + "/api/query"}),
	})
	require.ErrorIs(t, err, ErrParse)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ProviderArxiv, se.Provider)
	assert.Equal(t, excerpt([]byte(body)), se.Snippet)
}

func TestWebSearchFiltersAndTruncates(t *testing.T) {
	server := newOKServer(t, "ok")
	provider := &stubProvider{
		url: server.URL,
		results: []Result{
			{Title: "One", URL: "https://one.example/"},
			{Title: "", URL: "https://blank-title.example/"},
			{Title: "Relative", URL: "/relative"},
			{Title: "Two", URL: "https://two.example/a", Provider: "custom"},
			{Title: "Ftp", URL: "ftp://files.example/"},
			{Title: "Three", URL: "https://three.example/"},
		},
	}

	results, err := WebSearch(context.Background(), Options{
		Query:      "anything",
		MaxResults: ptr.Ptr(2),
		Provider:   provider,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "One", URL: "https://one.example/", Domain: "one.example", Provider: "stub"}, results[0])
	assert.Equal(t, "custom", results[1].Provider)
	assert.Equal(t, "two.example", results[1].Domain)
}

func TestWebSearchClassifiesUntypedProviderErrors(t *testing.T) {
	server := newOKServer(t, "ok")
	boom := errors.New("boom")

	_, err := WebSearch(context.Background(), Options{
		Query:    "anything",
		Provider: &stubProvider{buildErr: boom},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, boom)

	_, err = WebSearch(context.Background(), Options{
		Query:    "anything",
		Provider: &stubProvider{url: server.URL, parseErr: boom},
	})
	require.ErrorIs(t, err, ErrParse)
	require.ErrorIs(t, err, boom)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "stub", se.Provider)
}

func TestWebSearchLogsToContextLogger(t *testing.T) {
	server := newOKServer(t, "ok")
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	_, err := WebSearch(ctx, Options{
		Query:    "anything",
		Provider: &stubProvider{url: server.URL, results: []Result{{Title: "One", URL: "https://one.example/"}}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"Performing search"`)
	assert.Contains(t, buf.String(), `"provider":"stub"`)
	assert.Contains(t, buf.String(), `"search_id":"`)
	assert.Contains(t, buf.String(), `"count":1`)
}

func TestWebSearchDoesNotModifySharedErrors(t *testing.T) {
	_, err := WebSearch(context.Background(), Options{
		Query:    "anything",
		Provider: &stubProvider{name: "alpha", buildErr: ErrInvalidInput},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "alpha: invalid input", err.Error())
	assert.Empty(t, ErrInvalidInput.Provider)

	_, err = WebSearch(context.Background(), Options{
		Query:    "anything",
		Provider: &stubProvider{name: "beta", buildErr: ErrInvalidInput},
	})
	assert.Equal(t, "beta: invalid input", err.Error())
}

func TestWebSearchConcurrentProviderErrors(t *testing.T) {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "alpha"
			if i%2 == 1 {
				name = "beta"
			}
			_, errs[i] = WebSearch(context.Background(), Options{
				Query:    "anything",
				Provider: &stubProvider{name: name, buildErr: ErrParse},
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		var se *Error
		require.ErrorAs(t, err, &se)
		if i%2 == 1 {
			assert.Equal(t, "beta", se.Provider)
		} else {
			assert.Equal(t, "alpha", se.Provider)
		}
	}
	assert.Empty(t, ErrParse.Provider)
}

func TestWebSearchCanceled(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err := WebSearch(ctx, Options{
		Query:    "golang",
		Provider: NewDuckDuckGoProvider(DDGConfig{BaseURL: server.URL}),
	})
	require.ErrorIs(t, err, ErrTransport)
	require.ErrorIs(t, err, context.Canceled)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Timeout)
	assert.Contains(t, se.Error(), "request canceled")
}

func TestWebSearchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := WebSearch(context.Background(), Options{
		Query:    "golang",
		Provider: NewDuckDuckGoProvider(DDGConfig{BaseURL: server.URL}),
	})
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, 30*time.Second, se.RetryAfter)
	assert.Contains(t, Hint(err), "retry after 30s")
}
