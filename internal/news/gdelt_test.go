package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGDELTProvider_BuildQuery(t *testing.T) {
	p := NewGDELTProvider([]string{"cnn.com", "foxnews.com"}, []string{"earnings", "price target"})
	assert.Equal(t,
		`("Apple Inc." OR AAPL) (domain:cnn.com OR domain:foxnews.com) ("earnings" OR "price target")`,
		p.BuildQuery("Apple Inc.", "AAPL"))
}

func TestGDELTProvider_Headlines(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[
			{"title":"Apple earnings beat","domain":"cnn.com","seendate":"20250102T120000Z","url":"https://cnn.com/a"},
			{"title":null,"domain":"foxnews.com"},
			{"title":"Third","domain":"cnn.com","seendate":"","url":"u3"}
		]}`))
	}))
	defer srv.Close()

	now := time.Date(2025, 1, 5, 10, 30, 0, 0, time.UTC)
	p := NewGDELTProvider([]string{"cnn.com"}, []string{"earnings"},
		WithGDELTBaseURL(srv.URL),
		WithGDELTRateLimit(100),
		WithGDELTClock(func() time.Time { return now }))

	hs, err := p.Headlines(context.Background(), "Apple Inc.", "AAPL", 3, 2)
	require.NoError(t, err)
	require.Len(t, hs, 2)

	assert.Equal(t, "Apple earnings beat", hs[0].Title)
	assert.Equal(t, "cnn.com", hs[0].Domain)
	assert.Equal(t, "20250102T120000Z", hs[0].SeenAt)
	assert.Equal(t, "https://cnn.com/a", hs[0].URL)

	// missing and null fields default to empty strings
	assert.Equal(t, "", hs[1].Title)
	assert.Equal(t, "foxnews.com", hs[1].Domain)
	assert.Equal(t, "", hs[1].URL)

	assert.Equal(t, "artlist", got.Get("mode"))
	assert.Equal(t, "json", got.Get("format"))
	assert.Equal(t, "datedesc", got.Get("sort"))
	assert.Equal(t, "2", got.Get("maxrecords"))
	assert.Equal(t, "20250102103000", got.Get("startdatetime"))
	assert.Equal(t, "20250105103000", got.Get("enddatetime"))
	assert.Contains(t, got.Get("query"), "AAPL")
}

func TestGDELTProvider_MaxRecordsCapped(t *testing.T) {
	var maxrecords string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		maxrecords = r.URL.Query().Get("maxrecords")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewGDELTProvider(nil, nil, WithGDELTBaseURL(srv.URL), WithGDELTRateLimit(100))
	hs, err := p.Headlines(context.Background(), "X", "X", 3, 1000)
	require.NoError(t, err)
	assert.Empty(t, hs)
	assert.Equal(t, "250", maxrecords)
}

func TestGDELTProvider_Non200IsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewGDELTProvider(nil, nil, WithGDELTBaseURL(srv.URL), WithGDELTRateLimit(100))
	hs, err := p.Headlines(context.Background(), "X", "X", 3, 25)
	require.NoError(t, err)
	assert.Empty(t, hs)
}

func TestGDELTProvider_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`Please limit requests to one every 5 seconds`))
	}))
	defer srv.Close()

	p := NewGDELTProvider(nil, nil, WithGDELTBaseURL(srv.URL), WithGDELTRateLimit(100))
	hs, err := p.Headlines(context.Background(), "X", "X", 3, 25)
	require.NoError(t, err)
	assert.Empty(t, hs)
}
