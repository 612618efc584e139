package drugbank

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlosMume/CareMind/internal/retry"
)

func fastOptions(baseURL string) Options {
	return Options{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MinInterval: time.Microsecond,
		Retry:       retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond},
	}
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/drugs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "aspirin", r.URL.Query().Get("name"))
		_, _ = w.Write([]byte(`[{"id": "DB00945", "name": "Aspirin"}]`))
	})
	mux.HandleFunc("/drugs/DB00945", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"indication": "Pain relief and antipyretic use.",
			"contraindications": "Active peptic ulcer.",
			"pregnancy_category": "C",
			"drug_interactions": [
				{"name": "Warfarin", "description": "Increased bleeding risk."},
				{"drug": "Ibuprofen", "text": "Reduced antiplatelet effect."},
				{"name": "NoDescription"}
			]
		}`))
	})
	return httptest.NewServer(mux)
}

func TestFetchPicksStructuredFields(t *testing.T) {
	t.Parallel()

	srv := newAPIServer(t)
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)

	res, err := c.Fetch(context.Background(), "aspirin")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.Fields)

	assert.Equal(t, "Pain relief and antipyretic use.", res.Fields.Indications)
	assert.Equal(t, "Active peptic ulcer.", res.Fields.Contraindications)
	assert.Equal(t, "C", res.Fields.PregnancyCategory)
	assert.Equal(t,
		"Warfarin: Increased bleeding risk.；Ibuprofen: Reduced antiplatelet effect.",
		res.Fields.Interactions)
}

func TestFetchAbsentOnEmptySearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)

	res, err := c.Fetch(context.Background(), "aspirin")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestFetchMalformedPayloadNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`this is not json`))
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)

	_, err := c.Fetch(context.Background(), "aspirin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode drugbank response")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"indication": "x"}`))
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)

	res, err := c.Fetch(context.Background(), "aspirin")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "x", res.Fields.Indications)
}

func TestInteractionSummaryCap(t *testing.T) {
	t.Parallel()

	var entries []string
	for i := 0; i < 40; i++ {
		entries = append(entries, fmt.Sprintf(`{"name": "Drug%d", "description": "d%d"}`, i, i))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, `{"drug_interactions": [%s]}`, strings.Join(entries, ","))
	}))
	defer srv.Close()

	c := NewClient(fastOptions(srv.URL), nil)

	res, err := c.Fetch(context.Background(), "aspirin")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, maxInteractions, strings.Count(res.Fields.Interactions, "；")+1)
}

func TestAvailableRequiresKey(t *testing.T) {
	t.Parallel()

	assert.False(t, NewClient(Options{}, nil).Available())
	assert.True(t, NewClient(Options{APIKey: "k"}, nil).Available())
}
