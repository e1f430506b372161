package banner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProber_Probe_FoundOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(0)

	assert.True(t, p.Probe(context.Background(), srv.URL+"/banner.png"))
}

func TestProber_Probe_MissOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProber(0)

	assert.False(t, p.Probe(context.Background(), srv.URL+"/banner.png"))
}

func TestProber_Probe_MissOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewProber(0)

	assert.False(t, p.Probe(context.Background(), srv.URL+"/banner.png"))
}

func TestProber_Probe_MissOnInvalidURL(t *testing.T) {
	p := NewProber(0)

	assert.False(t, p.Probe(context.Background(), "://not-a-url"))
}

func TestProber_Probe_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProber(time.Second)

	assert.False(t, p.Probe(ctx, srv.URL+"/banner.png"))
}

func TestNewProber_DefaultTimeout(t *testing.T) {
	p := NewProber(-1)

	assert.Equal(t, DefaultProbeTimeout, p.timeout)
}
