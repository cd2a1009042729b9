package faucet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestFaucetService(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var query atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query.Store(r.URL.Query())
			w.Write([]byte(`{"success":true}`))
		}))
		defer server.Close()

		svc, err := NewService(server.URL+"/faucet", nil)
		require.NoError(t, err)

		ok, err := svc.RequestFunds(context.Background(), "addr", 1000)
		require.NoError(t, err)
		require.True(t, ok)

		q := query.Load().(url.Values)
		require.Equal(t, []string{"addr"}, q["address"])
		require.Equal(t, []string{"1000"}, q["amount"])
	})

	t.Run("refused", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte(`{"success":false,"error":"rate limited"}`))
		}))
		defer server.Close()

		svc, err := newService(server.URL, time.Millisecond, 2, nil)
		require.NoError(t, err)

		ok, err := svc.RequestFunds(context.Background(), "addr", 1000)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"success":true}`))
		}))
		defer server.Close()

		logger, hook := test.NewNullLogger()
		logger.SetLevel(log.DebugLevel)
		svc, err := newService(server.URL, time.Millisecond, 2, logger)
		require.NoError(t, err)

		ok, err := svc.RequestFunds(context.Background(), "addr", 1000)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, int32(3), atomic.LoadInt32(&calls))

		entries := hook.AllEntries()
		require.Len(t, entries, 2)
		for _, e := range entries {
			require.Equal(t, "faucet request failed", e.Message)
			require.Equal(t, "addr", e.Data["address"])
		}
	})

	t.Run("gives up", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc, err := newService(server.URL, time.Millisecond, 2, nil)
		require.NoError(t, err)

		_, err = svc.RequestFunds(context.Background(), "addr", 1000)
		require.Error(t, err)
		require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("invalid response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		svc, err := newService(server.URL, time.Millisecond, 2, nil)
		require.NoError(t, err)

		_, err = svc.RequestFunds(context.Background(), "addr", 1000)
		require.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewService("not a url", nil)
		require.Error(t, err)
	})
}
