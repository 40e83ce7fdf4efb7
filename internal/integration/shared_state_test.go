package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rubconv-service/internal/bootstrap"
	"rubconv-service/internal/config"
	httpserver "rubconv-service/internal/infrastructure/http"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

// TestE2E_WorkerSharesRedisState runs the api and the standalone worker on
// one redis key, the way the two binaries are deployed.
func TestE2E_WorkerSharesRedisState(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	t.Setenv("STATE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("STORAGE", "none")
	t.Setenv("PROVIDER", "fake")
	t.Setenv("AUTO_FETCH_INTERVAL_MS", "20")

	api, cleanupAPI, err := bootstrap.InitAPI(context.Background())
	require.NoError(t, err)
	ts := httptest.NewServer(httpserver.NewRouter(api.Server))
	t.Cleanup(func() {
		ts.Close()
		api.Service.Wait()
		cleanupAPI()
	})
	base := ts.URL

	call(t, http.MethodPatch, base+"/preferences", `{"amount":"1000"}`, http.StatusOK)
	call(t, http.MethodPost, base+"/rates/refresh", "", http.StatusOK)
	call(t, http.MethodPost, base+"/history", "", http.StatusCreated)

	w, cleanupWorker, err := bootstrap.InitWorker(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		cleanupWorker()
	})

	blob := func() string {
		s, err := mr.Get(config.DefaultStateKey)
		require.NoError(t, err)
		return s
	}
	history := func() int {
		var st struct {
			History []json.RawMessage `json:"history"`
		}
		require.NoError(t, json.Unmarshal([]byte(blob()), &st))
		return len(st.History)
	}

	before := blob()
	require.Eventually(t, func() bool { return blob() != before }, 2*time.Second, 10*time.Millisecond, "worker tick writes fresh quotes")
	require.Equal(t, 1, history(), "worker keeps the api's history")
	require.Len(t, getView(t, base).State.History, 1)

	// entries saved after the worker started survive its next ticks
	call(t, http.MethodPost, base+"/history", "", http.StatusCreated)
	mid := blob()
	require.Eventually(t, func() bool { return blob() != mid }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 2, history())

	// the worker honors the toggle made through the api
	call(t, http.MethodPatch, base+"/preferences", `{"auto_fetch":false}`, http.StatusOK)
	time.Sleep(60 * time.Millisecond)
	idle := blob()
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, idle, blob())
	require.Equal(t, 2, history())
}
