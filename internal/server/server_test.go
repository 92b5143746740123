package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/llmariner/iris-inference-server/internal/classifier"
	"github.com/llmariner/iris-inference-server/internal/rate"
	"github.com/llmariner/iris-inference-server/internal/testutil"
	"github.com/stretchr/testify/assert"
)

const validPredictBody = `{"sepal_length": 5.1, "sepal_width": 3.5, "petal_length": 1.4, "petal_width": 0.2}`

func TestServer(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	assert.NoError(t, err)

	srv, _ := newTestServer(t, newLoadedLoader(t))
	go func() {
		assert.NoError(t, srv.RunWithListener(l))
	}()
	<-srv.ready

	baseURL := fmt.Sprintf("http://localhost:%d", l.Addr().(*net.TCPAddr).Port)

	resp, err := http.Get(baseURL + "/")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, resp.Body.Close())

	resp, err = http.Get(baseURL + "/model_status")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, resp.Body.Close())

	// Both forms of the predict path are served.
	for _, path := range []string{"/predict/", "/predict"} {
		resp, err = http.Post(baseURL+path, "application/json", strings.NewReader(validPredictBody))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NoError(t, resp.Body.Close())
	}

	resp, err = http.Get(baseURL + "/no_such_path")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NoError(t, resp.Body.Close())

	err = srv.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestIsReady(t *testing.T) {
	srv, _ := newTestServer(t, newLoadedLoader(t))
	ready, msg := srv.IsReady()
	assert.False(t, ready)
	assert.NotEmpty(t, msg)

	l, err := net.Listen("tcp", ":0")
	assert.NoError(t, err)
	go func() {
		assert.NoError(t, srv.RunWithListener(l))
	}()
	<-srv.ready

	ready, _ = srv.IsReady()
	assert.True(t, ready)

	err = srv.Shutdown(context.Background())
	assert.NoError(t, err)
}

func newTestServer(t *testing.T, loader *classifier.Loader) (*S, *fakeMetricsMonitor) {
	logger := testutil.NewTestLogger(t)
	fm := &fakeMetricsMonitor{}
	return New(loader, fm, rate.NewLimiter(rate.Config{}, logger), logger), fm
}

func newLoadedLoader(t *testing.T) *classifier.Loader {
	l := classifier.NewLoader("../../model", testutil.NewTestLogger(t))
	assert.NoError(t, l.Load())
	return l
}

type fakeMetricsMonitor struct {
	classNames []string
	mu         sync.Mutex
}

func (f *fakeMetricsMonitor) ObservePrediction(className string, confidence float64, latency time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classNames = append(f.classNames, className)
}

func (f *fakeMetricsMonitor) observedClassNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classNames
}
