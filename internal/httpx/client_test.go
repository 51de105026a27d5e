package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoRetriesOnceOn503(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := New(5 * time.Second).WithMaxRetries(1)
	res, err := client.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, []byte("ok"), res.Body)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDoRetriesOnceOnTimeout(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			time.Sleep(500 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := New(100 * time.Millisecond).WithMaxRetries(1)
	res, err := client.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, 2, res.Attempts)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDoStopsWhenCallerContextExpires(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client := New(5 * time.Second).WithMaxRetries(3)
	_, err := client.Get(ctx, srv.URL)

	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDoDoesNotRetryOn404(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(5 * time.Second).WithMaxRetries(3)
	_, err := client.Get(context.Background(), srv.URL)

	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(5 * time.Second).WithMaxRetries(1)
	_, err := client.Get(context.Background(), srv.URL)

	require.Error(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHeadReportsStatusWithoutRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(5 * time.Second)
	status, err := client.Head(context.Background(), srv.URL)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(&StatusError{StatusCode: 503}))
	require.False(t, IsRetryable(&StatusError{StatusCode: 400}))
	require.False(t, IsRetryable(nil))
	require.False(t, IsRetryable(context.Canceled))
	require.True(t, IsRetryable(context.DeadlineExceeded))
	require.True(t, IsRetryable(errors.New("connection refused")))
}
