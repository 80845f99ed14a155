package trigger

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/pkg/httpclient"
)

func TestCallAsync_AppendsRecordID(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	done := CallAsync(srv.URL+"/hook?id=", "sub-1", httpclient.NewStandardClient())

	select {
	case id := <-got:
		assert.Equal(t, "sub-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger was not called")
	}
	<-done
}

func TestCallAsync_EmptyURLIsNoop(t *testing.T) {
	done := CallAsync("", "sub-1", httpclient.NewStandardClient())

	select {
	case <-done:
	default:
		require.Fail(t, "expected closed channel")
	}
}

func TestCallAsync_ServerErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	select {
	case <-CallAsync(srv.URL+"?id=", "sub-2", httpclient.NewStandardClient()):
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not finish")
	}
}
