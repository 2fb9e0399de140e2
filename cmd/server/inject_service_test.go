package main

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
)

func TestProvideRestyClientNoRetry(t *testing.T) {
	var attempts int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)

		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("response writer is not a hijacker")
		}

		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatal(err)
		}

		conn.Close()
	}))
	defer svr.Close()

	client := provideRestyClient(viper.New())
	if client.RetryCount != 0 {
		t.Fatalf("retry count = %d, want 0", client.RetryCount)
	}

	if _, err := client.R().SetBody(map[string]any{}).Post(svr.URL); err == nil {
		t.Fatal("expected transport error from dropped connection")
	}

	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("outbound request attempted %d times, want 1", n)
	}
}
