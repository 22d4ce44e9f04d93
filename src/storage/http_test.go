package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestHTTPSource_Open(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)

	tests := []struct {
		name            string
		handler         http.HandlerFunc
		wantSize        int64
		wantContentType string
	}{
		{
			name: "length and type present",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/vnd.apache.parquet")
				w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
				w.Write(payload)
			},
			wantSize:        int64(len(payload)),
			wantContentType: "application/vnd.apache.parquet",
		},
		{
			name: "missing content type",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header()["Content-Type"] = nil
				w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
				w.Write(payload)
			},
			wantSize:        int64(len(payload)),
			wantContentType: "application/octet-stream",
		},
		{
			name: "chunked response without length",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/octet-stream")
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				w.Write(payload)
			},
			wantSize:        UnknownSize,
			wantContentType: "application/octet-stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			download, err := NewHTTPSource(time.Second).Open(context.Background(), server.URL+"/file.parquet")
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			defer download.Body.Close()

			if download.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", download.Size, tt.wantSize)
			}

			if download.ContentType != tt.wantContentType {
				t.Errorf("ContentType = %q, want %q", download.ContentType, tt.wantContentType)
			}

			body, err := io.ReadAll(download.Body)
			if err != nil {
				t.Fatalf("reading body: %v", err)
			}

			if !bytes.Equal(body, payload) {
				t.Errorf("body length = %d, want %d", len(body), len(payload))
			}
		})
	}
}

func TestHTTPSource_Open_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	url := server.URL + "/trip-data/missing.parquet"

	_, err := NewHTTPSource(time.Second).Open(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}

	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
	}

	want := "404 Not Found for url: " + url
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHTTPSource_Open_HeaderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	start := time.Now()

	_, err := NewHTTPSource(50*time.Millisecond).Open(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got: %v", err)
	}

	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout text, got: %v", err)
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestHTTPSource_Open_BodyReadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()

		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	download, err := NewHTTPSource(50*time.Millisecond).Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	defer download.Body.Close()

	_, err = io.ReadAll(download.Body)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout while streaming, got: %v", err)
	}
}

func TestHTTPSource_Open_SlowConsumerDoesNotTimeOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "4")
		w.Write([]byte("data"))
	}))
	defer server.Close()

	download, err := NewHTTPSource(50*time.Millisecond).Open(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	defer download.Body.Close()

	// The timeout only runs while a read is blocked.
	time.Sleep(150 * time.Millisecond)

	body, err := io.ReadAll(download.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	if string(body) != "data" {
		t.Errorf("body = %q, want %q", body, "data")
	}
}

func TestHTTPSource_Open_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPSource(time.Second).Open(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}

	if errors.Is(err, ErrTimeout) {
		t.Errorf("cancellation should not be reported as a timeout: %v", err)
	}
}
