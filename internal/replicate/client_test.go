package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T, serverURL string) *HTTPClient {
	t.Helper()
	client, err := NewClient(WithToken("test-token"), WithBaseURL(serverURL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestNewClient_MissingToken(t *testing.T) {
	_ = os.Unsetenv("REPLICATE_API_TOKEN")

	_, err := NewClient()
	if !errors.Is(err, ErrTokenNotSet) {
		t.Errorf("expected ErrTokenNotSet, got %v", err)
	}
}

func TestPredict_OutputAsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predictions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Prefer") != "wait" {
			t.Errorf("expected Prefer: wait header, got %q", r.Header.Get("Prefer"))
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}

		var req predictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Input.Prompt != "a red balloon" {
			t.Errorf("unexpected prompt %q", req.Input.Prompt)
		}
		if req.Input.NumFrames != 40 {
			t.Errorf("expected 40 frames for 5s at 8fps, got %d", req.Input.NumFrames)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "pred-1",
			"status": "succeeded",
			"output": []string{"https://cdn.example.com/pred-1.mp4"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	url, err := client.Predict(context.Background(), "a red balloon", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/pred-1.mp4" {
		t.Errorf("unexpected output url %q", url)
	}
}

func TestPredict_OutputAsString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "succeeded",
			"output": "https://cdn.example.com/single.mp4",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	url, err := client.Predict(context.Background(), "prompt", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/single.mp4" {
		t.Errorf("unexpected output url %q", url)
	}
}

func TestPredict_FrameCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Input.NumFrames != maxPredictionFrames {
			t.Errorf("expected frame cap %d, got %d", maxPredictionFrames, req.Input.NumFrames)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "succeeded", "output": "https://x/y.mp4"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	if _, err := client.Predict(context.Background(), "prompt", 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPredict_FailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "failed",
			"error":  "model crashed",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Predict(context.Background(), "prompt", 5)
	if !errors.Is(err, ErrPredictionFailed) {
		t.Errorf("expected ErrPredictionFailed, got %v", err)
	}
}

func TestPredict_NoOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "succeeded"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Predict(context.Background(), "prompt", 5)
	if !errors.Is(err, ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", err)
	}
}

func TestPredict_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Predict(context.Background(), "prompt", 5)
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestPredict_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Predict(context.Background(), "prompt", 5)
	if err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mp4-bytes"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	dest := filepath.Join(t.TempDir(), "out.mp4")

	if err := client.Download(context.Background(), server.URL+"/v.mp4", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("unexpected file contents: %q", data)
	}
}
