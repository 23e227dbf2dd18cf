package glm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campuscerts/cert-tracker/internal/normalize"
	"github.com/campuscerts/cert-tracker/internal/recognize"
)

func testImage() normalize.CanonicalImage {
	return normalize.CanonicalImage{PNG: []byte("not-a-real-png"), Width: 100, Height: 50}
}

func chatReply(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return b
}

func TestExtractSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Model != "glm-4v-plus-0111" {
			t.Errorf("model = %q", req.Model)
		}

		w.Write(chatReply("```json\n{\"student_id\": \"2024010101001\", \"student_name\": \"李明\", \"advisor\": \"王芳\", \"department\": \"计算机学院\", \"competition_name\": \"全国大学生数学竞赛\", \"award_category\": \"国家级\", \"award_level\": \"一等奖\", \"competition_type\": \"A类\", \"organizer\": \"中国数学会\", \"award_date\": \"2024-05-18\"}\n```"))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	res, err := c.Extract(context.Background(), testImage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != recognize.StatusOK {
		t.Fatalf("status = %q, notes = %q", res.Status, res.Notes)
	}
	if res.Fields.StudentID != "2024010101001" {
		t.Errorf("student_id = %q", res.Fields.StudentID)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestExtractRetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(chatReply(`{"student_name": "李明"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 2}, nil)
	res, err := c.Extract(context.Background(), testImage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
	if res.Status != recognize.StatusPartial {
		t.Errorf("status = %q, want partial", res.Status)
	}
}

func TestExtractDoesNotRetryAuthFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "bad", BaseURL: srv.URL, MaxRetries: 3}, nil)
	_, err := c.Extract(context.Background(), testImage())
	if !errors.Is(err, recognize.ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 401)", got)
	}
}

func TestExtractRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 1}, nil)
	_, err := c.Extract(context.Background(), testImage())
	if !errors.Is(err, recognize.ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2 (initial + 1 retry)", got)
	}
}

func TestExtractContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// first attempt fails with 500, then the backoff sleep outlives the context
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: 5}, nil)
	_, err := c.Extract(ctx, testImage())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestExtractEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Extract(context.Background(), testImage())
	if !errors.Is(err, recognize.ErrExtractionFailed) {
		t.Fatalf("error = %v, want ErrExtractionFailed", err)
	}
}
