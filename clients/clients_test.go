package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maastricht-university/clinote/cache"
	"github.com/maastricht-university/clinote/entities"
)

func serve(t *testing.T, path string, handler func(w http.ResponseWriter, body map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTaggerValidatesSpans(t *testing.T) {
	text := "Diagnosed whiplash injury and headache."
	srv := serve(t, "/tag", func(w http.ResponseWriter, body map[string]interface{}) {
		if body["text"] != text {
			t.Errorf("unexpected text %v", body["text"])
		}
		_, _ = w.Write([]byte(`{"entities":[
			{"text":"whiplash injury","label":"DISEASE","confidence":0.93,"start":10,"end":25},
			{"text":"headache","label":"SIGN_SYMPTOM","confidence":1.7,"start":30,"end":500},
			{"text":"  ","label":"SYMPTOM"},
			{"text":"Dr Smith","label":"PERSON"}]}`))
	})

	spans, err := NewTagger(NewHTTP(), srv.URL+"/").Tag(context.Background(), text)
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if len(spans) != 3 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Category != entities.Diagnosis || spans[0].Confidence == nil || *spans[0].Confidence != 0.93 || spans[0].End != 25 {
		t.Fatalf("first span = %+v", spans[0])
	}
	if spans[1].Category != entities.Symptom || spans[1].Confidence != nil || spans[1].End != 0 {
		t.Fatalf("invalid confidence and offsets should be dropped: %+v", spans[1])
	}
	if spans[2].Category != entities.Other || spans[2].Source != entities.Model {
		t.Fatalf("unknown label should map to Other: %+v", spans[2])
	}
}

func TestTaggerConvertsCharacterOffsets(t *testing.T) {
	text := "Patiënt René: sévère neck pain."
	srv := serve(t, "/tag", func(w http.ResponseWriter, body map[string]interface{}) {
		_, _ = w.Write([]byte(`{"entities":[
			{"text":"neck pain","label":"SYMPTOM","start":21,"end":30},
			{"text":"sévère","label":"SYMPTOM","start":0,"end":6}]}`))
	})

	spans, err := NewTagger(NewHTTP(), srv.URL).Tag(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 2 {
		t.Fatalf("spans = %+v", spans)
	}
	if got := text[spans[0].Start:spans[0].End]; got != "neck pain" {
		t.Errorf("converted span = %q (%d:%d)", got, spans[0].Start, spans[0].End)
	}
	if spans[1].Start != 0 || spans[1].End != 0 {
		t.Errorf("offsets not pointing at the span text should be dropped: %+v", spans[1])
	}
}

func TestRetryOnTransientFailure(t *testing.T) {
	var calls int32
	srv := serve(t, "/summarize", func(w http.ResponseWriter, body map[string]interface{}) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if body["max_length"] != float64(120) {
			t.Errorf("max_length = %v", body["max_length"])
		}
		_, _ = w.Write([]byte(`{"summary":"Patient recovering."}`))
	})

	h := NewHTTP(WithRetry(2, time.Millisecond))
	got, err := NewSummarizer(h, srv.URL).Summarize(context.Background(), "text", 120)
	if err != nil || got != "Patient recovering." {
		t.Fatalf("summarize = %q, %v", got, err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("calls = %d", n)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := serve(t, "/summarize", func(w http.ResponseWriter, _ map[string]interface{}) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad input", http.StatusBadRequest)
	})

	_, err := NewSummarizer(NewHTTP(WithRetry(3, time.Millisecond)), srv.URL).Summarize(context.Background(), "x", 10)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d", n)
	}
}

func TestSentimentResponseShapes(t *testing.T) {
	tests := []struct {
		name, reply string
		label       string
		score       float64
		wantErr     bool
	}{
		{"single", `{"label":"POSITIVE","score":0.98}`, "POSITIVE", 0.98, false},
		{"distribution", `{"emotions":[{"label":"joy","score":0.2},{"label":"fear","score":0.7}]}`, "fear", 0.7, false},
		{"dominant", `{"emotions":[{"label":"joy","score":0.4},{"label":"fear","score":0.4}],"dominant_emotion":"fear"}`, "fear", 0.4, false},
		{"empty", `{}`, "", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, "/classify", func(w http.ResponseWriter, _ map[string]interface{}) {
				_, _ = w.Write([]byte(tc.reply))
			})
			got, err := NewSentiment(NewHTTP(), srv.URL).Classify(context.Background(), "I feel fine.")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil || got.Name != tc.label || got.Score != tc.score {
				t.Fatalf("classify = %+v, %v", got, err)
			}
		})
	}
}

func TestKeyphrasesRankedAndCapped(t *testing.T) {
	srv := serve(t, "/keyphrases", func(w http.ResponseWriter, body map[string]interface{}) {
		if body["top_n"] != float64(2) {
			t.Errorf("top_n = %v", body["top_n"])
		}
		_, _ = w.Write([]byte(`{"keyphrases":[{"phrase":"car accident","score":0.4},{"phrase":"","score":0.9},{"phrase":"seat belt","score":0.6},{"phrase":"steering wheel","score":0.1}]}`))
	})
	got, err := NewKeyphrases(NewHTTP(), srv.URL).Phrases(context.Background(), "text", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "seat belt" || got[1] != "car accident" {
		t.Fatalf("phrases = %v", got)
	}
}

func TestCachedResponsesSkipTheNetwork(t *testing.T) {
	var calls int32
	srv := serve(t, "/classify", func(w http.ResponseWriter, _ map[string]interface{}) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"label":"NEGATIVE","score":0.9}`))
	})
	s := NewSentiment(NewHTTP(WithCache(cache.NewMemory(), time.Hour)), srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := s.Classify(context.Background(), "It hurts."); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d", n)
	}
}

func TestContextCancelStopsRetries(t *testing.T) {
	srv := serve(t, "/tag", func(w http.ResponseWriter, _ map[string]interface{}) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewTagger(NewHTTP(WithRetry(10, 20*time.Millisecond)), srv.URL).Tag(ctx, "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
