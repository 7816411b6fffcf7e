package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	vision "google.golang.org/api/vision/v1"

	"toll_plaza/internal/domain"
	"toll_plaza/internal/service"
)

func newTestVision(t *testing.T, handler http.HandlerFunc) *Vision {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	v, err := NewVision(context.Background(), VisionConfig{
		APIKey:        "test-key",
		LanguageHints: []string{"bn", "en"},
		Endpoint:      srv.URL + "/",
	})
	if err != nil {
		t.Fatalf("NewVision() error = %v", err)
	}
	return v
}

func TestVisionRecognize(t *testing.T) {
	var got vision.BatchAnnotateImagesRequest
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/images:annotate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("api key not sent, query = %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{
			"fullTextAnnotation":{"text":"ঢাকা মেট্রো-গ\n১২-৩৪৫৬\n"},
			"textAnnotations":[
				{"description":"ঢাকা মেট্রো-গ\n১২-৩৪৫৬"},
				{"description":"ঢাকা","confidence":0.9},
				{"description":"১২-৩৪৫৬","score":0.8}
			]}]}`))
	})

	text, err := v.Recognize(context.Background(), []byte("jpeg"), nil)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if want := []string{"ঢাকা মেট্রো-গ", "১২-৩৪৫৬"}; !reflect.DeepEqual(text.Lines, want) {
		t.Errorf("Lines = %q, want %q", text.Lines, want)
	}
	if want := []float64{domain.DefaultConfidence, 0.9, 0.8}; !reflect.DeepEqual(text.TokenConfidences, want) {
		t.Errorf("TokenConfidences = %v, want %v", text.TokenConfidences, want)
	}

	if len(got.Requests) != 1 {
		t.Fatalf("sent %d requests, want 1", len(got.Requests))
	}
	req := got.Requests[0]
	if req.Image.Content != "anBlZw==" {
		t.Errorf("image content = %q", req.Image.Content)
	}
	var features []string
	for _, f := range req.Features {
		features = append(features, f.Type)
		if f.MaxResults != visionMaxResults {
			t.Errorf("feature %s MaxResults = %d", f.Type, f.MaxResults)
		}
	}
	if want := []string{"TEXT_DETECTION", "DOCUMENT_TEXT_DETECTION"}; !reflect.DeepEqual(features, want) {
		t.Errorf("features = %v, want %v", features, want)
	}
	if !reflect.DeepEqual(req.ImageContext.LanguageHints, []string{"bn", "en"}) {
		t.Errorf("language hints = %v", req.ImageContext.LanguageHints)
	}
}

func TestVisionMissingConfidenceCountsAsDefault(t *testing.T) {
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"responses":[{"textAnnotations":[
			{"description":"ঢাকা গ ১২-৩৪৫৬"},
			{"description":"ঢাকা","confidence":0.9},
			{"description":"১২-৩৪৫৬"}
		]}]}`))
	})
	text, err := v.Recognize(context.Background(), []byte("jpeg"), nil)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if want := []float64{domain.DefaultConfidence, 0.9, domain.DefaultConfidence}; !reflect.DeepEqual(text.TokenConfidences, want) {
		t.Fatalf("TokenConfidences = %v, want %v", text.TokenConfidences, want)
	}

	if got := (service.VisionConfidence{}).Aggregate(text.TokenConfidences); got != 0.85 {
		t.Errorf("aggregate = %v, want 0.85", got)
	}
}

func TestVisionFallsBackToFirstAnnotation(t *testing.T) {
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"responses":[{"textAnnotations":[{"description":"চট্টগ্রাম-ট ১১-২২৩৩"}]}]}`))
	})
	text, err := v.Recognize(context.Background(), []byte("jpeg"), nil)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if text.FullText != "চট্টগ্রাম-ট ১১-২২৩৩" {
		t.Errorf("FullText = %q", text.FullText)
	}
}

func TestVisionErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{
			name:    "invalid api key",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			want:    domain.ErrCollaboratorRejected,
			message: "invalid Google Cloud API key",
		},
		{
			name:    "permission denied",
			status:  http.StatusForbidden,
			body:    `{"error":{"code":403,"message":"Vision API has not been used in project","status":"PERMISSION_DENIED"}}`,
			want:    domain.ErrCollaboratorRejected,
			message: "403",
		},
		{
			name:    "server error",
			status:  http.StatusServiceUnavailable,
			body:    `{"error":{"code":503,"message":"backend unavailable"}}`,
			want:    domain.ErrCollaboratorUnavailable,
			message: "backend unavailable",
		},
		{
			name:    "embedded response error",
			status:  http.StatusOK,
			body:    `{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`,
			want:    domain.ErrCollaboratorRejected,
			message: "Bad image data.",
		},
		{
			name:    "no responses",
			status:  http.StatusOK,
			body:    `{"responses":[]}`,
			want:    domain.ErrCollaboratorRejected,
			message: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := v.Recognize(context.Background(), []byte("jpeg"), nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Recognize() error = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Recognize() error = %q, want it to contain %q", err, tt.message)
			}
		})
	}
}

func TestVisionMissingOrPlaceholderKey(t *testing.T) {
	for _, key := range []string{"", "your_google_cloud_api_key_here", "AIzaSyC-your-actual-api-key-here-123"} {
		v, err := NewVision(context.Background(), VisionConfig{APIKey: key})
		if err != nil {
			t.Fatalf("NewVision(%q) error = %v", key, err)
		}
		if _, err := v.Recognize(context.Background(), []byte("jpeg"), nil); !errors.Is(err, domain.ErrCollaboratorUnavailable) {
			t.Errorf("key %q: Recognize() error = %v, want ErrCollaboratorUnavailable", key, err)
		}
	}
}
