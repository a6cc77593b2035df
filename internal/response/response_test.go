package response

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Success(context.Background(), rr, http.StatusCreated, map[string]bool{"liked": true}, "created")

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body struct {
		StatusCode int             `json:"statusCode"`
		Data       map[string]bool `json:"data"`
		Message    string          `json:"message"`
		Success    bool            `json:"success"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.StatusCode != 201 || !body.Success || !body.Data["liked"] || body.Message != "created" {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestErrorEnvelopeHasNoData(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(context.Background(), rr, http.StatusNotFound, "video not found")

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["data"]; ok {
		t.Fatal("error envelope must not carry data")
	}
	if body["success"] != false || body["message"] != "video not found" || body["statusCode"] != float64(404) {
		t.Fatalf("unexpected envelope %v", body)
	}
}
