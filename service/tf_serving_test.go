package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTFServingClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models/babyweight:predict" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if _, ok := body["inputs"]; !ok {
			t.Error("request body missing inputs")
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": []float64{6.5678, 4.52},
		})
	}))
	defer srv.Close()

	client := NewTFServingClient(srv.URL, "babyweight")
	resp, err := client.Predict(context.Background(), &PredictRequest{
		Features: []map[string]float64{
			{"year": 2000, "plurality": 1},
			{"year": 2000, "plurality": 2},
		},
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(resp.Predictions) != 2 || resp.Predictions[0] != 6.5678 {
		t.Errorf("predictions = %v", resp.Predictions)
	}
}

func TestTFServingClient_PredictError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewTFServingClient(srv.URL, "missing")
	if _, err := client.Predict(context.Background(), &PredictRequest{
		Instances: [][]float64{{1, 2}},
	}); err == nil {
		t.Error("Predict() error = nil, want server error")
	}
}

func TestTFServingClient_EmptyRequest(t *testing.T) {
	client := NewTFServingClient("http://localhost:8501", "m")
	if _, err := client.Predict(context.Background(), &PredictRequest{}); err == nil {
		t.Error("Predict() with no instances/features must fail")
	}
}
