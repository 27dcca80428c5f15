package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/model"
)

type fakeFeatureService struct {
	features map[string]map[string]float64
	err      error
	calls    int
}

func (s *fakeFeatureService) Name() string { return "fake" }

func (s *fakeFeatureService) GetFeatures(ctx context.Context, entityID string, names []string) (map[string]float64, error) {
	all, err := s.BatchGetFeatures(ctx, []string{entityID}, names)
	if err != nil {
		return nil, err
	}
	return all[entityID], nil
}

func (s *fakeFeatureService) BatchGetFeatures(_ context.Context, entityIDs []string, names []string) (map[string]map[string]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]map[string]float64)
	for _, id := range entityIDs {
		if values, ok := s.features[id]; ok {
			picked := make(map[string]float64)
			for _, name := range names {
				if v, ok := values[name]; ok {
					picked[name] = v
				}
			}
			out[id] = picked
		}
	}
	return out, nil
}

func (s *fakeFeatureService) Close(context.Context) error { return nil }

func enrichSpec() *model.Spec {
	return &model.Spec{
		Kind:      model.KindLinear,
		Output:    "y",
		Intercept: 0,
		Predictors: []model.Predictor{
			{Name: "year", Type: model.FieldNumeric, Coefficient: 1},
			{Name: "plurality", Type: model.FieldNumeric, Coefficient: 1},
		},
	}
}

func TestEnrichNode_FillsMissingPredictors(t *testing.T) {
	svc := &fakeFeatureService{features: map[string]map[string]float64{
		"rec-1": {"plurality": 2.0},
	}}
	node := &EnrichNode{Features: svc, Spec: enrichSpec()}

	rec := core.NewRecord("rec-1")
	rec.Fields = map[string]any{"year": 2000.0}

	out, err := node.Process(context.Background(), nil, []*core.Record{rec})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatal("record dropped")
	}
	if got := rec.Fields["plurality"]; got != 2.0 {
		t.Errorf("plurality = %v, want 2.0 (backfilled)", got)
	}
	if lbl, ok := rec.Labels["enriched"]; !ok || lbl.Value != "fake" {
		t.Errorf("enriched label = %+v", rec.Labels)
	}
}

func TestEnrichNode_DoesNotOverwriteExisting(t *testing.T) {
	svc := &fakeFeatureService{features: map[string]map[string]float64{
		"rec-1": {"year": 1900.0, "plurality": 9.0},
	}}
	node := &EnrichNode{Features: svc, Spec: enrichSpec()}

	rec := core.NewRecord("rec-1")
	rec.Fields = map[string]any{"year": 2000.0, "plurality": 1.0}

	if _, err := node.Process(context.Background(), nil, []*core.Record{rec}); err != nil {
		t.Fatal(err)
	}
	if rec.Fields["year"] != 2000.0 || rec.Fields["plurality"] != 1.0 {
		t.Errorf("original values overwritten: %v", rec.Fields)
	}
	if svc.calls != 0 {
		t.Errorf("feature service called %d times for a complete record, want 0", svc.calls)
	}
}

func TestEnrichNode_ServiceFailureDoesNotBlock(t *testing.T) {
	svc := &fakeFeatureService{err: errors.New("feast unavailable")}
	node := &EnrichNode{Features: svc, Spec: enrichSpec()}

	rec := core.NewRecord("rec-1")
	rec.Fields = map[string]any{"year": 2000.0}

	out, err := node.Process(context.Background(), nil, []*core.Record{rec})
	if err != nil {
		t.Fatalf("Process() error = %v, enrich failure must not abort the chain", err)
	}
	if len(out) != 1 {
		t.Fatal("record dropped")
	}
	if _, ok := rec.Fields["plurality"]; ok {
		t.Error("plurality filled despite service failure")
	}
	if _, ok := rec.Labels["enrich_error"]; !ok {
		t.Errorf("missing enrich_error label: %+v", rec.Labels)
	}
}

func TestEnrichNode_EntityField(t *testing.T) {
	svc := &fakeFeatureService{features: map[string]map[string]float64{
		"m-1001": {"plurality": 2.0},
	}}
	node := &EnrichNode{Features: svc, Spec: enrichSpec(), EntityField: "mother_id"}

	rec := core.NewRecord("rec-1")
	rec.Fields = map[string]any{"year": 2000.0, "mother_id": "m-1001"}

	if _, err := node.Process(context.Background(), nil, []*core.Record{rec}); err != nil {
		t.Fatal(err)
	}
	if got := rec.Fields["plurality"]; got != 2.0 {
		t.Errorf("plurality = %v, want 2.0 (fetched by mother_id, not record ID)", got)
	}
}

func TestEnrichNode_FeatureNameMapping(t *testing.T) {
	svc := &fakeFeatureService{features: map[string]map[string]float64{
		"rec-1": {"mother_stats:plurality": 3.0},
	}}
	node := &EnrichNode{
		Features:     svc,
		Spec:         enrichSpec(),
		FeatureNames: map[string]string{"plurality": "mother_stats:plurality"},
	}

	rec := core.NewRecord("rec-1")
	rec.Fields = map[string]any{"year": 2000.0}

	if _, err := node.Process(context.Background(), nil, []*core.Record{rec}); err != nil {
		t.Fatal(err)
	}
	if got := rec.Fields["plurality"]; got != 3.0 {
		t.Errorf("plurality = %v, want 3.0 (via mapped feature name)", got)
	}
}
