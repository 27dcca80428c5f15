package filter

import (
	"context"
	"testing"

	"github.com/rushteam/scorekit/core"
)

func TestExprFilter_ShouldDrop(t *testing.T) {
	tests := []struct {
		name   string
		expr   string
		fields map[string]any
		want   bool
	}{
		{
			name:   "drop old records",
			expr:   `field.year < 1990.0`,
			fields: map[string]any{"year": 1985.0},
			want:   true,
		},
		{
			name:   "keep recent records",
			expr:   `field.year < 1990.0`,
			fields: map[string]any{"year": 2000.0},
			want:   false,
		},
		{
			name:   "combined condition",
			expr:   `field.year >= 2000.0 && field.plurality > 1.0`,
			fields: map[string]any{"year": 2005.0, "plurality": 3.0},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewExprFilter(tt.expr)
			if err != nil {
				t.Fatalf("NewExprFilter() error = %v", err)
			}
			rec := core.NewRecord("r")
			rec.Fields = tt.fields

			got, err := f.ShouldDrop(context.Background(), &core.ScoreContext{Source: "batch"}, rec)
			if err != nil {
				t.Fatalf("ShouldDrop() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldDrop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExprFilter_CompileError(t *testing.T) {
	if _, err := NewExprFilter(`field.year <<>> 1990`); err == nil {
		t.Error("NewExprFilter() error = nil, want compile error")
	}
	if _, err := NewExprFilter(""); err == nil {
		t.Error("NewExprFilter(\"\") error = nil, want empty expression error")
	}
}

func TestFilterNode_DropsAndLabels(t *testing.T) {
	f, err := NewExprFilter(`field.country == "US"`)
	if err != nil {
		t.Fatal(err)
	}
	node := &FilterNode{Filters: []Filter{f}}

	us := core.NewRecord("us")
	us.Fields = map[string]any{"country": "US"}
	de := core.NewRecord("de")
	de.Fields = map[string]any{"country": "DE"}

	out, err := node.Process(context.Background(), nil, []*core.Record{us, de})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "de" {
		t.Fatalf("out = %v, want only de", out)
	}
	if lbl, ok := us.Labels["filtered"]; !ok || lbl.Value != "true" {
		t.Errorf("dropped record missing filtered label: %+v", us.Labels)
	}
}
