package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/scorekit/core"
)

const validSpecJSON = `{
	"name": "babyweight",
	"version": "v1",
	"kind": "linear",
	"output": "weight_pounds",
	"label": "weight_pounds",
	"intercept": 7.5619,
	"predictors": [
		{"name": "year", "type": "numeric", "coefficient": 0.00036683},
		{"name": "plurality", "type": "numeric", "coefficient": -2.0459},
		{"name": "mother_married", "type": "boolean", "coefficient": 0.2784}
	]
}`

func TestParse_Valid(t *testing.T) {
	spec, err := Parse([]byte(validSpecJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if spec.Name != "babyweight" || spec.Version != "v1" {
		t.Errorf("name/version = %s/%s, want babyweight/v1", spec.Name, spec.Version)
	}
	if spec.Kind != KindLinear {
		t.Errorf("kind = %s, want linear", spec.Kind)
	}
	if spec.Intercept != 7.5619 {
		t.Errorf("intercept = %v, want 7.5619", spec.Intercept)
	}
	if len(spec.Predictors) != 3 {
		t.Fatalf("predictors = %d, want 3", len(spec.Predictors))
	}
	if spec.Predictors[2].Type != FieldBoolean {
		t.Errorf("mother_married type = %s, want boolean", spec.Predictors[2].Type)
	}
}

func TestParseYAML_Valid(t *testing.T) {
	doc := `
name: churn
version: v3
kind: logistic
output: churn_probability
intercept: -1.2
predictors:
  - name: tenure_months
    type: numeric
    coefficient: -0.04
  - name: has_support_contract
    type: boolean
    coefficient: -0.8
`
	spec, err := ParseYAML([]byte(doc))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if spec.Kind != KindLogistic {
		t.Errorf("kind = %s, want logistic", spec.Kind)
	}
	if spec.Label != "" {
		t.Errorf("label = %q, want empty (optional)", spec.Label)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing intercept",
			doc:  `{"name":"m","kind":"linear","output":"y","predictors":[{"name":"x","type":"numeric","coefficient":1}]}`,
		},
		{
			name: "predictor without declared type",
			doc:  `{"kind":"linear","output":"y","intercept":0,"predictors":[{"name":"x","coefficient":1}]}`,
		},
		{
			name: "predictor with unknown type",
			doc:  `{"kind":"linear","output":"y","intercept":0,"predictors":[{"name":"x","type":"text","coefficient":1}]}`,
		},
		{
			name: "no predictors",
			doc:  `{"kind":"linear","output":"y","intercept":0,"predictors":[]}`,
		},
		{
			name: "missing output",
			doc:  `{"kind":"linear","intercept":0,"predictors":[{"name":"x","type":"numeric","coefficient":1}]}`,
		},
		{
			name: "duplicate predictor",
			doc:  `{"kind":"linear","output":"y","intercept":0,"predictors":[{"name":"x","type":"numeric","coefficient":1},{"name":"x","type":"numeric","coefficient":2}]}`,
		},
		{
			name: "missing kind",
			doc:  `{"output":"y","intercept":0,"predictors":[{"name":"x","type":"numeric","coefficient":1}]}`,
		},
		{
			name: "not json",
			doc:  `???`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("Parse() = %+v, want MALFORMED_SPECIFICATION error", spec)
			}
			if !core.IsMalformedSpecification(err) {
				t.Errorf("error = %v, want MALFORMED_SPECIFICATION", err)
			}
		})
	}
}

func TestParse_UnsupportedKind(t *testing.T) {
	doc := `{"kind":"gbdt","output":"y","intercept":0,"predictors":[{"name":"x","type":"numeric","coefficient":1}]}`
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatal("Parse() error = nil, want UNSUPPORTED_MODEL_KIND")
	}
	if !core.IsUnsupportedModelKind(err) {
		t.Errorf("error = %v, want UNSUPPORTED_MODEL_KIND", err)
	}
	if core.IsMalformedSpecification(err) {
		t.Error("unsupported kind must not be reported as malformed")
	}
}

func TestLoad_DispatchByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "spec.json")
	if err := os.WriteFile(jsonPath, []byte(validSpecJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(jsonPath); err != nil {
		t.Errorf("Load(json) error = %v", err)
	}

	yamlPath := filepath.Join(dir, "spec.yaml")
	yamlDoc := "kind: linear\noutput: y\nintercept: 1.0\npredictors:\n  - name: x\n    type: numeric\n    coefficient: 2.0\n"
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(yamlPath); err != nil {
		t.Errorf("Load(yaml) error = %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load(missing) error = nil, want read error")
	}
}
