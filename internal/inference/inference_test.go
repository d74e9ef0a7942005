package inference

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// testArtifact has one numeric feature "x" (scaled by 2) and one string
// feature "color", giving the vector [x/2, red, blue].
func testArtifact() *Artifact {
	return &Artifact{
		Name:    "test",
		Version: "v1",
		Numeric: []NumericFeature{{Name: "x", Mean: 0, Scale: 2}},
		Categorical: []CategoricalFeature{
			{Name: "color", Kind: KindString, Categories: []string{"red", "blue"}},
		},
		Classes:   []string{"no", "yes"},
		RiskClass: 1,
		Trees: []Tree{
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{0, -2, -2},
				Threshold:     []float64{0, -2, -2},
				Value:         [][]float64{{4, 4}, {3, 1}, {1, 3}},
			},
			{
				ChildrenLeft:  []int{1, -1, -1},
				ChildrenRight: []int{2, -1, -1},
				Feature:       []int{2, -2, -2},
				Threshold:     []float64{0.5, -2, -2},
				Value:         [][]float64{{2, 6}, {2, 2}, {0, 4}},
			},
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestArtifact_Validate(t *testing.T) {
	t.Parallel()

	if err := testArtifact().Validate(); err != nil {
		t.Fatalf("expected valid artifact, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"no classes", func(a *Artifact) { a.Classes = []string{"only"} }},
		{"risk class out of range", func(a *Artifact) { a.RiskClass = 2 }},
		{"no trees", func(a *Artifact) { a.Trees = nil }},
		{"duplicate feature", func(a *Artifact) { a.Categorical[0].Name = "x" }},
		{"unknown kind", func(a *Artifact) { a.Categorical[0].Kind = "float" }},
		{"split feature out of range", func(a *Artifact) { a.Trees[0].Feature[0] = 3 }},
		{"child before parent", func(a *Artifact) { a.Trees[0].ChildrenLeft[0] = 0 }},
		{"short value row", func(a *Artifact) { a.Trees[1].Value[2] = []float64{1} }},
		{"ragged arrays", func(a *Artifact) { a.Trees[1].Threshold = a.Trees[1].Threshold[:2] }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := testArtifact()
			tt.mutate(a)
			if err := a.Validate(); !errors.Is(err, ErrInvalidArtifact) {
				t.Errorf("expected ErrInvalidArtifact, got %v", err)
			}
		})
	}
}

func TestArtifact_Transform(t *testing.T) {
	t.Parallel()

	a := testArtifact()
	x, err := a.Transform(Row{Numeric: []float64{4}, Categorical: []string{"blue"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{2, 0, 1}
	for i := range want {
		if x[i] != want[i] {
			t.Fatalf("Transform = %v, want %v", x, want)
		}
	}

	// Unknown categories encode as all zeros.
	x, _ = a.Transform(Row{Numeric: []float64{0}, Categorical: []string{"green"}})
	if x[1] != 0 || x[2] != 0 {
		t.Errorf("expected zero block for unknown category, got %v", x)
	}

	if _, err := a.Transform(Row{Numeric: []float64{1, 2}}); err == nil {
		t.Error("expected shape mismatch error")
	}
}

func TestArtifact_PredictProba(t *testing.T) {
	t.Parallel()

	a := testArtifact()

	tests := []struct {
		name  string
		row   Row
		risk  float64
		label string
	}{
		{"high", Row{Numeric: []float64{4}, Categorical: []string{"blue"}}, 0.875, "yes"},
		{"low", Row{Numeric: []float64{-2}, Categorical: []string{"red"}}, 0.375, "no"},
		{"unknown category", Row{Numeric: []float64{-2}, Categorical: []string{"green"}}, 0.375, "no"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := a.RiskProbability(tt.row)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !almostEqual(p, tt.risk) {
				t.Errorf("RiskProbability = %v, want %v", p, tt.risk)
			}

			label, proba, err := a.Predict(tt.row)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if label != tt.label {
				t.Errorf("Predict = %s, want %s", label, tt.label)
			}
			if !almostEqual(proba[0]+proba[1], 1) {
				t.Errorf("probabilities do not sum to 1: %v", proba)
			}
		})
	}
}

func TestArtifact_Assemble(t *testing.T) {
	t.Parallel()

	a := testArtifact()

	row, err := a.Assemble(map[string]any{"x": "3.5", "color": " red ", "extra": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Numeric[0] != 3.5 || row.Categorical[0] != "red" {
		t.Errorf("unexpected row: %+v", row)
	}

	_, err = a.Assemble(map[string]any{"color": nil})
	var missing *MissingFeaturesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFeaturesError, got %v", err)
	}
	if len(missing.Names) != 2 || missing.Names[0] != "x" || missing.Names[1] != "color" {
		t.Errorf("unexpected missing names: %v", missing.Names)
	}
	if missing.Error() != "Missing fields: ['x', 'color']" {
		t.Errorf("unexpected message: %s", missing.Error())
	}

	if _, err := a.Assemble(map[string]any{"x": "abc", "color": "red"}); !errors.Is(err, ErrInvalidFeature) {
		t.Errorf("expected ErrInvalidFeature for non-numeric, got %v", err)
	}
	if _, err := a.Assemble(map[string]any{"x": 1.0, "color": 3.0}); !errors.Is(err, ErrInvalidFeature) {
		t.Errorf("expected ErrInvalidFeature for numeric text feature, got %v", err)
	}
}

func TestArtifact_AssembleIntCategories(t *testing.T) {
	t.Parallel()

	a := &Artifact{
		Categorical: []CategoricalFeature{{Name: "cp", Kind: KindInt, Categories: []string{"0", "1", "2"}}},
	}

	for _, v := range []any{2.0, "2", json.Number("2"), 2.9, 2} {
		row, err := a.Assemble(map[string]any{"cp": v})
		if err != nil {
			t.Fatalf("Assemble(%v) error: %v", v, err)
		}
		if row.Categorical[0] != "2" {
			t.Errorf("Assemble(%v) = %q, want 2", v, row.Categorical[0])
		}
	}

	if got := a.Values(Row{Categorical: []string{"2"}}); got["cp"] != 2 {
		t.Errorf("Values = %v", got)
	}
}

func TestToFloat(t *testing.T) {
	t.Parallel()

	for _, v := range []any{2.5, float32(2.5), " 2.5 ", json.Number("2.5")} {
		if got, err := ToFloat(v); err != nil || got != 2.5 {
			t.Errorf("ToFloat(%#v) = %v, %v; want 2.5", v, got, err)
		}
	}
	if got, err := ToFloat(3); err != nil || got != 3 {
		t.Errorf("ToFloat(3) = %v, %v", got, err)
	}

	for _, v := range []any{nil, true, "yes", math.NaN(), math.Inf(1), []any{1}} {
		if _, err := ToFloat(v); err == nil {
			t.Errorf("ToFloat(%#v) should fail", v)
		}
	}
}

func TestLoadArtifact_SampleModels(t *testing.T) {
	t.Parallel()

	heart, err := LoadArtifact(filepath.Join("..", "..", "models", "heart_risk.json"))
	if err != nil {
		t.Fatalf("load heart model: %v", err)
	}
	if n := len(heart.FeatureNames()); n != 8 {
		t.Errorf("expected 8 heart features, got %d", n)
	}

	row, err := heart.Assemble(map[string]any{
		"age": 63, "trestbps": 145, "chol": 233, "thalach": 150,
		"oldpeak": 2.3, "cp": 3, "ca": 0, "thal": 1,
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	p, err := heart.RiskProbability(row)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !almostEqual(p, 1.3/3) {
		t.Errorf("RiskProbability = %v, want %v", p, 1.3/3)
	}

	stress, err := LoadArtifact(filepath.Join("..", "..", "models", "stress.json"))
	if err != nil {
		t.Fatalf("load stress model: %v", err)
	}
	if stress.Classes[stress.RiskClass] != "High Stress" {
		t.Errorf("unexpected stress risk class %q", stress.Classes[stress.RiskClass])
	}
}

func TestLoadArtifact_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := LoadArtifact(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArtifact(bad); err == nil {
		t.Error("expected decode error")
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"classes":["a","b"],"numeric":[{"name":"x","scale":1}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArtifact(invalid); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("expected ErrInvalidArtifact, got %v", err)
	}
}
