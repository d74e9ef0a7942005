// Package inference serves pre-trained tabular classifiers.
//
// A model is exported offline as a JSON artifact describing a fitted
// pipeline: a standard scaler over the numeric features, a one-hot encoder
// over the categorical features (unknown categories ignored), and a random
// forest whose trees use the flat array layout of scikit-learn's tree_
// attribute. This package only evaluates artifacts; it never trains them.
package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Categorical feature kinds. Integer-coded features accept numeric payload
// values; string-coded features accept text.
const (
	KindInt    = "int"
	KindString = "string"
)

var (
	// ErrInvalidArtifact indicates an artifact that cannot be evaluated.
	ErrInvalidArtifact = errors.New("invalid model artifact")
	// ErrModelNotLoaded indicates that no artifact is available for a model name.
	ErrModelNotLoaded = errors.New("model not loaded")
)

// Artifact is a fitted preprocessing + random forest pipeline.
type Artifact struct {
	Name        string               `json:"name"`
	Version     string               `json:"version"`
	Numeric     []NumericFeature     `json:"numeric"`
	Categorical []CategoricalFeature `json:"categorical"`
	Classes     []string             `json:"classes"`
	// RiskClass is the index into Classes of the "high risk" class.
	RiskClass int    `json:"risk_class"`
	Trees     []Tree `json:"trees"`
}

// NumericFeature is a standard-scaled input column.
type NumericFeature struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// CategoricalFeature is a one-hot encoded input column.
type CategoricalFeature struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Categories []string `json:"categories"`
}

// Tree is a single decision tree in array form. Node 0 is the root and a
// node is a leaf when ChildrenLeft is -1.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &a, nil
}

// FeatureNames returns the input columns in row order: numeric first, then categorical.
func (a *Artifact) FeatureNames() []string {
	names := make([]string, 0, len(a.Numeric)+len(a.Categorical))
	for _, f := range a.Numeric {
		names = append(names, f.Name)
	}
	for _, f := range a.Categorical {
		names = append(names, f.Name)
	}
	return names
}

// Width returns the length of the transformed feature vector.
func (a *Artifact) Width() int {
	n := len(a.Numeric)
	for _, f := range a.Categorical {
		n += len(f.Categories)
	}
	return n
}

// Validate checks internal consistency so evaluation never indexes out of range.
func (a *Artifact) Validate() error {
	if len(a.Numeric)+len(a.Categorical) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidArtifact)
	}
	if len(a.Classes) < 2 {
		return fmt.Errorf("%w: need at least two classes", ErrInvalidArtifact)
	}
	if a.RiskClass < 0 || a.RiskClass >= len(a.Classes) {
		return fmt.Errorf("%w: risk_class %d out of range", ErrInvalidArtifact, a.RiskClass)
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidArtifact)
	}

	seen := make(map[string]bool)
	for _, f := range a.Numeric {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: empty or duplicate feature %q", ErrInvalidArtifact, f.Name)
		}
		seen[f.Name] = true
	}
	for _, f := range a.Categorical {
		if f.Name == "" || seen[f.Name] {
			return fmt.Errorf("%w: empty or duplicate feature %q", ErrInvalidArtifact, f.Name)
		}
		seen[f.Name] = true
		if f.Kind != KindInt && f.Kind != KindString {
			return fmt.Errorf("%w: feature %q has unknown kind %q", ErrInvalidArtifact, f.Name, f.Kind)
		}
	}

	width := a.Width()
	for i, t := range a.Trees {
		if err := t.validate(width, len(a.Classes)); err != nil {
			return fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
		}
	}

	return nil
}

func (t *Tree) validate(width, classes int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}

	for i := 0; i < n; i++ {
		if len(t.Value[i]) != classes {
			return fmt.Errorf("node %d has %d class values, want %d", i, len(t.Value[i]), classes)
		}
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == -1 {
			continue
		}
		// Children always come after their parent, so traversal terminates.
		if left <= i || left >= n || right <= i || right >= n {
			return fmt.Errorf("node %d has invalid children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= width {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", i, t.Feature[i], width)
		}
	}

	return nil
}
