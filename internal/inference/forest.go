package inference

import "fmt"

// Transform applies the scaler and one-hot encoder to an assembled row.
func (a *Artifact) Transform(row Row) ([]float64, error) {
	if len(row.Numeric) != len(a.Numeric) || len(row.Categorical) != len(a.Categorical) {
		return nil, fmt.Errorf("row shape %d/%d does not match model %d/%d",
			len(row.Numeric), len(row.Categorical), len(a.Numeric), len(a.Categorical))
	}

	x := make([]float64, 0, a.Width())
	for i, f := range a.Numeric {
		scale := f.Scale
		if scale == 0 {
			// Constant training column; the scaler leaves it centered only.
			scale = 1
		}
		x = append(x, (row.Numeric[i]-f.Mean)/scale)
	}

	for i, f := range a.Categorical {
		// Unknown categories encode as an all-zero block.
		for _, c := range f.Categories {
			if c == row.Categorical[i] {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}

	return x, nil
}

// PredictProba returns the class probability estimates for a row, averaged
// over all trees, in the order of Classes.
func (a *Artifact) PredictProba(row Row) ([]float64, error) {
	x, err := a.Transform(row)
	if err != nil {
		return nil, err
	}

	proba := make([]float64, len(a.Classes))
	for i := range a.Trees {
		leaf := a.Trees[i].leaf(x)
		dist := a.Trees[i].Value[leaf]

		total := 0.0
		for _, v := range dist {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range dist {
			proba[c] += v / total
		}
	}

	n := float64(len(a.Trees))
	for c := range proba {
		proba[c] /= n
	}

	return proba, nil
}

// Predict returns the most probable class label and the full distribution.
// Ties resolve to the lowest class index.
func (a *Artifact) Predict(row Row) (string, []float64, error) {
	proba, err := a.PredictProba(row)
	if err != nil {
		return "", nil, err
	}

	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}

	return a.Classes[best], proba, nil
}

// RiskProbability returns the probability of the configured risk class.
func (a *Artifact) RiskProbability(row Row) (float64, error) {
	proba, err := a.PredictProba(row)
	if err != nil {
		return 0, err
	}
	return proba[a.RiskClass], nil
}

func (t *Tree) leaf(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}
