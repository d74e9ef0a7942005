package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidFeature indicates a payload value that cannot be coerced to its feature's type.
var ErrInvalidFeature = errors.New("invalid feature value")

// Row is a single observation in artifact column order.
type Row struct {
	Numeric     []float64
	Categorical []string
}

// MissingFeaturesError lists required features absent from a payload, in model order.
type MissingFeaturesError struct {
	Names []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("Missing fields: [%s]", quoteJoin(e.Names))
}

// Values returns the coerced value of every feature in the row keyed by name.
// Categorical values that are integer-coded are returned as float64.
func (a *Artifact) Values(row Row) map[string]float64 {
	out := make(map[string]float64, len(row.Numeric)+len(row.Categorical))
	for i, f := range a.Numeric {
		out[f.Name] = row.Numeric[i]
	}
	for i, f := range a.Categorical {
		if f.Kind != KindInt {
			continue
		}
		if v, err := strconv.ParseFloat(row.Categorical[i], 64); err == nil {
			out[f.Name] = v
		}
	}
	return out
}

// Assemble builds a Row from a decoded JSON object. Every feature the model
// declares is required; extra keys are ignored. Numeric features accept
// numbers or numeric strings. Integer-coded categorical features are
// truncated toward zero.
func (a *Artifact) Assemble(payload map[string]any) (Row, error) {
	var missing []string
	for _, name := range a.FeatureNames() {
		if v, ok := payload[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Row{}, &MissingFeaturesError{Names: missing}
	}

	row := Row{
		Numeric:     make([]float64, len(a.Numeric)),
		Categorical: make([]string, len(a.Categorical)),
	}

	for i, f := range a.Numeric {
		v, err := ToFloat(payload[f.Name])
		if err != nil {
			return Row{}, fmt.Errorf("%w: %s: %v", ErrInvalidFeature, f.Name, err)
		}
		row.Numeric[i] = v
	}

	for i, f := range a.Categorical {
		v := payload[f.Name]
		switch f.Kind {
		case KindInt:
			n, err := ToFloat(v)
			if err != nil {
				return Row{}, fmt.Errorf("%w: %s: %v", ErrInvalidFeature, f.Name, err)
			}
			row.Categorical[i] = strconv.FormatInt(int64(n), 10)
		default:
			s, ok := v.(string)
			if !ok {
				return Row{}, fmt.Errorf("%w: %s: expected text, got %T", ErrInvalidFeature, f.Name, v)
			}
			row.Categorical[i] = strings.TrimSpace(s)
		}
	}

	return row, nil
}

// ToFloat coerces a decoded JSON value to a finite float64. Numeric strings
// are accepted.
func ToFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, err
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		f = n
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
