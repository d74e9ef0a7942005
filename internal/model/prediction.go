package model

import "time"

// Prediction is a stored heart-risk prediction together with the clinical
// inputs it was computed from. Inputs the model did not require may be nil.
type Prediction struct {
	ID           string
	UserID       string
	Probability  float64
	ModelVersion string
	Features     []string
	CreatedAt    time.Time
	Inputs       ClinicalInputs
}

// ClinicalInputs is the fixed set of clinical fields recorded with a prediction.
type ClinicalInputs struct {
	Age      *int     `json:"age"`
	Sex      *int     `json:"sex"`
	CP       *int     `json:"cp"`
	Trestbps *int     `json:"trestbps"`
	Chol     *int     `json:"chol"`
	FBS      *int     `json:"fbs"`
	RestECG  *int     `json:"restecg"`
	Thalach  *int     `json:"thalach"`
	Exang    *int     `json:"exang"`
	Oldpeak  *float64 `json:"oldpeak"`
	Slope    *int     `json:"slope"`
	CA       *int     `json:"ca"`
	Thal     *int     `json:"thal"`
}

// ClinicalFieldNames lists the payload keys of ClinicalInputs in column order.
var ClinicalFieldNames = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// Set assigns a coerced payload value to the matching field.
// Unknown names are ignored.
func (c *ClinicalInputs) Set(name string, value float64) {
	if name == "oldpeak" {
		c.Oldpeak = &value
		return
	}
	if p := c.intField(name); p != nil {
		v := int(value)
		*p = &v
	}
}

func (c *ClinicalInputs) intField(name string) **int {
	switch name {
	case "age":
		return &c.Age
	case "sex":
		return &c.Sex
	case "cp":
		return &c.CP
	case "trestbps":
		return &c.Trestbps
	case "chol":
		return &c.Chol
	case "fbs":
		return &c.FBS
	case "restecg":
		return &c.RestECG
	case "thalach":
		return &c.Thalach
	case "exang":
		return &c.Exang
	case "slope":
		return &c.Slope
	case "ca":
		return &c.CA
	case "thal":
		return &c.Thal
	}
	return nil
}

// StressLevel is the label produced by the stress classifier.
type StressLevel string

const (
	StressLow      StressLevel = "Low Stress"
	StressModerate StressLevel = "Moderate Stress"
	StressHigh     StressLevel = "High Stress"
)
