package classifier

import (
	"fmt"
	"math"
)

const modelTypeLinearClassifier = "linear_classifier"

// artifact is the on-disk form of a serialized classifier.
type artifact struct {
	ModelType    string      `json:"model_type"`
	NumFeatures  int         `json:"num_features"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

func (a *artifact) validate() error {
	if a.ModelType != modelTypeLinearClassifier {
		return fmt.Errorf("unsupported model type: %q", a.ModelType)
	}
	if len(a.Coefficients) == 0 {
		return fmt.Errorf("coefficients must not be empty")
	}
	if len(a.Intercepts) != len(a.Coefficients) {
		return fmt.Errorf("got %d intercepts for %d classes", len(a.Intercepts), len(a.Coefficients))
	}
	for i, row := range a.Coefficients {
		if len(row) != a.NumFeatures {
			return fmt.Errorf("coefficient row %d has %d columns, expected %d", i, len(row), a.NumFeatures)
		}
	}
	return nil
}

// Model is a deserialized classifier handle. It is immutable after
// construction and safe for concurrent use.
type Model struct {
	a artifact
}

// NumClasses returns the number of classes the model scores.
func (m *Model) NumClasses() int {
	return len(m.a.Coefficients)
}

// Predict returns the index of the highest-scoring class for the given
// feature vector. Ties break to the lowest index.
func (m *Model) Predict(x []float64) (int, error) {
	scores, err := m.scores(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, nil
}

// PredictProba returns the per-class probabilities for the given feature
// vector, computed as the softmax of the class scores.
func (m *Model) PredictProba(x []float64) ([]float64, error) {
	scores, err := m.scores(x)
	if err != nil {
		return nil, err
	}
	// Shift by the max score so the exponentials cannot overflow.
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

func (m *Model) scores(x []float64) ([]float64, error) {
	if len(x) != m.a.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", m.a.NumFeatures, len(x))
	}
	scores := make([]float64, len(m.a.Coefficients))
	for k, row := range m.a.Coefficients {
		s := m.a.Intercepts[k]
		for j, w := range row {
			s += w * x[j]
		}
		scores[k] = s
	}
	return scores, nil
}
