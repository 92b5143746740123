package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestModel() *Model {
	return &Model{a: artifact{
		ModelType:   modelTypeLinearClassifier,
		NumFeatures: 4,
		Coefficients: [][]float64{
			{-0.42, 0.97, -2.52, -1.08},
			{0.53, -0.32, -0.21, -0.94},
			{-0.11, -0.65, 2.73, 2.02},
		},
		Intercepts: []float64{9.85, 2.22, -12.07},
	}}
}

func TestModelPredict(t *testing.T) {
	m := newTestModel()

	tcs := []struct {
		name string
		x    []float64
		want int
	}{
		{
			name: "setosa",
			x:    []float64{5.1, 3.5, 1.4, 0.2},
			want: 0,
		},
		{
			name: "versicolor",
			x:    []float64{6.0, 2.7, 4.1, 1.3},
			want: 1,
		},
		{
			name: "virginica",
			x:    []float64{7.7, 3.0, 6.1, 2.3},
			want: 2,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Predict(tc.x)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModelPredictProba(t *testing.T) {
	m := newTestModel()

	x := []float64{5.1, 3.5, 1.4, 0.2}
	probs, err := m.PredictProba(x)
	assert.NoError(t, err)
	assert.Len(t, probs, m.NumClasses())

	var sum float64
	best := 0
	for i, p := range probs {
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
		sum += p
		if p > probs[best] {
			best = i
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	pred, err := m.Predict(x)
	assert.NoError(t, err)
	assert.Equal(t, pred, best)
}

func TestModelPredictTieBreaksToLowestIndex(t *testing.T) {
	m := &Model{a: artifact{
		ModelType:   modelTypeLinearClassifier,
		NumFeatures: 2,
		Coefficients: [][]float64{
			{1.0, 1.0},
			{1.0, 1.0},
		},
		Intercepts: []float64{0.5, 0.5},
	}}
	got, err := m.Predict([]float64{1.0, 2.0})
	assert.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestModelPredictFeatureCountMismatch(t *testing.T) {
	m := newTestModel()

	_, err := m.Predict([]float64{1.0, 2.0})
	assert.Error(t, err)

	_, err = m.PredictProba([]float64{1.0, 2.0, 3.0, 4.0, 5.0})
	assert.Error(t, err)
}

func TestArtifactValidate(t *testing.T) {
	tcs := []struct {
		name    string
		a       artifact
		wantErr bool
	}{
		{
			name: "valid",
			a: artifact{
				ModelType:    modelTypeLinearClassifier,
				NumFeatures:  2,
				Coefficients: [][]float64{{1, 2}, {3, 4}},
				Intercepts:   []float64{0, 1},
			},
		},
		{
			name: "unsupported model type",
			a: artifact{
				ModelType:    "decision_tree",
				NumFeatures:  2,
				Coefficients: [][]float64{{1, 2}},
				Intercepts:   []float64{0},
			},
			wantErr: true,
		},
		{
			name: "no coefficients",
			a: artifact{
				ModelType:   modelTypeLinearClassifier,
				NumFeatures: 2,
				Intercepts:  []float64{0},
			},
			wantErr: true,
		},
		{
			name: "intercept count mismatch",
			a: artifact{
				ModelType:    modelTypeLinearClassifier,
				NumFeatures:  2,
				Coefficients: [][]float64{{1, 2}, {3, 4}},
				Intercepts:   []float64{0},
			},
			wantErr: true,
		},
		{
			name: "coefficient row shape mismatch",
			a: artifact{
				ModelType:    modelTypeLinearClassifier,
				NumFeatures:  2,
				Coefficients: [][]float64{{1, 2}, {3}},
				Intercepts:   []float64{0, 1},
			},
			wantErr: true,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.a.validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
