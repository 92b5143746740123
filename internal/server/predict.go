package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/llmariner/iris-inference-server/internal/rate"
)

// irisClassNames maps a class index to its name. The list is fixed; an
// index outside of it maps to "unknown".
var irisClassNames = []string{"setosa", "versicolor", "virginica"}

const unknownClassName = "unknown"

func className(index int) string {
	if index < 0 || index >= len(irisClassNames) {
		return unknownClassName
	}
	return irisClassNames[index]
}

// requiredFeatures lists the request fields in the order the model
// consumes them.
var requiredFeatures = []string{
	"sepal_length",
	"sepal_width",
	"petal_length",
	"petal_width",
}

type predictionResponse struct {
	Prediction int    `json:"prediction"`
	ClassName  string `json:"class_name"`
}

func (s *S) predictHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Unsupported method", http.StatusMethodNotAllowed)
		return
	}

	log := s.logger.WithValues("reqID", uuid.New().String())

	res, err := s.ratelimiter.Take(r.Context(), rate.ClientKey(r))
	if err != nil {
		log.Error(err, "Failed to take a rate limiting token")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Rate limiting failed: %s", err),
		})
		return
	}
	rate.SetRateLimitHTTPHeaders(w, res)
	if !res.Allowed {
		s.writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Detail: "Rate limit exceeded.",
		})
		return
	}

	features, verrs := parsePredictionRequest(r.Body)
	if len(verrs) > 0 {
		log.V(1).Info("Rejected an invalid prediction request", "violations", len(verrs))
		s.writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{Detail: verrs})
		return
	}

	model, ok := s.loader.Model()
	if !ok {
		st := s.loader.Status()
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail: fmt.Sprintf("Model is not loaded or failed to load (checked %s).", st.PathChecked),
		})
		return
	}

	start := time.Now()
	pred, err := model.Predict(features)
	if err != nil {
		log.Error(err, "Prediction failed", "input", features)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Prediction failed: %s", err),
		})
		return
	}
	probs, err := model.PredictProba(features)
	if err != nil {
		log.Error(err, "Prediction failed", "input", features)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Prediction failed: %s", err),
		})
		return
	}

	name := className(pred)
	log.Info("Prediction made", "input", features, "prediction", pred, "className", name, "probabilities", probs)
	s.metricsMonitor.ObservePrediction(name, probs[pred], time.Since(start))

	s.writeJSON(w, http.StatusOK, predictionResponse{
		Prediction: pred,
		ClassName:  name,
	})
}

// parsePredictionRequest validates the request body and assembles the
// feature vector. Every violation is reported, in field order.
func parsePredictionRequest(body io.Reader) ([]float64, []validationError) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, []validationError{{Field: "body", Message: "request body is not valid JSON"}}
	}

	var verrs []validationError
	features := make([]float64, 0, len(requiredFeatures))
	for _, f := range requiredFeatures {
		v, ok := raw[f]
		if !ok {
			verrs = append(verrs, validationError{Field: f, Message: "field required"})
			continue
		}
		n, ok := v.(float64)
		if !ok {
			verrs = append(verrs, validationError{Field: f, Message: "value is not a valid number"})
			continue
		}
		features = append(features, n)
	}
	if len(verrs) > 0 {
		return nil, verrs
	}
	return features, nil
}
