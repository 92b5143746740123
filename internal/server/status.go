package server

import (
	"net/http"
)

// welcomeMessage is the fixed message served at the root path.
const welcomeMessage = "Welcome to the Iris Inference API."

type welcomeResponse struct {
	Message string `json:"message"`
}

type modelStatusResponse struct {
	ModelLoaded               bool   `json:"model_loaded"`
	ModelPathCheckedAtStartup string `json:"model_path_checked_at_startup"`
	LoadError                 string `json:"load_error,omitempty"`
}

func (s *S) welcomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Unsupported method", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, welcomeResponse{Message: welcomeMessage})
}

func (s *S) modelStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Unsupported method", http.StatusMethodNotAllowed)
		return
	}

	st := s.loader.Status()
	resp := modelStatusResponse{
		ModelLoaded:               st.Loaded,
		ModelPathCheckedAtStartup: st.PathChecked,
	}
	if st.Err != nil {
		resp.LoadError = st.Err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}
