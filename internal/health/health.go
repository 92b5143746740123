package health

import (
	"fmt"
	"log"
	"net/http"
	"strings"
)

// NewProbeHandler returns a new ProbeHandler.
func NewProbeHandler() *ProbeHandler {
	return &ProbeHandler{}
}

type probe interface {
	IsReady() (bool, string)
}

// ProbeHandler serves liveness and readiness probes. Probes gate
// readiness only; liveness reports that the process is up. A degraded
// model is not a probe: the service stays both live and ready so that
// its status endpoint remains reachable.
type ProbeHandler struct {
	probes []probe
}

// AddProbe adds a readiness prober.
func (h *ProbeHandler) AddProbe(p probe) {
	h.probes = append(h.probes, p)
}

// LivenessHandler reports that the process is up.
func (h *ProbeHandler) LivenessHandler(resp http.ResponseWriter, _ *http.Request) {
	writeOK(resp)
}

// ReadinessHandler writes the aggregated result of the readiness probes.
func (h *ProbeHandler) ReadinessHandler(resp http.ResponseWriter, _ *http.Request) {
	var msgs []string

	for _, p := range h.probes {
		if r, msg := p.IsReady(); !r {
			msgs = append(msgs, msg)
		}
	}

	if len(msgs) > 0 {
		http.Error(resp, strings.Join(msgs, ","), http.StatusServiceUnavailable)
		return
	}

	writeOK(resp)
}

func writeOK(resp http.ResponseWriter) {
	if _, err := fmt.Fprint(resp, "ok"); err != nil {
		log.Printf("Failed to write health response: %s", err)
	}
}
