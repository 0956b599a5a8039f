package server

import (
	"net/http"

	"github.com/mireska/sift/internal/metrics"
)

func statsHandler(m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := m.Snapshot()
		if err != nil {
			SendResponseWithHeader(w, false, nil, err.Error(), http.StatusInternalServerError, nil)
			return
		}
		SendResponse(w, true, snap, "")
	}
}

func queriesHandler(names []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SendResponse(w, true, names, "")
	}
}
