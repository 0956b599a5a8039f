package server

import (
	"encoding/json"
	"net/http"
)

func SendResponse(w http.ResponseWriter, success bool, data any, errorMsg string) {
	SendResponseWithHeader(w, success, data, errorMsg, 0, nil)
}

func SendResponseWithHeader(w http.ResponseWriter, success bool, data any, errorMsg string, statusCode int, headers map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	switch {
	case success:
		w.WriteHeader(http.StatusOK)
	case statusCode != 0:
		w.WriteHeader(statusCode)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}

	response := ResponseModel{Success: success, Data: data, Error: errorMsg}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, `{"success":false,"error":"Internal Server Error"}`, http.StatusInternalServerError)
	}
}
