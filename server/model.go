package server

// ResponseModel is the envelope every JSON endpoint replies with.
type ResponseModel struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
