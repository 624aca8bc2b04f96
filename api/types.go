package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler    authHandler
	projectHandler projectHandler
	uploadHandler  uploadHandler
	contactHandler contactHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string   `json:"error"`
	Status  string   `json:"status"`
	Code    string   `json:"code,omitempty"`
	Field   string   `json:"field,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Details string   `json:"details,omitempty"`
}
