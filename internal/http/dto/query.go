package dto

// QueryRequest requires the mensaje key; an empty string is a valid message.
type QueryRequest struct {
	Mensaje *string `json:"mensaje" binding:"required"`
}

type QueryResponse struct {
	HTML string `json:"html"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
