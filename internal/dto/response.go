package dto

// Response is the envelope of every successful API response.
type Response struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

// ErrorBody describes a failed operation. Context carries the fields an
// operator needs to reconstruct the attempt (account, amounts, balance).
type ErrorBody struct {
	Code    string            `json:"code" example:"insufficient_funds"`
	Message string            `json:"message"`
	Context map[string]string `json:"context,omitempty"`
}

// ErrorResponse is the envelope of every failed API response.
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}
