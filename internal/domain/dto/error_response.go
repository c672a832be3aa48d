package dto

// ErrorResponse is the single error body shape of the API:
//
//	{"detail": "<message>"}
//
// Detail carries the underlying error text unchanged.
type ErrorResponse struct {
	Detail string `json:"detail" example:"fetch history for AAPL: upstream returned status 502"`
}

// Error implements the error interface so the response can travel through
// gin's error list when needed.
func (e ErrorResponse) Error() string {
	return e.Detail
}

// NewErrorResponse builds an ErrorResponse from err, falling back to msg when
// err is nil.
func NewErrorResponse(msg string, err error) ErrorResponse {
	if err != nil {
		return ErrorResponse{Detail: err.Error()}
	}
	return ErrorResponse{Detail: msg}
}
