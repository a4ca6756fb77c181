package model

// APIResponse is the success envelope. Error is always null on the wire.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Error      any    `json:"error"`
}

// APIErrorResponse is the failure envelope.
type APIErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func NewAPIResponse(status int, data any, message string) APIResponse {
	if message == "" {
		message = "success"
	}

	return APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status >= 200 && status < 300,
	}
}

func NewAPIErrorResponse(status int, message string, errs []string) APIErrorResponse {
	if errs == nil {
		errs = []string{}
	}

	return APIErrorResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     errs,
	}
}
