package httpdto

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func NewSuccessResponse(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

func NewErrorResponse(message, code string) ErrorResponse {
	return ErrorResponse{Success: false, Error: message, Code: code}
}
