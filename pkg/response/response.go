package response

// Response represents a standard API response format
type Response struct {
	Status     string            `json:"status"`      // "success" or "error"
	StatusCode int               `json:"status_code"` // HTTP status code
	Data       interface{}       `json:"data,omitempty"`
	Meta       interface{}       `json:"meta,omitempty"`
	Error      string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"` // per-field validation messages
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Paginated is Success with a page descriptor attached
func Paginated(statusCode int, data, meta interface{}) Response {
	res := Success(statusCode, data)
	res.Meta = meta
	return res
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// ValidationError reports which request fields were rejected and why
func ValidationError(statusCode int, err string, fields map[string]string) Response {
	res := Error(statusCode, err)
	res.Fields = fields
	return res
}
