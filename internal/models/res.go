package models

// ApiResponse is the envelope of every JSON reply.
type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Page    int    `json:"page,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Total   int    `json:"total,omitempty"`
}

func SuccessResponse(data any, message string) ApiResponse {
	return ApiResponse{Success: true, Data: data, Message: message}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{Success: false, Error: err}
}

// PaginatedResponse returns one 1-based page of items together with the total count.
func PaginatedResponse[T any](items []T, page, limit int) ApiResponse {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(items)
	}
	start := min((page-1)*limit, len(items))
	end := min(start+limit, len(items))
	return ApiResponse{
		Success: true,
		Data:    items[start:end],
		Page:    page,
		Limit:   limit,
		Total:   len(items),
	}
}
