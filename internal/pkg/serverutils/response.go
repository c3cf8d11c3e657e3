package serverutils

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Status:  true,
		Message: message,
		Data:    data,
	}
}

type ErrorBody struct {
	Status  bool        `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{
		Status:  false,
		Code:    code,
		Message: message,
	}
}

func ErrorResponseWithDetails(code int, message string, errs interface{}) ErrorBody {
	return ErrorBody{
		Status:  false,
		Code:    code,
		Message: message,
		Errors:  errs,
	}
}
