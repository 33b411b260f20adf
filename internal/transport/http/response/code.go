package response

import "net/http"

// code 与 HTTP 状态码一致
const (
	CodeOK              = http.StatusOK
	CodeCreated         = http.StatusCreated
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeTooLarge        = http.StatusRequestEntityTooLarge
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeServerError     = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
	CodeTimeout         = http.StatusGatewayTimeout
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeCreated:         "Created",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeTooLarge:        "Request Entity Too Large",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Internal Server Error",
	CodeUnavailable:     "Service Unavailable",
	CodeTimeout:         "Gateway Timeout",
}
