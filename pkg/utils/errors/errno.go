package errors

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Errno represents a structured error with code and messages.
type Errno struct {
	// Code is the unique error code
	Code int `json:"code"`

	// HTTP is the HTTP status code to return
	HTTP int `json:"-"`

	// GRPCCode is the gRPC status code
	GRPCCode codes.Code `json:"-"`

	// MessageEN is the English error message
	MessageEN string `json:"message"`

	// MessageZH is the Chinese error message
	MessageZH string `json:"message_zh,omitempty"`

	// cause is the underlying error
	cause error
}

// New creates a new Errno.
func New(code, httpStatus int, grpcCode codes.Code, messageEN, messageZH string) *Errno {
	return &Errno{
		Code:      code,
		HTTP:      httpStatus,
		GRPCCode:  grpcCode,
		MessageEN: messageEN,
		MessageZH: messageZH,
	}
}

// Error implements the error interface.
func (e *Errno) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("errno %d: %s: %v", e.Code, e.MessageEN, e.cause)
	}
	return fmt.Sprintf("errno %d: %s", e.Code, e.MessageEN)
}

// Unwrap returns the underlying cause.
func (e *Errno) Unwrap() error {
	return e.cause
}

// WithCause creates a new Errno with the given cause.
func (e *Errno) WithCause(cause error) *Errno {
	return &Errno{
		Code:      e.Code,
		HTTP:      e.HTTP,
		GRPCCode:  e.GRPCCode,
		MessageEN: e.MessageEN,
		MessageZH: e.MessageZH,
		cause:     cause,
	}
}

// WithMessage creates a new Errno with custom English message.
func (e *Errno) WithMessage(msg string) *Errno {
	return &Errno{
		Code:      e.Code,
		HTTP:      e.HTTP,
		GRPCCode:  e.GRPCCode,
		MessageEN: msg,
		MessageZH: e.MessageZH,
		cause:     e.cause,
	}
}

// WithMessagef creates a new Errno with formatted English message.
func (e *Errno) WithMessagef(format string, args ...interface{}) *Errno {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// Message returns the message for the given language ("zh" or "en").
func (e *Errno) Message(lang string) string {
	if lang == "zh" && e.MessageZH != "" {
		return e.MessageZH
	}
	return e.MessageEN
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Errno) HTTPStatus() int {
	if e.HTTP != 0 {
		return e.HTTP
	}
	return http.StatusInternalServerError
}

// Base errors shared by all services.
var (
	// OK indicates success.
	OK = Register(New(MakeCode(ServiceCommon, CategorySuccess, 0), 200, codes.OK, "Success", "成功"))

	// ErrInvalidParam indicates invalid request parameters.
	ErrInvalidParam = Register(New(MakeCode(ServiceCommon, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid request parameters", "请求参数无效"))

	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = Register(New(MakeCode(ServiceCommon, CategoryAuth, 1), 401, codes.Unauthenticated, "Unauthorized", "未认证"))

	// ErrTokenInvalid indicates an invalid or expired token.
	ErrTokenInvalid = Register(New(MakeCode(ServiceCommon, CategoryAuth, 2), 401, codes.Unauthenticated, "Token invalid or expired", "令牌无效或已过期"))

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = Register(New(MakeCode(ServiceCommon, CategoryPermission, 1), 403, codes.PermissionDenied, "Forbidden", "无权限"))

	// ErrNotFound indicates the resource was not found.
	ErrNotFound = Register(New(MakeCode(ServiceCommon, CategoryResource, 1), 404, codes.NotFound, "Resource not found", "资源不存在"))

	// ErrConflict indicates a resource conflict.
	ErrConflict = Register(New(MakeCode(ServiceCommon, CategoryConflict, 1), 409, codes.AlreadyExists, "Resource conflict", "资源冲突"))

	// ErrInternal indicates an internal server error.
	ErrInternal = Register(New(MakeCode(ServiceCommon, CategoryInternal, 1), 500, codes.Internal, "Internal server error", "服务器内部错误"))

	// ErrDatabase indicates a database error.
	ErrDatabase = Register(New(MakeCode(ServiceInfraDB, CategoryDatabase, 1), 500, codes.Internal, "Database error", "数据库错误"))
)
