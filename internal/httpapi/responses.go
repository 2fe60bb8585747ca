package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/shloka/internal/translation"
)

// jsendResponse wraps the /api/v1 endpoints.
type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, jsendResponse{
		Status: "success",
		Data:   data,
	})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, jsendResponse{
		Status:  "fail",
		Message: message,
	})
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, jsendResponse{
		Status:  "error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}

// proxyErrorBody is the error shape of the translate endpoints. "error" is
// what existing front-ends read; "kind" is for programmatic callers.
type proxyErrorBody struct {
	Error string                `json:"error"`
	Kind  translation.ErrorKind `json:"kind,omitempty"`
}

func proxyFailure(c echo.Context, err *translation.Error) error {
	if err == nil {
		err = translation.NewError(translation.KindUpstream, translation.MsgTranslationFailed, nil)
	}
	return c.JSON(err.HTTPStatus(), proxyErrorBody{
		Error: err.Message,
		Kind:  err.Kind,
	})
}

// passthrough forwards a provider payload byte-for-byte.
func passthrough(c echo.Context, body []byte) error {
	return c.JSONBlob(http.StatusOK, body)
}
