// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by the backend handlers.
//
// # Architecture
//
// The auth endpoints answer with a flat JSON object whose first field is
// "success". Business rejections travel as HTTP 200 with success=false so the
// sign-in client can show the server's message; only malformed requests and
// server faults use error statuses.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/safar/internal/platform/apperr"
	"github.com/taibuivan/safar/internal/platform/constants"
	"github.com/taibuivan/safar/internal/platform/ctxutil"
)

// Failure is the flat body of every unsuccessful answer.
type Failure struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON+"; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload as-is.
func OK(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusOK, payload)
}

// Rejected writes a business rejection: HTTP 200 with success=false.
//
// Client-side [apperr.AppError] values keep their code; anything else is
// treated as a server fault and routed to [Error].
func Rejected(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil || appError.HTTPStatus >= 500 {
		Error(writer, request, err)
		return
	}

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "auth_request_rejected",
		slog.String("code", appError.Code),
	)

	OK(writer, Failure{Success: false, Message: appError.Message, Code: appError.Code})
}

// Error converts any Go error into a JSON failure using its HTTP status.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= 500 {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, Failure{
		Success: false,
		Message: appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
