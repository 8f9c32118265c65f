package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/boardflow/internal/platform/errors"
	"github.com/louisbranch/boardflow/internal/platform/requestctx"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError renders a domain error as a localized JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	locale := requestctx.LocaleFromContext(r.Context())
	handled := apperrors.HandleError(err, locale)

	st, ok := status.FromError(handled)
	if !ok {
		st = status.New(codes.Internal, "an unexpected error occurred")
	}

	message := st.Message()
	code := string(apperrors.GetCode(err))
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.LocalizedMessage:
			message = d.GetMessage()
		case *errdetails.ErrorInfo:
			code = d.GetReason()
		}
	}

	writeJSON(w, grpcErrorHTTPStatus(handled, http.StatusInternalServerError), errorBody{
		Error: errorDetail{Code: code, Message: message},
	})
}

// grpcErrorHTTPStatus maps common gRPC status codes to HTTP status codes.
// It returns fallback when err is not a gRPC status or is unmapped.
func grpcErrorHTTPStatus(err error, fallback int) int {
	st, ok := status.FromError(err)
	if !ok {
		return fallback
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: errorDetail{Code: "MALFORMED_BODY", Message: "request body is not valid JSON"},
		})
		return false
	}
	return true
}
