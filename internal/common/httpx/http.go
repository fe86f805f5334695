// Package httpx provides the HTTP response plumbing shared by the gateway's
// handlers: a response envelope for JSON APIs, error-to-response conversion,
// and a ResponseWriter wrapper that tracks whether anything was written.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tradegate/tradegate/internal/common/apperrors"
)

// GetRequestData decodes a JSON request body into data. Only POST and PUT
// carry bodies in this API; other methods are rejected.
func GetRequestData(r *http.Request, data any) error {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return ErrReqMethodNotSupported()
	}
	if r.Body == nil {
		log.Ctx(r.Context()).Error().Msg("empty request body")
		return ErrUnableToParseReqData()
	}
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return ErrUnableToParseReqData()
	}
	return nil
}

// Response describes a handler result. ContentType defaults to
// application/json; Location is honored for 201 responses.
type Response struct {
	StatusCode  int
	Location    string
	Response    any
	ContentType string
}

// RequestHandler is the handler shape used by the route tables.
type RequestHandler func(r *http.Request) (*Response, error)

// ResponseHandlerParam binds one route to a RequestHandler.
type ResponseHandlerParam struct {
	Method  string
	Path    string
	Handler RequestHandler
}

// WrapHttpRsp adapts a RequestHandler into an http.HandlerFunc, converting
// returned errors into the JSON error envelope. apperrors status codes are
// honored; anything without one becomes a 500.
func WrapHttpRsp(handler RequestHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp, err := handler(r)
		if err != nil {
			switch e := err.(type) {
			case *Error:
				e.Send(w)
			case apperrors.Error:
				SendError(w, e)
			default:
				ErrApplicationError(err.Error()).Send(w)
			}
			return
		}
		if rsp == nil {
			ErrApplicationError().Send(w)
			return
		}
		if rsp.ContentType == "" {
			rsp.ContentType = "application/json"
		}
		var location []string
		if rsp.Location != "" {
			location = append(location, rsp.Location)
		}
		switch rsp.ContentType {
		case "application/json":
			SendJsonRsp(r.Context(), w, rsp.StatusCode, rsp.Response, location...)
		case "text/plain":
			w.Header().Set("Content-Type", "text/plain")
			if rsp.StatusCode == http.StatusCreated && len(location) > 0 {
				w.Header().Set("Location", location[0])
			}
			w.WriteHeader(rsp.StatusCode)
			w.Write([]byte(rsp.Response.(string)))
		default:
			ErrApplicationError("unsupported response type").Send(w)
		}
	}
}
