package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp writes msg as a JSON response with the given status code.
// Strings and byte slices that already hold valid JSON are passed through
// unmarshaled; everything else is marshaled. A location argument sets the
// Location header on 201 responses.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, msg any, location ...string) {
	if msg == nil {
		if statusCode == http.StatusCreated && len(location) > 0 {
			w.Header().Set("Location", location[0])
		}
		w.WriteHeader(statusCode)
		return
	}
	var msgJson []byte
	switch v := msg.(type) {
	case string:
		b := []byte(v)
		if json.Valid(b) {
			msgJson = b
		}
	case []byte:
		if json.Valid(v) {
			msgJson = v
		}
	default:
		var err error
		msgJson, err = json.Marshal(msg)
		if err != nil {
			log.Ctx(ctx).Err(err).Msg("unable to marshal json response")
			ErrApplicationError("unable to encode response").Send(w)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusCreated && len(location) > 0 {
		w.Header().Set("Location", location[0])
	}
	w.WriteHeader(statusCode)
	w.Write(msgJson)
}
