package proxy

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/tradegate/tradegate/internal/common/httpx"
)

// bodyPart is one part of a multipart request, held in order for
// re-packaging.
type bodyPart struct {
	name    string
	header  textproto.MIMEHeader
	content []byte
}

// parsedRequest is a client request reduced to its routing fields plus
// whatever is needed to rebuild the body for the upstream.
type parsedRequest struct {
	actionName string
	declared   bool
	runID      string
	userID     string // taken for the audit trail, left in the body

	multipart bool
	jsonBody  []byte     // JSON requests: original bytes, fields still present
	parts     []bodyPart // multipart requests: parts in order, action dropped
}

// parseRequest classifies the body as multipart or JSON and pulls out
// the action and run_id fields. Anything that is not multipart is
// treated as JSON.
func parseRequest(r *http.Request) (*parsedRequest, *httpx.Error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err == nil && mediaType == "multipart/form-data" {
		boundary, ok := params["boundary"]
		if !ok {
			return nil, httpx.ErrUnableToParseReqData("missing multipart boundary")
		}
		return parseMultipartRequest(r, boundary)
	}
	return parseJSONRequest(r)
}

func parseJSONRequest(r *http.Request) (*parsedRequest, *httpx.Error) {
	body, httpErr := readBody(r)
	if httpErr != nil {
		return nil, httpErr
	}
	if len(body) == 0 {
		return nil, httpx.ErrUnableToParseReqData("empty request body")
	}
	if !gjson.ValidBytes(body) {
		return nil, httpx.ErrUnableToParseReqData("request body is not valid JSON")
	}

	parsed := &parsedRequest{jsonBody: body}
	if action := gjson.GetBytes(body, "action"); action.Exists() {
		parsed.declared = true
		parsed.actionName = action.String()
	}
	parsed.runID = gjson.GetBytes(body, "run_id").String()
	parsed.userID = gjson.GetBytes(body, "user_id").String()
	return parsed, nil
}

func parseMultipartRequest(r *http.Request, boundary string) (*parsedRequest, *httpx.Error) {
	parsed := &parsedRequest{multipart: true}
	reader := multipart.NewReader(r.Body, boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if httpErr := asBodyLimitError(err); httpErr != nil {
				return nil, httpErr
			}
			return nil, httpx.ErrUnableToParseReqData("malformed multipart body")
		}
		content, err := io.ReadAll(part)
		if err != nil {
			if httpErr := asBodyLimitError(err); httpErr != nil {
				return nil, httpErr
			}
			return nil, httpx.ErrUnableToReadRequest()
		}

		name := part.FormName()
		if name == "action" {
			parsed.declared = true
			parsed.actionName = string(content)
			continue
		}
		if name == "run_id" {
			parsed.runID = string(content)
		}
		if name == "user_id" {
			parsed.userID = string(content)
		}
		parsed.parts = append(parsed.parts, bodyPart{
			name:    name,
			header:  part.Header,
			content: content,
		})
	}
	return parsed, nil
}

func readBody(r *http.Request) ([]byte, *httpx.Error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if httpErr := asBodyLimitError(err); httpErr != nil {
			return nil, httpErr
		}
		return nil, httpx.ErrUnableToReadRequest()
	}
	return body, nil
}

func asBodyLimitError(err error) *httpx.Error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return httpx.ErrRequestTooLarge(maxErr.Limit)
	}
	return nil
}

// buildUpstreamBody renders the body to forward. The action and run_id
// fields never reach a JSON upstream body; multipart bodies lose the
// action always and run_id only when the action consumed it into the
// upstream path. JSON bodies keep every other byte untouched, multipart
// bodies keep the remaining parts in order under a fresh boundary.
func (p *parsedRequest) buildUpstreamBody(stripRunID bool) ([]byte, string, *httpx.Error) {
	if !p.multipart {
		body := p.jsonBody
		var err error
		if p.declared {
			body, err = sjson.DeleteBytes(body, "action")
			if err != nil {
				return nil, "", httpx.ErrUnableToParseReqData("unable to rewrite request body")
			}
		}
		body, err = sjson.DeleteBytes(body, "run_id")
		if err != nil {
			return nil, "", httpx.ErrUnableToParseReqData("unable to rewrite request body")
		}
		return body, "application/json", nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, part := range p.parts {
		if stripRunID && part.name == "run_id" {
			continue
		}
		dst, err := writer.CreatePart(part.header)
		if err == nil {
			_, err = dst.Write(part.content)
		}
		if err != nil {
			return nil, "", httpx.ErrApplicationError("unable to rebuild multipart body")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", httpx.ErrApplicationError("unable to rebuild multipart body")
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
