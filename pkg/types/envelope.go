package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// APIErrorDetail is one application-level error entry reported by Reddit.
type APIErrorDetail struct {
	Code    string
	Message string
	Field   string
}

// Validatable is implemented by every response structure. APIErrors returns the error entries
// encoded in the response body, or nil when the body describes a successful call.
type Validatable interface {
	APIErrors() []APIErrorDetail
}

// ErrorEnvelope captures the top-level error shapes Reddit uses outside of api_type=json:
//
//	{"error": 403, "message": "Forbidden"}
//	{"error": "invalid_grant"}
//	{"message": "Unprocessable Entity", "reason": "CONVERSATION_NOT_ARCHIVABLE", "explanation": "..."}
//
// It is embedded into response structures so a single decode fills both payload and envelope.
type ErrorEnvelope struct {
	ErrorValue   json.RawMessage `json:"error,omitempty"`
	ErrorMessage string          `json:"message,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	Explanation  string          `json:"explanation,omitempty"`
}

// APIErrors implements Validatable.
func (e *ErrorEnvelope) APIErrors() []APIErrorDetail {
	if e == nil {
		return nil
	}

	code := rawErrorCode(e.ErrorValue)
	if code == "" {
		code = e.Reason
	}
	if code == "" {
		// A bare "message" is not an error on its own; several success payloads echo one.
		return nil
	}

	msg := e.Explanation
	if msg == "" {
		msg = e.ErrorMessage
	}
	return []APIErrorDetail{{Code: code, Message: msg}}
}

// rawErrorCode renders the "error" member, which Reddit sends as a number or a string.
func rawErrorCode(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` || s == "0" {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	return s
}

// jsonErrors converts the [[code, message, field], ...] list of api_type=json responses.
func jsonErrors(entries [][]string) []APIErrorDetail {
	if len(entries) == 0 {
		return nil
	}

	details := make([]APIErrorDetail, 0, len(entries))
	for _, entry := range entries {
		var d APIErrorDetail
		if len(entry) > 0 {
			d.Code = entry[0]
		}
		if len(entry) > 1 {
			d.Message = entry[1]
		}
		if len(entry) > 2 {
			d.Field = entry[2]
		}
		details = append(details, d)
	}
	return details
}

// ParseErrorEnvelope extracts error entries from an arbitrary response body. It returns nil when
// the body is not JSON or carries no recognised envelope.
func ParseErrorEnvelope(body []byte) []APIErrorDetail {
	var shape struct {
		ErrorEnvelope
		JSON *struct {
			Errors [][]string `json:"errors"`
		} `json:"json"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return nil
	}
	if shape.JSON != nil {
		if details := jsonErrors(shape.JSON.Errors); len(details) > 0 {
			return details
		}
	}
	return shape.ErrorEnvelope.APIErrors()
}

// GenericContainer is the response of action endpoints that return no payload, such as vote,
// save or lock. Reddit answers with {} or {"json": {"errors": []}}.
type GenericContainer struct {
	ErrorEnvelope
	JSON struct {
		Errors [][]string `json:"errors"`
	} `json:"json"`
}

// APIErrors implements Validatable.
func (c *GenericContainer) APIErrors() []APIErrorDetail {
	if c == nil {
		return nil
	}
	if details := jsonErrors(c.JSON.Errors); len(details) > 0 {
		return details
	}
	return c.ErrorEnvelope.APIErrors()
}

// PostResultShortData is the payload returned by api/submit.
type PostResultShortData struct {
	URL         string `json:"url"`
	DraftsCount int    `json:"drafts_count"`
	ID          string `json:"id"`
	Name        string `json:"name"`
}

// PostResultShortContainer wraps the api/submit response.
type PostResultShortContainer struct {
	ErrorEnvelope
	JSON struct {
		Errors [][]string          `json:"errors"`
		Data   PostResultShortData `json:"data"`
	} `json:"json"`
}

// APIErrors implements Validatable.
func (c *PostResultShortContainer) APIErrors() []APIErrorDetail {
	if c == nil {
		return nil
	}
	if details := jsonErrors(c.JSON.Errors); len(details) > 0 {
		return details
	}
	return c.ErrorEnvelope.APIErrors()
}

// ThingsResultContainer wraps responses that echo the affected things, such as api/editusertext
// and api/comment.
type ThingsResultContainer struct {
	ErrorEnvelope
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []*Thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// APIErrors implements Validatable.
func (c *ThingsResultContainer) APIErrors() []APIErrorDetail {
	if c == nil {
		return nil
	}
	if details := jsonErrors(c.JSON.Errors); len(details) > 0 {
		return details
	}
	return c.ErrorEnvelope.APIErrors()
}

// Things returns the echoed things, or nil when the response carried none.
func (c *ThingsResultContainer) Things() []*Thing {
	if c == nil {
		return nil
	}
	return c.JSON.Data.Things
}

// AccountContainer wraps a single account Thing (user/{name}/about).
type AccountContainer struct {
	ErrorEnvelope
	Thing
}

// UnstableResult is returned by endpoints whose response schema is not reliable on the live
// service. It keeps the raw body and leaves interpretation to the caller.
type UnstableResult struct {
	Raw json.RawMessage
}

// APIErrors implements Validatable.
func (u *UnstableResult) APIErrors() []APIErrorDetail {
	if u == nil || len(u.Raw) == 0 {
		return nil
	}
	return ParseErrorEnvelope(u.Raw)
}

// Decode unmarshals the raw body into v.
func (u *UnstableResult) Decode(v any) error {
	return json.Unmarshal(u.Raw, v)
}

// Value decodes the raw body into an untyped value.
func (u *UnstableResult) Value() (any, error) {
	if u == nil || len(u.Raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(u.Raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
