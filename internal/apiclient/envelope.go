package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"backoffice/internal/domain"
)

// envelope is the raw `{success, data, meta, message, info}` wrapper every
// endpoint answers with. It is validated before anything reaches a caller.
type envelope struct {
	Success *bool               `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Meta    json.RawMessage     `json:"meta"`
	Message json.RawMessage     `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Info    json.RawMessage     `json:"info"`
}

func (e envelope) message() string {
	if msg := rawString(e.Message); msg != "" {
		return msg
	}
	for _, msgs := range e.Errors {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

func (e envelope) hasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

// decodeEnvelope parses a 2xx body and enforces the success flag.
func decodeEnvelope(status int, body []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "malformed response body", Err: err}
	}
	if env.Success == nil {
		return envelope{}, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "response is missing the success flag"}
	}
	if !*env.Success {
		return envelope{}, domain.APIError{Kind: domain.KindApplication, Status: status, Message: env.message()}
	}
	return env, nil
}

// decodeErrorBody extracts the server message of a non-2xx response, if any.
func decodeErrorBody(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.message()
}

// decodePage validates a list envelope into a PageResult.
func decodePage[T any](status int, env envelope) (domain.PageResult[T], error) {
	var out domain.PageResult[T]
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return out, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "list response data is not an array"}
	}
	if err := json.Unmarshal(data, &out.Data); err != nil {
		return out, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "list rows do not match the expected shape", Err: err}
	}
	if len(bytes.TrimSpace(env.Meta)) == 0 {
		return out, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "list response is missing meta"}
	}
	if err := json.Unmarshal(env.Meta, &out.Meta); err != nil {
		return out, domain.APIError{Kind: domain.KindDecode, Status: status, Message: "malformed pagination meta", Err: err}
	}
	if err := validateMeta(out.Meta, len(out.Data)); err != nil {
		return out, domain.APIError{Kind: domain.KindDecode, Status: status, Message: err.Error()}
	}
	if info := bytes.TrimSpace(env.Info); len(info) > 0 && !bytes.Equal(info, []byte("null")) {
		out.Info = append(json.RawMessage(nil), info...)
	}
	return out, nil
}

func validateMeta(m domain.PageMeta, rows int) error {
	switch {
	case m.CurrentPage < 1:
		return fmt.Errorf("meta.current_page must be at least 1, got %d", m.CurrentPage)
	case m.LastPage < 0:
		return fmt.Errorf("meta.last_page must not be negative, got %d", m.LastPage)
	case m.PerPage < 0:
		return fmt.Errorf("meta.per_page must not be negative, got %d", m.PerPage)
	case m.Total < rows:
		return fmt.Errorf("meta.total (%d) is smaller than the page size returned (%d)", m.Total, rows)
	}
	return nil
}
