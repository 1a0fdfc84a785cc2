package apiclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"sort"

	"backoffice/internal/domain"
)

// FilePart is one file of a multipart body.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart selects multipart/form-data transport for a create/update call.
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

func (m Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", domain.InternalError{Msg: "could not encode form field", Err: err}
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", domain.InternalError{Msg: "could not encode file", Err: err}
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", domain.InternalError{Msg: "could not read upload", Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", domain.InternalError{Msg: "could not finish multipart body", Err: err}
	}
	return &buf, w.FormDataContentType(), nil
}
