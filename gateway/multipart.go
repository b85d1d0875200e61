package gateway

import (
	"bytes"
	"mime/multipart"

	"github.com/pkg/errors"
)

// Multipart accumulates form fields and file parts for a
// multipart/form-data request. File contents are held in memory; uploads in
// this system are bounded anexos and avatars, not bulk transfers.
type Multipart struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

// Field adds a plain form field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// File adds a file part under the given field name.
func (m *Multipart) File(field, filename string, content []byte) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filename, content: content})
	return m
}

// encode builds the request body. It is called once per do() invocation;
// the resulting bytes are what the renewal protocol replays.
func (m *Multipart) encode() (contentType string, body []byte, err error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range m.fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return "", nil, errors.Wrap(err, "[Multipart.encode] WriteField")
		}
	}
	for _, f := range m.files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			return "", nil, errors.Wrap(err, "[Multipart.encode] CreateFormFile")
		}
		if _, err := part.Write(f.content); err != nil {
			return "", nil, errors.Wrap(err, "[Multipart.encode] write file part")
		}
	}
	if err := writer.Close(); err != nil {
		return "", nil, errors.Wrap(err, "[Multipart.encode] Close")
	}
	return writer.FormDataContentType(), buf.Bytes(), nil
}
