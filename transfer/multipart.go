package transfer

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/moyoez/claimdesk/types"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// formBody accumulates a multipart/form-data request body.
type formBody struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newFormBody() *formBody {
	f := &formBody{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// addFile writes one file part carrying the file's own Content-Type;
// CreateFormFile would label every part application/octet-stream.
func (f *formBody) addFile(field string, file types.MediaFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	ct := file.Type
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := f.w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", field, err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("failed to write %s: %w", file.Name, err)
	}
	return nil
}

func (f *formBody) addField(field string, value []byte) error {
	part, err := f.w.CreateFormField(field)
	if err != nil {
		return fmt.Errorf("failed to create %s field: %w", field, err)
	}
	if _, err := part.Write(value); err != nil {
		return fmt.Errorf("failed to write %s field: %w", field, err)
	}
	return nil
}

// finish closes the writer and returns the body with its content type.
func (f *formBody) finish() (*bytes.Reader, string, error) {
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return bytes.NewReader(f.buf.Bytes()), f.w.FormDataContentType(), nil
}
