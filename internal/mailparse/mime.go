package mailparse

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// extractContent walks the message body collecting text/plain content
// and attachment metadata. For non-multipart messages the whole body is
// the text.
func extractContent(msg *mail.Message) (string, []core.Attachment, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		body, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", nil, err
		}
		return string(body), []core.Attachment{}, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		body, err := io.ReadAll(msg.Body)
		if err != nil {
			return "", nil, err
		}
		return string(body), []core.Attachment{}, nil
	}

	var text bytes.Buffer
	attachments := []core.Attachment{}

	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever was collected before the malformed part
			return text.String(), attachments, nil
		}

		if filename := part.FileName(); filename != "" {
			data, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
			attachments = append(attachments, core.Attachment{
				Filename:    filename,
				ContentType: partType,
				Size:        int64(len(data)),
			})
			continue
		}

		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if partType == "" || partType == "text/plain" {
			if _, err := io.Copy(&text, part); err != nil {
				continue
			}
			text.WriteString("\n")
		}
	}

	return strings.TrimSpace(text.String()), attachments, nil
}
