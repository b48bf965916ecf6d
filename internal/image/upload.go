package imagepkg

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/youruser/photobooth/internal/apperror"
)

var dataURIPrefix = regexp.MustCompile(`^data:image/[A-Za-z0-9.+-]+;base64,`)

// DecodeUpload turns a browser-captured frame, optionally carrying a
// data:image/<subtype>;base64, prefix, into raw image bytes. The prefix is
// stripped at most once.
func DecodeUpload(payload string) ([]byte, error) {
	body := strings.TrimSpace(payload)
	if loc := dataURIPrefix.FindStringIndex(body); loc != nil {
		body = body[loc[1]:]
	}
	if body == "" {
		return nil, apperror.New(apperror.CodeInvalidPayload, "image payload is empty")
	}

	b, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		// some encoders drop the padding
		var rawErr error
		b, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		if rawErr != nil {
			return nil, apperror.Wrap(apperror.CodeInvalidPayload, err, "image payload is not valid base64")
		}
	}
	if len(b) == 0 {
		return nil, apperror.New(apperror.CodeInvalidPayload, "image payload decodes to nothing")
	}
	return b, nil
}
