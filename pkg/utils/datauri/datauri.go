package datauri

import (
	"encoding/base64"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Encode wraps raw image bytes into a data URI that can be embedded directly.
func Encode(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a data URI back into raw bytes and its MIME type.
func Decode(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", goerr.New("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", goerr.New("malformed data URI")
	}

	mimeType, encoded := meta, false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		mimeType, encoded = m, true
	}
	if !encoded {
		return nil, "", goerr.New("unsupported data URI encoding", goerr.V("meta", meta))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to decode data URI payload")
	}

	return data, mimeType, nil
}
