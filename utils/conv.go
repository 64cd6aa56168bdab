package utils

import (
	"bytes"

	"github.com/pkg/errors"
	"golang.org/x/text/transform"

	"github.com/mogaika/diva_mot/config"
)

// BytesToString decodes nil terminated string with configured encoding
func BytesToString(bs []byte) (string, error) {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		return "", errors.Wrapf(err, "Failed to decode with %v", config.GetEncoding())
	}
	return string(s), nil
}
