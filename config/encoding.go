package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

const DEFAULT_ENCODING = "utf-8"

type namedEncoding struct {
	name string
	enc  encoding.Encoding
}

var currentEncoding = namedEncoding{DEFAULT_ENCODING, unicode.UTF8}

// game databases of japanese releases keep names in shift-jis
var extraEncodings = []namedEncoding{
	{"utf-8", unicode.UTF8},
	{"shift_jis", japanese.ShiftJIS},
}

func lookupEncoding(name string) (namedEncoding, bool) {
	for _, ne := range extraEncodings {
		if strings.EqualFold(ne.name, name) {
			return ne, true
		}
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				return namedEncoding{cm.String(), cm}, true
			}
		}
	}
	return namedEncoding{}, false
}

func SetEncoding(name string) error {
	ne, ok := lookupEncoding(name)
	if !ok {
		return errors.Errorf("Failed to find encoding %q", name)
	}
	currentEncoding = ne
	return nil
}

func ListEncodings() []string {
	list := make([]string, 0, len(charmap.All)+len(extraEncodings))
	for _, ne := range extraEncodings {
		list = append(list, ne.name)
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() encoding.Encoding {
	return currentEncoding.enc
}

func GetEncodingName() string {
	return currentEncoding.name
}
