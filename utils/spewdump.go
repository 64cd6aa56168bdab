package utils

import (
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

func LogDump(a ...interface{}) {
	log.Debug(spewConfig.Sdump(a...))
}

// DumpHex renders bytes as hex rows of 16 with offsets
func DumpHex(buf []byte) string {
	var out bytes.Buffer
	for off := 0; off < len(buf); off += 16 {
		end := off + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Fprintf(&out, "%.4x: % x\n", off, buf[off:end])
	}
	return out.String()
}
