package motscript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mogaika/diva_mot/mot"
)

var plainName = regexp.MustCompile(`^[a-zA-Z0-9_\.\-]+$`)

// formatFloat avoids exponent notation, lexer does not know it
func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func boneRef(id uint16, names mot.BoneNames) (string, string) {
	if names != nil {
		if name, ok := names.BoneName(int(id)); ok && plainName.MatchString(name) {
			return "$" + name, strconv.Itoa(int(id))
		}
	}
	return fmt.Sprintf("$#%d", id), ""
}

func renderChannel(field mot.Field, axis string, c *mot.Channel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s.%s %s", field, axis, c.Tag)
	switch c.Tag {
	case mot.TagConstant:
		sb.WriteString(" " + formatFloat(c.Value))
	case mot.TagLinear:
		for _, k := range c.Keys {
			fmt.Fprintf(&sb, "  %d %s", k.Frame, formatFloat(k.Value))
		}
	case mot.TagSmooth:
		for _, k := range c.Keys {
			fmt.Fprintf(&sb, "  %d %s %s", k.Frame, formatFloat(k.Value), formatFloat(k.Tangent))
		}
	}
	return sb.String()
}

func RenderLines(qm *mot.QualifiedMotion, names mot.BoneNames) []string {
	result := make([]string, 0, len(qm.Anims)*4)
	for _, ba := range qm.Anims {
		ref, comment := boneRef(ba.Bone, names)
		kind := "none"
		if ba.Anim != nil {
			kind = ba.Anim.Kind.String()
		}
		header := ref + " " + kind
		if comment != "" {
			header = fmt.Sprintf("%-32s // %s", header, comment)
		}
		result = append(result, header)

		if ba.Anim == nil {
			continue
		}
		for _, field := range mot.Fields {
			v := ba.Anim.Vector(field)
			for i, axis := range []string{"x", "y", "z"} {
				if c := v.Axes()[i]; c.Tag != mot.TagEmpty {
					result = append(result, "\t"+renderChannel(field, axis, c))
				}
			}
		}
	}
	return result
}

// Render lists motion bone by bone, empty channels are omitted
func Render(qm *mot.QualifiedMotion, names mot.BoneNames) string {
	return strings.Join(RenderLines(qm, names), "\n") + "\n"
}
