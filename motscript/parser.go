package motscript

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"

	"github.com/mogaika/diva_mot/mot"
)

type NameIndex interface {
	Index(name string) (int, bool)
}

type parser struct {
	names  NameIndex
	qm     *mot.QualifiedMotion
	anim   *mot.BoneAnimation
	inBone bool
}

func lineErrorf(l *line, format string, a ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, a...), "line %d", l.number)
}

func (p *parser) resolveBone(l *line, lexeme string) (uint16, error) {
	if strings.HasPrefix(lexeme, "$#") {
		id, err := strconv.ParseUint(lexeme[2:], 10, 16)
		if err != nil {
			return 0, lineErrorf(l, "Invalid bone id %q", lexeme)
		}
		return uint16(id), nil
	}
	name := lexeme[1:]
	if p.names == nil {
		return 0, lineErrorf(l, "Bone name %q used without name table", name)
	}
	id, ok := p.names.Index(name)
	if !ok || id > 0xffff {
		return 0, lineErrorf(l, "Unknown bone %q", name)
	}
	return uint16(id), nil
}

func (p *parser) boneLine(l *line) error {
	if len(l.tokens) != 2 || l.tokens[1].Type != TOKEN_WORD {
		return lineErrorf(l, "Expected '$<bone> <kind>'")
	}
	id, err := p.resolveBone(l, string(l.tokens[0].Lexeme))
	if err != nil {
		return err
	}

	ba := mot.BoneAnim{Bone: id}
	if kindName := string(l.tokens[1].Lexeme); kindName != "none" {
		kind, err := mot.ParseAnimKind(kindName)
		if err != nil {
			return errors.Wrapf(err, "line %d", l.number)
		}
		ba.Anim = mot.NewBoneAnimation(kind)
	}
	p.qm.Anims = append(p.qm.Anims, ba)
	p.anim = ba.Anim
	p.inBone = true
	return nil
}

func parseValue(l *line, tok *lexmachine.Token) (float32, error) {
	if tok.Type != TOKEN_NUMBER {
		return 0, lineErrorf(l, "Expected number, got %q", tok.Lexeme)
	}
	v, err := strconv.ParseFloat(string(tok.Lexeme), 32)
	if err != nil {
		return 0, lineErrorf(l, "Unknown number format %q", tok.Lexeme)
	}
	return float32(v), nil
}

func parseFrame(l *line, tok *lexmachine.Token) (uint16, error) {
	f, err := strconv.ParseUint(string(tok.Lexeme), 10, 16)
	if tok.Type != TOKEN_NUMBER || err != nil {
		return 0, lineErrorf(l, "Invalid frame %q", tok.Lexeme)
	}
	return uint16(f), nil
}

func (p *parser) parseKeys(l *line, args []*lexmachine.Token, smooth bool) ([]mot.Keyframe, error) {
	stride := 2
	if smooth {
		stride = 3
	}
	if len(args)%stride != 0 {
		return nil, lineErrorf(l, "Expected groups of %d numbers, got %d numbers", stride, len(args))
	}
	keys := make([]mot.Keyframe, 0, len(args)/stride)
	for i := 0; i < len(args); i += stride {
		var k mot.Keyframe
		var err error
		if k.Frame, err = parseFrame(l, args[i]); err != nil {
			return nil, err
		}
		if k.Value, err = parseValue(l, args[i+1]); err != nil {
			return nil, err
		}
		if smooth {
			if k.Tangent, err = parseValue(l, args[i+2]); err != nil {
				return nil, err
			}
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (p *parser) channelLine(l *line) error {
	if !p.inBone {
		return lineErrorf(l, "Channel before first bone")
	}
	if p.anim == nil {
		return lineErrorf(l, "Channel of bone without animation")
	}
	if len(l.tokens) < 2 || l.tokens[1].Type != TOKEN_WORD {
		return lineErrorf(l, "Expected '<field>.<axis> <type> ...'")
	}

	target := string(l.tokens[0].Lexeme)
	dot := strings.IndexByte(target, '.')
	if dot < 0 {
		return lineErrorf(l, "Channel %q has no axis", target)
	}
	v := p.anim.Vector(mot.Field(target[:dot]))
	if v == nil {
		return lineErrorf(l, "Unknown field %q", target[:dot])
	}
	c := v.Axes()[strings.IndexByte("xyz", target[dot+1])]

	args := l.tokens[2:]
	switch tag := string(l.tokens[1].Lexeme); tag {
	case "empty":
		if len(args) != 0 {
			return lineErrorf(l, "Empty channel takes no values")
		}
		*c = mot.Empty()
	case "pose":
		if len(args) != 1 {
			return lineErrorf(l, "Pose channel takes single value")
		}
		value, err := parseValue(l, args[0])
		if err != nil {
			return err
		}
		*c = mot.Constant(value)
	case "linear", "smooth":
		keys, err := p.parseKeys(l, args, tag == "smooth")
		if err != nil {
			return err
		}
		if tag == "smooth" {
			*c = mot.Smooth(keys...)
		} else {
			*c = mot.Linear(keys...)
		}
	default:
		return lineErrorf(l, "Unknown channel type %q", tag)
	}
	return nil
}

// Parse reads motion listing produced by Render.
// names is used to resolve '$name' references and may be nil.
func Parse(text []byte, names NameIndex) (*mot.QualifiedMotion, error) {
	lines, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	p := &parser{names: names, qm: &mot.QualifiedMotion{}}
	for i := range lines {
		l := &lines[i]
		switch l.tokens[0].Type {
		case TOKEN_BONE:
			err = p.boneLine(l)
		case TOKEN_WORD:
			err = p.channelLine(l)
		default:
			err = lineErrorf(l, "Unexpected %q at line start", l.tokens[0].Lexeme)
		}
		if err != nil {
			return nil, err
		}
	}
	return p.qm, nil
}
