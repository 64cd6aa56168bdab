package motscript

import (
	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_BONE = iota
	TOKEN_WORD
	TOKEN_NUMBER
	TOKEN_NEWLINE
	TOKEN_COMMENT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`\$#?[a-zA-Z0-9_\.\-]+`), getToken(TOKEN_BONE))
	lexer.Add([]byte(`[a-z_][a-z0-9_]*(\.[xyz])?`), getToken(TOKEN_WORD))
	lexer.Add([]byte(`[\+\-]?[0-9]*\.?[0-9]+`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`[\+\-]?Inf|NaN`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`(\n|\r|\n\r)+`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`//[^\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`( |\t)+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

type line struct {
	number int
	tokens []*lexmachine.Token
}

// tokenize groups tokens by source line, comments and empty lines are dropped
func tokenize(text []byte) ([]line, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	lines := make([]line, 0, 64)
	current := -1
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)

		switch tok.Type {
		case TOKEN_NEWLINE:
			current = -1
		case TOKEN_COMMENT:
		default:
			if current < 0 {
				lines = append(lines, line{number: tok.StartLine})
				current = len(lines) - 1
			}
			lines[current].tokens = append(lines[current].tokens, tok)
		}
	}
	return lines, nil
}
