// Package lexer splits dice notation text into token strings.
//
// Input containing whitespace is split on whitespace; input without any is
// scanned character by character using the grammar character classes.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/subsigma/rolldice/internal/notation/grammar"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

type strategy interface {
	next() (string, error)
}

// Lexer yields the tokens of one input text.
type Lexer struct {
	strategy strategy
}

// New creates a lexer for text, picking the whitespace or contiguous
// strategy by scanning the trimmed input once.
func New(text string) *Lexer {
	trimmed := strings.TrimSpace(text)
	if strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
		return &Lexer{strategy: &fieldStrategy{fields: strings.Fields(trimmed)}}
	}
	return &Lexer{strategy: &scanStrategy{input: trimmed}}
}

// Next returns the next non-empty token, or io.EOF once the input is exhausted.
func (l *Lexer) Next() (string, error) {
	return l.strategy.next()
}

// Tokenize returns every token of text.
func Tokenize(text string) ([]string, error) {
	l := New(text)
	var tokens []string
	for {
		token, err := l.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
}

type fieldStrategy struct {
	fields []string
	pos    int
}

func (s *fieldStrategy) next() (string, error) {
	if s.pos >= len(s.fields) {
		return "", io.EOF
	}
	s.pos++
	return s.fields[s.pos-1], nil
}

type scanStrategy struct {
	input string
	pos   int
}

func (s *scanStrategy) next() (string, error) {
	if s.pos >= len(s.input) {
		return "", io.EOF
	}

	start := s.pos
	c := rune(s.input[s.pos])
	switch grammar.Classify(c) {
	case grammar.ClassOperator:
		s.pos++
		return s.input[start:s.pos], nil
	case grammar.ClassOperand:
		for s.pos < len(s.input) && grammar.Classify(rune(s.input[s.pos])) == grammar.ClassOperand {
			s.pos++
		}
		return s.input[start:s.pos], nil
	case grammar.ClassFunctionPrefix:
		end := strings.IndexByte(s.input[start:], '(')
		if end < 0 {
			return "", apperrors.AtStage(apperrors.CodeNotationSyntax, apperrors.StageLex,
				fmt.Sprintf("function %q at offset %d is missing its argument list", s.input[start:], start))
		}
		s.pos = start + end
		return s.input[start:s.pos], nil
	default:
		return "", apperrors.AtStage(apperrors.CodeNotationSyntax, apperrors.StageLex,
			fmt.Sprintf("unexpected character %q at offset %d", s.input[start:start+1], start))
	}
}
