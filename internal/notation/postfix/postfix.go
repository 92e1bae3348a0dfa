// Package postfix converts infix dice notation tokens to postfix order with
// an operator-precedence (shunting-yard) pass. It performs no evaluation.
package postfix

import (
	"fmt"
	"strconv"

	"github.com/subsigma/rolldice/internal/notation/grammar"
	"github.com/subsigma/rolldice/internal/notation/lexer"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

// FromText tokenizes text and converts it to postfix instructions.
func FromText(text string) ([]string, error) {
	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return Convert(tokens)
}

// Convert reorders infix tokens into postfix instructions.
//
// Numbers go straight to the output. Functions and open parentheses are
// pushed onto the operator stack. An operator first pops every stacked
// operator that binds at least as tightly (strictly tighter for
// right-associative operators). A close parenthesis pops back to its
// matching open parenthesis and then pops a function name waiting directly
// below it, binding the call to its argument list.
//
// Unbalanced parentheses, a separator outside a call, malformed numbers and
// unknown tokens return a CodeNotationSyntax error.
func Convert(tokens []string) ([]string, error) {
	output := make([]string, 0, len(tokens))
	var stack operatorStack

	for _, token := range tokens {
		switch {
		case grammar.IsNumber(token):
			if _, err := strconv.ParseFloat(token, 64); err != nil {
				return nil, syntaxError(fmt.Sprintf("invalid number %q", token))
			}
			output = append(output, token)

		case grammar.IsFunction(token):
			stack.push(token)

		case token == grammar.Separator:
			for {
				top, ok := stack.peek()
				if !ok {
					return nil, syntaxError("argument separator outside a function call")
				}
				if top == grammar.OpenParen {
					break
				}
				output = append(output, stack.pop())
			}

		case grammar.IsOperator(token):
			symbol, _ := grammar.Lookup(token)
			for {
				top, ok := stack.peek()
				if !ok || !grammar.IsOperator(top) {
					break
				}
				topPrecedence := grammar.Precedence(top)
				if (symbol.Associativity == grammar.Left && symbol.Precedence <= topPrecedence) ||
					(symbol.Associativity == grammar.Right && symbol.Precedence < topPrecedence) {
					output = append(output, stack.pop())
					continue
				}
				break
			}
			stack.push(token)

		case token == grammar.OpenParen:
			stack.push(token)

		case token == grammar.CloseParen:
			for {
				top, ok := stack.peek()
				if !ok {
					return nil, syntaxError("unbalanced closing parenthesis")
				}
				if top == grammar.OpenParen {
					break
				}
				output = append(output, stack.pop())
			}
			stack.pop()
			if top, ok := stack.peek(); ok && grammar.IsFunction(top) {
				output = append(output, stack.pop())
			}

		default:
			return nil, syntaxError(fmt.Sprintf("unknown token %q", token))
		}
	}

	for len(stack) > 0 {
		top := stack.pop()
		if top == grammar.OpenParen {
			return nil, syntaxError("unbalanced opening parenthesis")
		}
		output = append(output, top)
	}

	return output, nil
}

type operatorStack []string

func (s *operatorStack) push(token string) {
	*s = append(*s, token)
}

func (s *operatorStack) peek() (string, bool) {
	if len(*s) == 0 {
		return "", false
	}
	return (*s)[len(*s)-1], true
}

func (s *operatorStack) pop() string {
	old := *s
	top := old[len(old)-1]
	*s = old[:len(old)-1]
	return top
}

func syntaxError(message string) error {
	return apperrors.AtStage(apperrors.CodeNotationSyntax, apperrors.StageParse, message)
}
