// Package condition evaluates the boolean expressions that gate blocks,
// choices and endings.
//
// The grammar is closed: flag names, True/False literals, == and !=, and,
// or, not and parentheses. Nothing else can be expressed, so content can
// never run code.
package condition

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/alecthomas/participle/v2"
)

var errMalformed = errors.New("malformed expression")

// Evaluator parses and evaluates conditions. Parsed expressions are cached.
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	parser *participle.Parser[Expression]
	cache  map[string]*Expression
	logger *log.Logger
}

// NewEvaluator returns an evaluator that reports unparsable expressions to
// logger. A nil logger discards them.
func NewEvaluator(logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Evaluator{
		parser: Build(),
		cache:  make(map[string]*Expression),
		logger: logger,
	}
}

// Evaluate reports whether expression holds for flags. An empty expression
// always holds. Any expression that cannot be parsed or evaluated is false.
func (e *Evaluator) Evaluate(expression string, flags map[string]bool) bool {
	if strings.TrimSpace(expression) == "" {
		return true
	}
	expr, err := e.parse(expression)
	if err != nil {
		e.logger.Printf("condition %q: %v", expression, err)
		return false
	}
	v, err := expr.eval(flags)
	if err != nil {
		e.logger.Printf("condition %q: %v", expression, err)
		return false
	}
	return v
}

// Check returns the parse error of expression, if any.
func (e *Evaluator) Check(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return nil
	}
	_, err := e.parse(expression)
	return err
}

func (e *Evaluator) parse(expression string) (*Expression, error) {
	if expr, ok := e.cache[expression]; ok {
		if expr == nil {
			return nil, errMalformed
		}
		return expr, nil
	}
	expr, err := e.parser.ParseString("", expression)
	if err != nil {
		e.cache[expression] = nil
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	e.cache[expression] = expr
	return expr, nil
}

func (x *Expression) eval(flags map[string]bool) (bool, error) {
	if x == nil || len(x.Or) == 0 {
		return false, errMalformed
	}
	for _, term := range x.Or {
		v, err := term.eval(flags)
		if err != nil {
			return false, err
		}
		if v {
			return true, nil
		}
	}
	return false, nil
}

func (a *AndTerm) eval(flags map[string]bool) (bool, error) {
	if a == nil || len(a.And) == 0 {
		return false, errMalformed
	}
	for _, term := range a.And {
		v, err := term.eval(flags)
		if err != nil {
			return false, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (n *NotTerm) eval(flags map[string]bool) (bool, error) {
	switch {
	case n == nil:
		return false, errMalformed
	case n.Not != nil:
		v, err := n.Not.eval(flags)
		return !v, err
	case n.Compare != nil:
		return n.Compare.eval(flags)
	}
	return false, errMalformed
}

func (c *Comparison) eval(flags map[string]bool) (bool, error) {
	left, err := c.Left.eval(flags)
	if err != nil {
		return false, err
	}
	if c.Op == "" {
		return left, nil
	}
	right, err := c.Right.eval(flags)
	if err != nil {
		return false, err
	}
	switch c.Op {
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	}
	return false, fmt.Errorf("%w: unknown operator %q", errMalformed, c.Op)
}

func (v *Value) eval(flags map[string]bool) (bool, error) {
	switch {
	case v == nil:
		return false, errMalformed
	case v.Literal != nil:
		return strings.EqualFold(*v.Literal, "true"), nil
	case v.Flag != "":
		return flags[string(v.Flag)], nil
	case v.Group != nil:
		return v.Group.eval(flags)
	}
	return false, errMalformed
}
