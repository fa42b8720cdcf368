package condition

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer splits a condition into words and operators. Keywords are words too;
// the grammar tells them apart from flag names. Flag names may hold letters
// of any script, digits, underscores and hyphens.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_-]*`},
	{Name: "Operator", Pattern: `==|!=`},
	{Name: "Punct", Pattern: `[()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Expression is a chain of alternatives joined by "or".
type Expression struct {
	Or []*AndTerm `parser:"@@ ( \"or\" @@ )*"`
}

// AndTerm is a chain of operands joined by "and".
type AndTerm struct {
	And []*NotTerm `parser:"@@ ( \"and\" @@ )*"`
}

// NotTerm is an optionally negated comparison.
type NotTerm struct {
	Not     *NotTerm    `parser:"  \"not\" @@"`
	Compare *Comparison `parser:"| @@"`
}

// Comparison is a value, optionally compared against another with == or !=.
type Comparison struct {
	Left  *Value `parser:"@@"`
	Op    string `parser:"( @Operator"`
	Right *Value `parser:"  @@ )?"`
}

// Value is a boolean literal, a flag name or a parenthesised expression.
type Value struct {
	Literal *string     `parser:"  @(\"True\" | \"true\" | \"False\" | \"false\")"`
	Flag    Flag        `parser:"| @Ident"`
	Group   *Expression `parser:"| \"(\" @@ \")\""`
}

var reserved = map[string]bool{
	"and": true, "or": true, "not": true,
	"True": true, "False": true, "true": true, "false": true,
}

// Flag is a flag name. Keywords cannot be used as flag names.
type Flag string

func (f *Flag) Capture(values []string) error {
	if len(values) != 1 || reserved[values[0]] {
		return fmt.Errorf("%q is not a flag name", values)
	}
	*f = Flag(values[0])
	return nil
}

// Build creates the condition parser.
func Build() *participle.Parser[Expression] {
	return participle.MustBuild[Expression](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
	)
}
