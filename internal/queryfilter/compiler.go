// Package queryfilter compiles filter expressions such as
//
//	name = "Soup" AND category.name IN ["Dinner"]
//
// into a backend-agnostic tree. $NOW placeholders are evaluated at compile
// time against the compiler's clock.
package queryfilter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

var attributePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Compiler biên dịch biểu thức filter
type Compiler struct {
	clock clockwork.Clock
}

// NewCompiler tạo mới Compiler; clock nil dùng đồng hồ thật
func NewCompiler(clock clockwork.Clock) *Compiler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Compiler{clock: clock}
}

var defaultCompiler = NewCompiler(nil)

// Compile dùng đồng hồ thật
func Compile(expr string) (Node, error) {
	return defaultCompiler.Compile(expr)
}

// Compile returns (nil, nil) for a blank expression. Any failure rejects the
// whole expression.
func (c *Compiler) Compile(expr string) (Node, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	p := &treeParser{tokens: tokens, now: c.clock.Now()}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, clauseError("unexpected token", p.tokens[p.pos].describe())
	}
	return node, nil
}

// treeParser: expr := term (OR term)*; term := factor (AND factor)*;
// factor := "(" expr ")" | clause
type treeParser struct {
	tokens []token
	pos    int
	now    time.Time
}

func (p *treeParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *treeParser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: LogicalOr, Left: left, Right: right}
	}
}

func (p *treeParser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: LogicalAnd, Left: left, Right: right}
	}
}

func (p *treeParser) parseFactor() (Node, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, clauseError("unexpected end of expression", "")
	}
	switch tok.kind {
	case tokenLParen:
		p.pos++
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokenRParen {
			return nil, clauseError("missing closing parenthesis", node.String())
		}
		p.pos++
		return node, nil
	case tokenClause:
		p.pos++
		return parseClause(tok.text, p.now)
	}
	return nil, clauseError("unexpected token", tok.describe())
}

// parseClause tries the operator form first, then the keyword form.
func parseClause(text string, now time.Time) (*Clause, error) {
	for _, op := range relationalOperators {
		idx := indexOutside(text, string(op))
		if idx < 0 {
			continue
		}
		attr := strings.TrimSpace(text[:idx])
		raw := strings.TrimSpace(text[idx+len(op):])
		return buildClause(text, attr, op, raw, now)
	}

	fields := fieldsOutside(text)
	if len(fields) < 3 {
		return nil, clauseError("not a filter clause", text)
	}
	keyword := strings.ToUpper(strings.Join(fields[1:len(fields)-1], " "))
	for _, op := range relationalKeywords {
		if keyword == string(op) {
			return buildClause(text, fields[0], op, fields[len(fields)-1], now)
		}
	}
	return nil, clauseError(fmt.Sprintf("unknown relational keyword %q", keyword), text)
}

func buildClause(text, attr string, op Operator, raw string, now time.Time) (*Clause, error) {
	if !attributePattern.MatchString(attr) {
		return nil, clauseError("invalid attribute", text)
	}
	if raw == "" {
		return nil, clauseError("missing value", text)
	}
	value, err := parseValue(raw, now)
	if err != nil {
		return nil, err
	}

	switch {
	case op.takesList():
		if value.Kind != KindList {
			value = ListValue(value)
		}
	case value.Kind == KindList:
		return nil, clauseError(fmt.Sprintf("%s does not accept a list", op), text)
	case (op == OpLike || op == OpNotLike) && value.Kind != KindString:
		return nil, clauseError(fmt.Sprintf("%s requires a string pattern", op), text)
	}
	return &Clause{Attribute: attr, Operator: op, Value: value}, nil
}
