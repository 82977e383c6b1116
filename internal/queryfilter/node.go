package queryfilter

import "encoding/json"

// Operator relational operator or keyword of a clause
type Operator string

const (
	OpEq          Operator = "="
	OpNe          Operator = "<>"
	OpGt          Operator = ">"
	OpLt          Operator = "<"
	OpGte         Operator = ">="
	OpLte         Operator = "<="
	OpIs          Operator = "IS"
	OpIsNot       Operator = "IS NOT"
	OpIn          Operator = "IN"
	OpNotIn       Operator = "NOT IN"
	OpContainsAll Operator = "CONTAINS ALL"
	OpLike        Operator = "LIKE"
	OpNotLike     Operator = "NOT LIKE"
)

// relationalOperators symbols; two-character forms first so "<" never matches inside "<=" or "<>"
var relationalOperators = []Operator{OpGte, OpLte, OpNe, OpEq, OpGt, OpLt}

// relationalKeywords multi-word forms first
var relationalKeywords = []Operator{OpIsNot, OpIs, OpNotIn, OpIn, OpContainsAll, OpNotLike, OpLike}

// IsKeyword reports whether the operator is written as an English keyword.
func (o Operator) IsKeyword() bool {
	for _, k := range relationalKeywords {
		if o == k {
			return true
		}
	}
	return false
}

func (o Operator) takesList() bool {
	return o == OpIn || o == OpNotIn || o == OpContainsAll
}

// LogicalOp AND / OR
type LogicalOp string

const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
)

// Node cây filter đã compile: *Clause hoặc *Logical
type Node interface {
	String() string
	json.Marshaler
	isNode()
}

// Clause attribute OP value
type Clause struct {
	Attribute string
	Operator  Operator
	Value     Value
}

func (*Clause) isNode() {}

func (c *Clause) String() string {
	return c.Attribute + " " + string(c.Operator) + " " + c.Value.String()
}

func (c *Clause) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string   `json:"type"`
		Attribute string   `json:"attribute"`
		Operator  Operator `json:"operator"`
		Value     Value    `json:"value"`
	}{"clause", c.Attribute, c.Operator, c.Value})
}

// Logical Left Op Right
type Logical struct {
	Op    LogicalOp
	Left  Node
	Right Node
}

func (*Logical) isNode() {}

func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + string(l.Op) + " " + l.Right.String() + ")"
}

func (l *Logical) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string    `json:"type"`
		Op    LogicalOp `json:"op"`
		Left  Node      `json:"left"`
		Right Node      `json:"right"`
	}{"logical", l.Op, l.Left, l.Right})
}

// Walk visits every clause of the tree left to right.
func Walk(n Node, fn func(*Clause) error) error {
	switch v := n.(type) {
	case *Clause:
		return fn(v)
	case *Logical:
		if err := Walk(v.Left, fn); err != nil {
			return err
		}
		return Walk(v.Right, fn)
	}
	return nil
}
