package queryfilter

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var mongoOperators = map[Operator]string{
	OpNe:          "$ne",
	OpGt:          "$gt",
	OpLt:          "$lt",
	OpGte:         "$gte",
	OpLte:         "$lte",
	OpIsNot:       "$ne",
	OpIn:          "$in",
	OpNotIn:       "$nin",
	OpContainsAll: "$all",
}

// ToBSON chuyển cây filter thành Mongo query; nil node cho filter rỗng
func ToBSON(n Node) (bson.M, error) {
	switch v := n.(type) {
	case nil:
		return bson.M{}, nil
	case *Clause:
		return clauseToBSON(v)
	case *Logical:
		key := "$and"
		if v.Op == LogicalOr {
			key = "$or"
		}
		var parts bson.A
		for _, child := range flatten(v, v.Op) {
			m, err := ToBSON(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, m)
		}
		return bson.M{key: parts}, nil
	}
	return nil, fmt.Errorf("queryfilter: unsupported node %T", n)
}

// flatten collects the operands of a chain of the same logical operator.
func flatten(n Node, op LogicalOp) []Node {
	l, ok := n.(*Logical)
	if !ok || l.Op != op {
		return []Node{n}
	}
	return append(flatten(l.Left, op), flatten(l.Right, op)...)
}

func clauseToBSON(c *Clause) (bson.M, error) {
	value := c.Value.Interface()
	switch c.Operator {
	case OpEq, OpIs:
		return bson.M{c.Attribute: value}, nil
	case OpLike:
		return bson.M{c.Attribute: bson.M{"$regex": likeToRegex(c.Value.Str), "$options": "i"}}, nil
	case OpNotLike:
		return bson.M{c.Attribute: bson.M{"$not": primitive.Regex{Pattern: likeToRegex(c.Value.Str), Options: "i"}}}, nil
	}
	if mongoOp, ok := mongoOperators[c.Operator]; ok {
		return bson.M{c.Attribute: bson.M{mongoOp: value}}, nil
	}
	return nil, fmt.Errorf("queryfilter: unsupported operator %q", c.Operator)
}

// likeToRegex: % matches any run, _ a single character, the rest is literal.
func likeToRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
