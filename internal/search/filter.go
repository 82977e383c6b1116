package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/recipe-parser/internal/queryfilter"
)

// ErrUnsupportedFilter operator không có trong cú pháp filter của Meilisearch
var ErrUnsupportedFilter = errors.New("search: filter not supported by the search index")

// FilterGroup filter theo group_id
func FilterGroup(groupID string) string {
	return fmt.Sprintf("group_id = %s", quote(groupID))
}

// FilterString renders a compiled filter tree as a Meilisearch filter
// expression. LIKE patterns have no Meilisearch equivalent; CONTAINS ALL
// becomes an AND of equalities.
func FilterString(n queryfilter.Node) (string, error) {
	switch v := n.(type) {
	case nil:
		return "", nil
	case *queryfilter.Clause:
		return clauseString(v)
	case *queryfilter.Logical:
		left, err := FilterString(v.Left)
		if err != nil {
			return "", err
		}
		right, err := FilterString(v.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + string(v.Op) + " " + right + ")", nil
	}
	return "", fmt.Errorf("%w: node %T", ErrUnsupportedFilter, n)
}

// ScopedFilter group filter AND (user filter); groupID rỗng chỉ render filter
func ScopedFilter(groupID string, n queryfilter.Node) (string, error) {
	user, err := FilterString(n)
	if err != nil {
		return "", err
	}
	if groupID == "" {
		return user, nil
	}
	if user == "" {
		return FilterGroup(groupID), nil
	}
	return FilterGroup(groupID) + " AND " + user, nil
}

func clauseString(c *queryfilter.Clause) (string, error) {
	attr := c.Attribute
	switch c.Operator {
	case queryfilter.OpIs, queryfilter.OpIsNot:
		if c.Value.Kind == queryfilter.KindNull {
			return attr + " " + string(c.Operator) + " NULL", nil
		}
		op := "="
		if c.Operator == queryfilter.OpIsNot {
			op = "!="
		}
		return binary(attr, op, c.Value)
	case queryfilter.OpEq, queryfilter.OpGt, queryfilter.OpLt, queryfilter.OpGte, queryfilter.OpLte:
		return binary(attr, string(c.Operator), c.Value)
	case queryfilter.OpNe:
		return binary(attr, "!=", c.Value)
	case queryfilter.OpIn, queryfilter.OpNotIn:
		items := make([]string, 0, len(c.Value.List))
		for _, item := range c.Value.List {
			s, err := literal(item)
			if err != nil {
				return "", err
			}
			items = append(items, s)
		}
		return attr + " " + string(c.Operator) + " [" + strings.Join(items, ", ") + "]", nil
	case queryfilter.OpContainsAll:
		if len(c.Value.List) == 0 {
			return "", fmt.Errorf("%w: empty CONTAINS ALL on %s", ErrUnsupportedFilter, attr)
		}
		parts := make([]string, 0, len(c.Value.List))
		for _, item := range c.Value.List {
			s, err := binary(attr, "=", item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFilter, c.Operator)
}

func binary(attr, op string, v queryfilter.Value) (string, error) {
	s, err := literal(v)
	if err != nil {
		return "", err
	}
	return attr + " " + op + " " + s, nil
}

// literal timestamps become unix seconds
func literal(v queryfilter.Value) (string, error) {
	switch v.Kind {
	case queryfilter.KindString:
		return quote(v.Str), nil
	case queryfilter.KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), nil
	case queryfilter.KindBool:
		return strconv.FormatBool(v.Bool), nil
	case queryfilter.KindTimestamp:
		return strconv.FormatInt(v.Time.Unix(), 10), nil
	}
	return "", fmt.Errorf("%w: %s value", ErrUnsupportedFilter, v.Kind)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
