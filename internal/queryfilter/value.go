package queryfilter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind loại giá trị của một clause
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindNull
	KindTimestamp
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Value giá trị đã được parse của một clause
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
	List []Value
}

func StringValue(s string) Value       { return Value{Kind: KindString, Str: s} }
func NumberValue(n float64) Value      { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func NullValue() Value                 { return Value{Kind: KindNull} }
func TimestampValue(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t} }
func ListValue(items ...Value) Value   { return Value{Kind: KindList, List: items} }

// Interface native Go form: string, float64, bool, nil, time.Time or []any.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindNull:
		return nil
	case KindTimestamp:
		return v.Time
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Interface()
		}
		return out
	}
	return v.Str
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "NULL"
	case KindTimestamp:
		return strconv.Quote(v.Time.Format(TimestampLayout))
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return strconv.Quote(v.Str)
}

// MarshalJSON timestamps are serialized as RFC 3339 strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindTimestamp:
		return json.Marshal(v.Time.Format(TimestampLayout))
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Interface())
}

// parseValue decodes a raw value token: quoted string, [list] or bare word.
func parseValue(raw string, now time.Time) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, clauseError("missing value", raw)
	}

	if raw[0] == '[' {
		if raw[len(raw)-1] != ']' {
			return Value{}, clauseError("unterminated list", raw)
		}
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		if inner == "" {
			return ListValue(), nil
		}
		elems, err := splitOutside(inner, ',')
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, len(elems))
		for _, elem := range elems {
			elem = strings.TrimSpace(elem)
			if elem == "" || elem[0] == '[' {
				return Value{}, clauseError("invalid list element", raw)
			}
			item, err := parseScalar(elem, now)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return ListValue(items...), nil
	}
	return parseScalar(raw, now)
}

func parseScalar(raw string, now time.Time) (Value, error) {
	if q := raw[0]; q == '"' || q == '\'' {
		if len(raw) < 2 || raw[len(raw)-1] != q {
			return Value{}, clauseError("unterminated quoted value", raw)
		}
		inner := unescapeQuoted(raw[1:len(raw)-1], q)
		if strings.HasPrefix(inner, NowPlaceholder) {
			return nowValue(inner, now)
		}
		return StringValue(inner), nil
	}

	switch {
	case strings.EqualFold(raw, "null"):
		return NullValue(), nil
	case strings.EqualFold(raw, "true"):
		return BoolValue(true), nil
	case strings.EqualFold(raw, "false"):
		return BoolValue(false), nil
	case strings.HasPrefix(raw, NowPlaceholder):
		return nowValue(raw, now)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return NumberValue(n), nil
	}
	return StringValue(raw), nil
}

// unescapeQuoted resolves \<quote> and \\; other backslashes stay literal.
func unescapeQuoted(s string, quote byte) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == quote || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func nowValue(raw string, now time.Time) (Value, error) {
	t, err := evalNow(raw, now)
	if err != nil {
		return Value{}, err
	}
	return TimestampValue(t), nil
}
