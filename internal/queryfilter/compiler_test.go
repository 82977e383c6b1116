package queryfilter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

func testCompiler() *Compiler {
	return NewCompiler(clockwork.NewFakeClockAt(testNow))
}

func compileClause(t *testing.T, expr string) *Clause {
	t.Helper()
	node, err := testCompiler().Compile(expr)
	require.NoError(t, err)
	clause, ok := node.(*Clause)
	require.True(t, ok, "expected a clause, got %T", node)
	return clause
}

func TestCompile_OperatorForm(t *testing.T) {
	c := compileClause(t, `name = "Soup"`)
	assert.Equal(t, "name", c.Attribute)
	assert.Equal(t, OpEq, c.Operator)
	assert.Equal(t, StringValue("Soup"), c.Value)
}

func TestCompile_KeywordForm(t *testing.T) {
	c := compileClause(t, "category.name IS NOT NULL")
	assert.Equal(t, "category.name", c.Attribute)
	assert.Equal(t, OpIsNot, c.Operator)
	assert.Equal(t, KindNull, c.Value.Kind)
}

func TestCompile_Operators(t *testing.T) {
	testCases := []struct {
		expr string
		op   Operator
		want Value
	}{
		{"qty >= 1.5", OpGte, NumberValue(1.5)},
		{"qty <= 2", OpLte, NumberValue(2)},
		{"qty <> 0", OpNe, NumberValue(0)},
		{"qty > 3", OpGt, NumberValue(3)},
		{"qty < 4", OpLt, NumberValue(4)},
		{"qty=5", OpEq, NumberValue(5)},
		{"name = Soup", OpEq, StringValue("Soup")},
		{"name = 'a >= b'", OpEq, StringValue("a >= b")},
		{"active = TRUE", OpEq, BoolValue(true)},
		{"active <> false", OpNe, BoolValue(false)},
		{"deleted_at = null", OpEq, NullValue()},
		{`name = "say \"hi\""`, OpEq, StringValue(`say "hi"`)},
		{`name = "a\\"`, OpEq, StringValue(`a\`)},
		{`name = "c:\\dir\\file"`, OpEq, StringValue(`c:\dir\file`)},
		{`name = 'it\'s'`, OpEq, StringValue(`it's`)},
		{`name = "50\% off"`, OpEq, StringValue(`50\% off`)},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			c := compileClause(t, tc.expr)
			assert.Equal(t, tc.op, c.Operator)
			assert.Equal(t, tc.want, c.Value)
		})
	}
}

func TestCompile_Keywords(t *testing.T) {
	testCases := []struct {
		expr string
		op   Operator
		want Value
	}{
		{"flag is true", OpIs, BoolValue(true)},
		{"flag IS   NOT false", OpIsNot, BoolValue(false)},
		{`tags CONTAINS ALL ["a", "b"]`, OpContainsAll, ListValue(StringValue("a"), StringValue("b"))},
		{"id in [1, 2]", OpIn, ListValue(NumberValue(1), NumberValue(2))},
		{"id NOT IN 3", OpNotIn, ListValue(NumberValue(3))},
		{"id IN []", OpIn, ListValue()},
		{`name like "%soup%"`, OpLike, StringValue("%soup%")},
		{`name NOT LIKE 'tomato soup%'`, OpNotLike, StringValue("tomato soup%")},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			c := compileClause(t, tc.expr)
			assert.Equal(t, tc.op, c.Operator)
			assert.Equal(t, tc.want, c.Value)
		})
	}
}

func TestCompile_Logical(t *testing.T) {
	node, err := testCompiler().Compile(`name = "Soup" AND category.name IN ["Dinner"]`)
	require.NoError(t, err)

	l, ok := node.(*Logical)
	require.True(t, ok)
	assert.Equal(t, LogicalAnd, l.Op)
	assert.Equal(t, &Clause{Attribute: "name", Operator: OpEq, Value: StringValue("Soup")}, l.Left)
	assert.Equal(t, &Clause{Attribute: "category.name", Operator: OpIn, Value: ListValue(StringValue("Dinner"))}, l.Right)

	raw, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "logical", "op": "AND",
		"left": {"type": "clause", "attribute": "name", "operator": "=", "value": "Soup"},
		"right": {"type": "clause", "attribute": "category.name", "operator": "IN", "value": ["Dinner"]}
	}`, string(raw))
}

func TestCompile_Precedence(t *testing.T) {
	testCases := []struct {
		expr string
		want string
	}{
		{"a = 1 OR b = 2 AND c = 3", "(a = 1 OR (b = 2 AND c = 3))"},
		{"(a = 1 OR b = 2) AND c = 3", "((a = 1 OR b = 2) AND c = 3)"},
		{"a = 1 and b = 2 and c = 3", "((a = 1 AND b = 2) AND c = 3)"},
		{"((a = 1))", "a = 1"},
		{`brand = "Orange AND lemon" or origin = x`, `(brand = "Orange AND lemon" OR origin = "x")`},
		{"id IN [1, 2] AND(qty > 1)", "(id IN [1, 2] AND qty > 1)"},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			node, err := testCompiler().Compile(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, node.String())
		})
	}
}

func TestCompile_Empty(t *testing.T) {
	for _, expr := range []string{"", "   "} {
		node, err := testCompiler().Compile(expr)
		assert.NoError(t, err)
		assert.Nil(t, node)
	}
}

func TestCompile_Now(t *testing.T) {
	testCases := []struct {
		expr string
		want time.Time
	}{
		{"created_at > $NOW", testNow},
		{"created_at > $NOW-1y", time.Date(2023, 2, 28, 12, 0, 0, 0, time.UTC)},
		{"created_at > $NOW+1y", time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)},
		{"created_at > $NOW+1d", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"created_at > $NOW-2m", time.Date(2023, 12, 29, 12, 0, 0, 0, time.UTC)},
		{"created_at > $NOW+2H", time.Date(2024, 2, 29, 14, 0, 0, 0, time.UTC)},
		{"created_at > $NOW-30M", time.Date(2024, 2, 29, 11, 30, 0, 0, time.UTC)},
		{"created_at > $NOW+15S", time.Date(2024, 2, 29, 12, 0, 15, 0, time.UTC)},
		{`created_at > "$NOW-10d"`, time.Date(2024, 2, 19, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			c := compileClause(t, tc.expr)
			require.Equal(t, KindTimestamp, c.Value.Kind)
			assert.True(t, tc.want.Equal(c.Value.Time), "want %s, got %s", tc.want, c.Value.Time)
		})
	}
}

func TestCompile_NowMonthEnd(t *testing.T) {
	compiler := NewCompiler(clockwork.NewFakeClockAt(time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)))

	node, err := compiler.Compile("due <= $NOW+1m")
	require.NoError(t, err)
	got := node.(*Clause).Value.Time
	assert.Equal(t, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC), got)
}

func TestCompile_NowInList(t *testing.T) {
	c := compileClause(t, `day IN ["$NOW", $NOW-1d, "x"]`)
	require.Len(t, c.Value.List, 3)
	assert.Equal(t, TimestampValue(testNow), c.Value.List[0])
	assert.Equal(t, TimestampValue(testNow.AddDate(0, 0, -1)), c.Value.List[1])
	assert.Equal(t, StringValue("x"), c.Value.List[2])

	raw, err := json.Marshal(c.Value)
	require.NoError(t, err)
	assert.JSONEq(t, `["2024-02-29T12:00:00Z", "2024-02-28T12:00:00Z", "x"]`, string(raw))
}

func TestCompile_NowDeterministic(t *testing.T) {
	first := compileRealNow(t)
	second := compileRealNow(t)
	assert.WithinDuration(t, first, second, time.Second)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 1), first, 5*time.Second)
}

func compileRealNow(t *testing.T) time.Time {
	t.Helper()
	node, err := Compile("created_at > $NOW+1d")
	require.NoError(t, err)
	return node.(*Clause).Value.Time
}

func TestCompile_InvalidPlaceholder(t *testing.T) {
	for _, value := range []string{"$NOW+1", "$NOWx", "$NOW*1d", "$NOW+xd", "$NOW+1w", "$NOW+d"} {
		t.Run(value, func(t *testing.T) {
			node, err := testCompiler().Compile("created_at > " + value)
			assert.Nil(t, node)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlaceholder))
			assert.False(t, errors.Is(err, ErrUnparseableClause))

			var fe *FilterError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, value, fe.Fragment)
		})
	}
}

func TestCompile_UnparseableClause(t *testing.T) {
	testCases := []struct {
		expr     string
		fragment string
	}{
		{expr: "name", fragment: "name"},
		{expr: "name BETWEEN 1", fragment: "name BETWEEN 1"},
		{expr: "name IS", fragment: "name IS"},
		{expr: "= 5", fragment: "= 5"},
		{expr: "1abc = 2", fragment: "1abc = 2"},
		{expr: "name =", fragment: "name ="},
		{expr: "a = [1, 2]", fragment: "a = [1, 2]"},
		{expr: "name LIKE 5", fragment: "name LIKE 5"},
		{expr: `name = "open`, fragment: `name = "open`},
		{expr: "a = 1 AND"},
		{expr: "(a = 1", fragment: "a = 1"},
		{expr: "a = 1)", fragment: ")"},
		{expr: `a = 1 AND b BETWEEN 2`, fragment: "b BETWEEN 2"},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			node, err := testCompiler().Compile(tc.expr)
			assert.Nil(t, node)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparseableClause), "got %v", err)

			var fe *FilterError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.fragment, fe.Fragment)
		})
	}
}

func TestWalk(t *testing.T) {
	node, err := testCompiler().Compile("a = 1 OR (b = 2 AND c = 3)")
	require.NoError(t, err)

	var attrs []string
	require.NoError(t, Walk(node, func(c *Clause) error {
		attrs = append(attrs, c.Attribute)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, attrs)

	stop := errors.New("stop")
	assert.ErrorIs(t, Walk(node, func(*Clause) error { return stop }), stop)
}

func TestCompile_PlaceholderOutOfRange(t *testing.T) {
	for _, value := range []string{
		"$NOW+9999999999999H",
		"$NOW-9999999999999999M",
		"$NOW+9999999999999999S",
		"$NOW-20000y",
		"$NOW+8000y",
		"$NOW+9999999999m",
		"$NOW+9999999999d",
	} {
		t.Run(value, func(t *testing.T) {
			node, err := testCompiler().Compile("created_at >= " + value)
			assert.Nil(t, node)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlaceholder))

			var fe *FilterError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, value, fe.Fragment)
		})
	}

	c := compileClause(t, "created_at <= $NOW+2000000H")
	assert.Equal(t, testNow.Add(2000000*time.Hour), c.Value.Time)
	assert.True(t, c.Value.Time.After(testNow))
}
