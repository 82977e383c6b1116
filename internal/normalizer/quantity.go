package normalizer

import (
	"regexp"
	"strconv"
	"strings"
)

const amountPattern = `(?:\d+\s+\d+/\d+|\d+/\d+|\d+(?:[.,]\d+)?)`

// QuantityExtractor trích xuất số lượng ở đầu dòng nguyên liệu
type QuantityExtractor struct {
	rules   *Rules
	reLead  *regexp.Regexp
	reMixed *regexp.Regexp
	reFrac  *regexp.Regexp
}

// QuantityResult kết quả trích xuất số lượng
type QuantityResult struct {
	Found bool    `json:"found"` // Có số lượng ở đầu dòng không
	Value float64 `json:"value"` // Giá trị (cận dưới nếu là khoảng)
	Raw   string  `json:"raw"`   // Chuỗi gốc đã match
	Rest  string  `json:"rest"`  // Phần còn lại sau số lượng
}

var defaultExtractor = NewQuantityExtractor(nil)

// NewQuantityExtractor tạo mới QuantityExtractor; nil rules dùng rules embed
func NewQuantityExtractor(rules *Rules) *QuantityExtractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &QuantityExtractor{
		rules:   rules,
		reLead:  regexp.MustCompile(`^(` + amountPattern + `)(?:\s*(?:-|–|to)\s*` + amountPattern + `)?`),
		reMixed: regexp.MustCompile(`^(\d+)\s+(\d+)/(\d+)$`),
		reFrac:  regexp.MustCompile(`^(\d+)/(\d+)$`),
	}
}

// Extract cleans the line and reads a leading quantity. A range yields its
// lower bound; a unit glued to the number ("250g") is left at the start of Rest.
func (qe *QuantityExtractor) Extract(text string) QuantityResult {
	s := CollapseSpaces(qe.rules.ExpandFractions(text))

	m := qe.reLead.FindStringSubmatchIndex(s)
	if m == nil {
		return QuantityResult{Rest: s}
	}
	lower := s[m[2]:m[3]]
	value, ok := qe.parseAmount(lower)
	if !ok {
		return QuantityResult{Rest: s}
	}
	return QuantityResult{
		Found: true,
		Value: value,
		Raw:   s[m[0]:m[1]],
		Rest:  strings.TrimSpace(s[m[1]:]),
	}
}

func (qe *QuantityExtractor) parseAmount(s string) (float64, bool) {
	if m := qe.reMixed.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.Atoi(m[1])
		frac, ok := ratio(m[2], m[3])
		if !ok {
			return 0, false
		}
		return float64(whole) + frac, true
	}
	if m := qe.reFrac.FindStringSubmatch(s); m != nil {
		return ratio(m[1], m[2])
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func ratio(num, den string) (float64, bool) {
	n, err1 := strconv.Atoi(num)
	d, err2 := strconv.Atoi(den)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// ExtractQuantity returns the leading quantity of text, 0 when absent.
func ExtractQuantity(text string) float64 {
	return defaultExtractor.Extract(text).Value
}

// SplitQuantity returns the leading quantity and the remaining text.
func SplitQuantity(text string) QuantityResult {
	return defaultExtractor.Extract(text)
}
