package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PluralPolicy cách hiển thị số nhiều cho food
type PluralPolicy string

// PluralPolicy constants
const (
	PluralAlways      PluralPolicy = "always"
	PluralWithoutUnit PluralPolicy = "without-unit"
	PluralNever       PluralPolicy = "never"
)

// IsValid kiểm tra policy có hợp lệ không
func (p PluralPolicy) IsValid() bool {
	switch p {
	case PluralAlways, PluralWithoutUnit, PluralNever:
		return true
	}
	return false
}

// RecipeIngredient một dòng nguyên liệu đã được tách thành phần
type RecipeIngredient struct {
	Quantity     float64         `json:"quantity"`                // Số lượng (0 = không có)
	Unit         *IngredientUnit `json:"unit,omitempty"`          // Đơn vị
	Food         *IngredientFood `json:"food,omitempty"`          // Thực phẩm
	Note         string          `json:"note"`                    // Ghi chú
	OriginalText string          `json:"original_text,omitempty"` // Dòng gốc
}

// IngredientConfidence độ tin cậy của từng thành phần, trong [0,1]
type IngredientConfidence struct {
	Average  float64 `json:"average"`
	Quantity float64 `json:"quantity"`
	Unit     float64 `json:"unit"`
	Food     float64 `json:"food"`
	Comment  float64 `json:"comment"`
}

// ParsedIngredient kết quả parse của một dòng input
type ParsedIngredient struct {
	Input      string               `json:"input"`
	Ingredient RecipeIngredient     `json:"ingredient"`
	Confidence IngredientConfidence `json:"confidence"`
}

// Display chuỗi hiển thị của ingredient theo plural policy
func (ri *RecipeIngredient) Display(policy PluralPolicy) string {
	parts := make([]string, 0, 4)

	if ri.Quantity > 0 {
		fraction := ri.Unit != nil && ri.Unit.Fraction
		parts = append(parts, FormatQuantity(ri.Quantity, fraction))
	}

	plural := ri.Quantity > 1
	if ri.Unit != nil {
		if name := ri.Unit.displayName(plural); name != "" {
			parts = append(parts, name)
		}
	}

	if ri.Food != nil {
		usePlural := false
		switch policy {
		case PluralAlways:
			usePlural = plural
		case PluralWithoutUnit:
			usePlural = plural && ri.Unit == nil
		}
		name := ri.Food.Name
		if usePlural && ri.Food.PluralName != "" {
			name = ri.Food.PluralName
		}
		if name != "" {
			parts = append(parts, name)
		}
	}

	if ri.Note != "" {
		parts = append(parts, ri.Note)
	}
	return strings.Join(parts, " ")
}

func (u *IngredientUnit) displayName(plural bool) string {
	if u.UseAbbreviation && u.Abbreviation != "" {
		if plural && u.PluralAbbreviation != "" {
			return u.PluralAbbreviation
		}
		return u.Abbreviation
	}
	if plural && u.PluralName != "" {
		return u.PluralName
	}
	return u.Name
}

var displayDenominators = []int{2, 3, 4, 8}

// FormatQuantity format số lượng, dạng hỗn số khi fraction = true
func FormatQuantity(q float64, fraction bool) string {
	if !fraction {
		return strconv.FormatFloat(math.Round(q*1000)/1000, 'f', -1, 64)
	}

	whole := math.Floor(q)
	rest := q - whole
	num, den := 0, 1
	best := rest
	for _, d := range displayDenominators {
		n := int(math.Round(rest * float64(d)))
		if diff := math.Abs(rest - float64(n)/float64(d)); diff < best-1e-9 {
			best, num, den = diff, n, d
		}
	}
	if num == den {
		whole++
		num = 0
	}

	switch {
	case num == 0:
		return strconv.Itoa(int(whole))
	case whole == 0:
		return fmt.Sprintf("%d/%d", num, den)
	default:
		return fmt.Sprintf("%d %d/%d", int(whole), num, den)
	}
}
