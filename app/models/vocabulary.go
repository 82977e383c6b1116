package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// IngredientAlias tên gọi khác của food/unit
type IngredientAlias struct {
	Name string `bson:"name" json:"name"`
}

// IngredientUnit đơn vị đo trong vocabulary của household
type IngredientUnit struct {
	ID                 string            `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID            string            `bson:"group_id" json:"group_id"`                                           // ID household
	Name               string            `bson:"name" json:"name"`                                                   // Tên đơn vị
	PluralName         string            `bson:"plural_name,omitempty" json:"plural_name,omitempty"`                 // Dạng số nhiều
	Description        string            `bson:"description,omitempty" json:"description,omitempty"`                 // Mô tả
	Abbreviation       string            `bson:"abbreviation,omitempty" json:"abbreviation,omitempty"`               // Viết tắt
	PluralAbbreviation string            `bson:"plural_abbreviation,omitempty" json:"plural_abbreviation,omitempty"` // Viết tắt số nhiều
	UseAbbreviation    bool              `bson:"use_abbreviation" json:"use_abbreviation"`                           // Hiển thị bằng viết tắt
	Fraction           bool              `bson:"fraction" json:"fraction"`                                           // Hiển thị số lượng dạng phân số
	Aliases            []IngredientAlias `bson:"aliases,omitempty" json:"aliases,omitempty"`                         // Các tên gọi khác
	CreatedAt          time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at" json:"updated_at"`
}

// IngredientFood thực phẩm trong vocabulary của household
type IngredientFood struct {
	ID          string            `bson:"_id,omitempty" json:"id,omitempty"`
	GroupID     string            `bson:"group_id" json:"group_id"`                           // ID household
	Name        string            `bson:"name" json:"name"`                                   // Tên thực phẩm
	PluralName  string            `bson:"plural_name,omitempty" json:"plural_name,omitempty"` // Dạng số nhiều
	Description string            `bson:"description,omitempty" json:"description,omitempty"` // Mô tả
	Aliases     []IngredientAlias `bson:"aliases,omitempty" json:"aliases,omitempty"`         // Các tên gọi khác
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at" json:"updated_at"`
}

// Validation errors
var (
	ErrEmptyName      = errors.New("name must not be empty")
	ErrDuplicateAlias = errors.New("duplicate alias")
	ErrAliasConflict  = errors.New("alias conflicts with another entry in this group")
)

// IsResolved unit đã được map vào vocabulary (có ID)
func (u *IngredientUnit) IsResolved() bool {
	return u != nil && u.ID != ""
}

// IsResolved food đã được map vào vocabulary (có ID)
func (f *IngredientFood) IsResolved() bool {
	return f != nil && f.ID != ""
}

// Validate kiểm tra unit hợp lệ
func (u *IngredientUnit) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if err := validateOptional(map[string]string{
		"plural_name":         u.PluralName,
		"abbreviation":        u.Abbreviation,
		"plural_abbreviation": u.PluralAbbreviation,
	}); err != nil {
		return err
	}
	return validateAliases(u.Aliases)
}

// Validate kiểm tra food hợp lệ
func (f *IngredientFood) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if err := validateOptional(map[string]string{"plural_name": f.PluralName}); err != nil {
		return err
	}
	return validateAliases(f.Aliases)
}

// validateOptional field tùy chọn: rỗng hoặc còn ký tự sau khi trim
func validateOptional(fields map[string]string) error {
	for field, v := range fields {
		if v != "" && strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s: %w", field, ErrEmptyName)
		}
	}
	return nil
}

// EntryName tên của food
func (f IngredientFood) EntryName() string { return f.Name }

// AliasNames tên các alias của food
func (f IngredientFood) AliasNames() []string { return aliasNames(f.Aliases) }

// EntryName tên của unit
func (u IngredientUnit) EntryName() string { return u.Name }

// AliasNames tên các alias của unit
func (u IngredientUnit) AliasNames() []string { return aliasNames(u.Aliases) }

func aliasNames(aliases []IngredientAlias) []string {
	names := make([]string, 0, len(aliases))
	for _, a := range aliases {
		names = append(names, strings.TrimSpace(a.Name))
	}
	return names
}

// VocabularyEntry food hoặc unit
type VocabularyEntry interface {
	EntryName() string
	AliasNames() []string
}

// CheckAliasConflicts an alias may not equal the name or an alias of another
// entry of the same batch (case-insensitive).
func CheckAliasConflicts[T VocabularyEntry](entries []T) error {
	names := make(map[string]int, len(entries))
	for i, e := range entries {
		names[VocabularyKey(e.EntryName())] = i
	}
	aliases := make(map[string]int)
	for i, e := range entries {
		for _, alias := range e.AliasNames() {
			key := VocabularyKey(alias)
			if owner, ok := names[key]; ok && owner != i {
				return fmt.Errorf("%w: %q (%s)", ErrAliasConflict, alias, entries[owner].EntryName())
			}
			if owner, ok := aliases[key]; ok && owner != i {
				return fmt.Errorf("%w: %q (%s)", ErrAliasConflict, alias, entries[owner].EntryName())
			}
			aliases[key] = i
		}
	}
	return nil
}

// VocabularyKey khóa so sánh name/alias: trim + lowercase
func VocabularyKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateAliases(aliases []IngredientAlias) error {
	seen := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		key := strings.ToLower(strings.TrimSpace(a.Name))
		if key == "" {
			return fmt.Errorf("alias: %w", ErrEmptyName)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w %q", ErrDuplicateAlias, a.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}
