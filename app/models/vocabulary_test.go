package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngredientFood_Validate(t *testing.T) {
	testCases := []struct {
		name string
		food IngredientFood
		err  error
	}{
		{name: "valid", food: IngredientFood{Name: "onion", PluralName: "onions"}},
		{name: "empty name", food: IngredientFood{Name: "  "}, err: ErrEmptyName},
		{name: "blank plural", food: IngredientFood{Name: "onion", PluralName: " "}, err: ErrEmptyName},
		{name: "blank alias", food: IngredientFood{Name: "onion", Aliases: []IngredientAlias{{Name: ""}}}, err: ErrEmptyName},
		{
			name: "duplicate alias",
			food: IngredientFood{Name: "onion", Aliases: []IngredientAlias{{Name: "shallot"}, {Name: "Shallot "}}},
			err:  ErrDuplicateAlias,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.food.Validate()
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestIngredientUnit_ValidateBlankAbbreviation(t *testing.T) {
	u := IngredientUnit{Name: "cup", Abbreviation: "  "}
	assert.ErrorIs(t, u.Validate(), ErrEmptyName)

	u = IngredientUnit{Name: "cup", Abbreviation: "c", PluralAbbreviation: "cs"}
	assert.NoError(t, u.Validate())
}

func TestCheckAliasConflicts(t *testing.T) {
	ok := []IngredientFood{
		{Name: "green onion", Aliases: []IngredientAlias{{Name: "scallion"}}},
		{Name: "onion", Aliases: []IngredientAlias{{Name: "yellow onion"}}},
	}
	assert.NoError(t, CheckAliasConflicts(ok))

	aliasVsAlias := []IngredientFood{
		{Name: "green onion", Aliases: []IngredientAlias{{Name: "scallion"}}},
		{Name: "spring onion", Aliases: []IngredientAlias{{Name: "SCALLION"}}},
	}
	assert.ErrorIs(t, CheckAliasConflicts(aliasVsAlias), ErrAliasConflict)

	aliasVsName := []IngredientUnit{
		{Name: "tablespoon"},
		{Name: "spoon", Aliases: []IngredientAlias{{Name: "Tablespoon"}}},
	}
	assert.ErrorIs(t, CheckAliasConflicts(aliasVsName), ErrAliasConflict)

	// alias trùng với chính name của entry: không xung đột
	self := []IngredientFood{{Name: "onion", Aliases: []IngredientAlias{{Name: "Onion"}}}}
	assert.NoError(t, CheckAliasConflicts(self))
}
