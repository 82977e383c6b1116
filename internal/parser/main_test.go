package parser

import (
	"testing"

	"github.com/recipe-parser/app/models"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func food(id, name string) models.IngredientFood {
	return models.IngredientFood{ID: id, GroupID: "g1", Name: name}
}

func unit(id, name string) models.IngredientUnit {
	return models.IngredientUnit{ID: id, GroupID: "g1", Name: name}
}

// testVocabulary household vocabulary dùng chung cho các test
func testVocabulary() *Vocabulary {
	foods := []models.IngredientFood{
		food("f-potatoes", "potatoes"),
		food("f-onion", "onion"),
		food("f-green-onion", "green onion"),
		food("f-pearl-onions", "frozen pearl onions"),
		food("f-bell-peppers", "bell peppers"),
		food("f-pepper-flakes", "red pepper flakes"),
		food("f-fresh-ginger", "fresh ginger"),
		food("f-ground-ginger", "ground ginger"),
		food("f-normalize", "ñör̃m̈ãl̈ĩz̈ẽm̈ẽ"),
		{ID: "f-plural", GroupID: "g1", Name: "PluralFoodTest", PluralName: "myfoodisplural"},
		{ID: "f-alias", GroupID: "g1", Name: "IHaveAnAlias", Aliases: []models.IngredientAlias{{Name: "thisismyalias"}}},
		food("f-salt", "salt"),
		food("f-flour", "flour"),
	}
	units := []models.IngredientUnit{
		unit("u-cups", "Cups"),
		unit("u-tablespoon", "Tablespoon"),
		unit("u-teaspoon", "Teaspoon"),
		unit("u-stalk", "Stalk"),
		{ID: "u-mvlun", GroupID: "g1", Name: "My Very Long Unit Name", Abbreviation: "mvlun"},
		{
			ID: "u-plural", GroupID: "g1", Name: "PluralUnitName", PluralName: "abc123",
			Abbreviation: "doremiabc", PluralAbbreviation: "doremi123",
		},
		{ID: "u-alias", GroupID: "g1", Name: "IHaveAnAliasToo", Aliases: []models.IngredientAlias{{Name: "thisismyalias"}}},
	}
	return NewVocabulary("g1", foods, units)
}

func testMatcher() *Matcher {
	return NewMatcher(testVocabulary(), DefaultMatcherOptions(), nil)
}
