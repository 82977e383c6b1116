package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/models"
	"golang.org/x/text/language"
)

// ngôn ngữ không chia số nhiều cho danh từ
var pluralFreeLanguages = map[language.Base]bool{}

func init() {
	for _, tag := range []string{"ja", "zh", "ko", "vi", "th", "id", "ms"} {
		base, _ := language.MustParse(tag).Base()
		pluralFreeLanguages[base] = true
	}
}

// resolvePluralPolicy thứ tự ưu tiên: body, query ?plural_policy=, Accept-Language.
// Trả về "" khi không xác định được để service dùng mặc định.
func resolvePluralPolicy(c *gin.Context, explicit models.PluralPolicy) models.PluralPolicy {
	if explicit.IsValid() {
		return explicit
	}
	if q := models.PluralPolicy(c.Query("plural_policy")); q.IsValid() {
		return q
	}
	return pluralPolicyFromAcceptLanguage(c.GetHeader("Accept-Language"))
}

func pluralPolicyFromAcceptLanguage(header string) models.PluralPolicy {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, _ := tags[0].Base()
	if pluralFreeLanguages[base] {
		return models.PluralNever
	}
	return models.PluralAlways
}
