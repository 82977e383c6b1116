package models

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// VocabularySnapshot toàn bộ foods/units của một household tại một thời điểm
type VocabularySnapshot struct {
	GroupID  string           `json:"group_id"`  // ID household
	Foods    []IngredientFood `json:"foods"`     // Danh sách thực phẩm
	Units    []IngredientUnit `json:"units"`     // Danh sách đơn vị
	Version  string           `json:"version"`   // Fingerprint của snapshot
	LoadedAt time.Time        `json:"loaded_at"` // Thời gian load từ store
}

// NewVocabularySnapshot tạo mới một VocabularySnapshot
func NewVocabularySnapshot(groupID string, foods []IngredientFood, units []IngredientUnit) *VocabularySnapshot {
	return &VocabularySnapshot{
		GroupID:  groupID,
		Foods:    foods,
		Units:    units,
		Version:  snapshotVersion(foods, units),
		LoadedAt: time.Now(),
	}
}

// snapshotVersion sha256 trên các ID + updated_at, không phụ thuộc thứ tự
func snapshotVersion(foods []IngredientFood, units []IngredientUnit) string {
	keys := make([]string, 0, len(foods)+len(units))
	for _, f := range foods {
		keys = append(keys, "f:"+f.ID+":"+f.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	for _, u := range units {
		keys = append(keys, "u:"+u.ID+":"+u.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
