package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID tạo UUID v4 cho document mới
func GenerateUUID() string {
	return uuid.NewString()
}

// IDOrNew giữ id đã có (đã trim), sinh mới nếu rỗng
func IDOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return GenerateUUID()
}
