package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxSlugLength = 200

// slugify 由名称生成 URL slug：小写字母数字以连字符连接，无可用字符时生成随机 slug
func slugify(name string, fallbackPrefix string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackPrefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return slug
}

// normalizeSlug 校验外部传入的 slug，空值时由名称生成
func normalizeSlug(slug, name, fallbackPrefix string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slugify(name, fallbackPrefix)
	}
	return slugify(slug, fallbackPrefix)
}

// slugConflict 并发写入撞上唯一索引时按 slug 冲突处理
func slugConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlugExists
	}
	return err
}
