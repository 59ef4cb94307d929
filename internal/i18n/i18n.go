package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZH      = "zh-CN"
	LocaleEN      = "en-US"
	DefaultLocale = LocaleZH
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
)

func load() {
	catalogs = make(map[string]map[string]string)
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			continue
		}
		messages := make(map[string]string)
		if err := json.Unmarshal(raw, &messages); err != nil {
			continue
		}
		catalogs[strings.TrimSuffix(entry.Name(), ".json")] = messages
	}
}

// NormalizeLocale 归一化语言标识，未知语言回退默认语言
func NormalizeLocale(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "":
		return DefaultLocale
	case strings.HasPrefix(value, "en"):
		return LocaleEN
	case strings.HasPrefix(value, "zh"):
		return LocaleZH
	default:
		return DefaultLocale
	}
}

// ResolveLocale 从请求中解析语言：query lang > X-Locale > Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	if lang := strings.TrimSpace(c.GetHeader("X-Locale")); lang != "" {
		return NormalizeLocale(lang)
	}
	accept := c.GetHeader("Accept-Language")
	if accept == "" {
		return DefaultLocale
	}
	first := strings.Split(accept, ",")[0]
	first = strings.Split(first, ";")[0]
	return NormalizeLocale(first)
}

// T 翻译 key，缺失时依次回退默认语言与 key 本身
func T(locale, key string) string {
	loadOnce.Do(load)
	if messages, ok := catalogs[NormalizeLocale(locale)]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
