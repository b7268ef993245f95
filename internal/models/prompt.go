package models

import (
	"fmt"
	"strconv"
	"strings"
)

// VersionSeparator разделяет prompt_id и номер версии в имени поля хеша ("42v3").
const VersionSeparator = "v"

// PromptVersion - одна версия шаблона промпта.
type PromptVersion struct {
	PromptID int    `json:"prompt_id"`
	Label    string `json:"version"`
	Number   int    `json:"-"`
	Template string `json:"prompt_template"`
}

// DefaultCacheKeyPrefix отделяет ключи кеша ответов от ключей промптов в общем хранилище.
const DefaultCacheKeyPrefix = "cache:"

// ValidateCacheKeyPrefix проверяет, что prefix+cache_key никогда не совпадёт с PromptKey:
// префикс должен содержать хотя бы один символ, кроме цифр и '-'.
func ValidateCacheKeyPrefix(prefix string) error {
	for _, r := range prefix {
		if r != '-' && (r < '0' || r > '9') {
			return nil
		}
	}
	return fmt.Errorf("cache key prefix %q may collide with prompt keys: it needs a character other than digits and '-'", prefix)
}

// PromptKey возвращает ключ хеша, под которым хранятся все версии промпта.
func PromptKey(promptID int) string {
	return strconv.Itoa(promptID)
}

// VersionLabel собирает имя поля версии: "<prompt_id>v<version>".
func VersionLabel(promptID, version int) string {
	return fmt.Sprintf("%d%s%d", promptID, VersionSeparator, version)
}

// ParseVersionNumber извлекает номер версии из метки вида "<prompt_id>v<n>".
// Некорректная метка - дефект данных, поэтому возвращается ErrMalformedVersionLabel.
func ParseVersionNumber(label string) (int, error) {
	idx := strings.LastIndex(label, VersionSeparator)
	if idx <= 0 || idx == len(label)-1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedVersionLabel, label)
	}
	if _, err := strconv.Atoi(label[:idx]); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedVersionLabel, label)
	}
	n, err := strconv.Atoi(label[idx+len(VersionSeparator):])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedVersionLabel, label)
	}
	return n, nil
}
