package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen - длина укороченного хеша для логов.
const fingerprintLen = 12

// PromptFingerprint возвращает короткий стабильный SHA256-отпечаток текста.
// Используется в логах вместо самого промпта.
func PromptFingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
