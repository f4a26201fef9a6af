package util

import (
	"os"
	"strings"
	"time"

	"longcatnode/internal/core"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// MarshalJSON wraps Sonic for performance
func MarshalJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// UnmarshalJSON wraps Sonic for performance
func UnmarshalJSON(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// IsValidJSON reports whether s parses as a JSON value.
func IsValidJSON(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	var v any
	return sonic.UnmarshalString(s, &v) == nil
}

// NewExecutionID returns a random id for one node execution.
func NewExecutionID() string {
	return uuid.New().String()
}

// FormatTimestamp renders t the way the host expects record timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(core.TimeFormatISO)
}

// ExtractTextContent extracts text from a message content field
func ExtractTextContent(content any) string {
	if content == nil {
		return ""
	}

	switch v := content.(type) {
	case string:
		return v
	case []any:
		var textParts []string
		for _, item := range v {
			itemMap, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if itemType, ok := itemMap["type"].(string); ok && itemType != core.ContentBlockTypeText {
				continue
			}
			if text, ok := itemMap["text"].(string); ok {
				textParts = append(textParts, text)
			}
		}
		return strings.Join(textParts, "")
	}
	return ""
}

// TruncateString truncates string and adds replacement text in the middle
func TruncateString(s string, prefixLen, suffixLen int, replacement string) string {
	if len(s) > prefixLen+suffixLen {
		return s[:prefixLen] + replacement + s[len(s)-suffixLen:]
	}
	return s
}

// ParseEnvList parses comma-separated env var to trimmed slice
func ParseEnvList(envVar string) []string {
	if envVar == "" {
		return nil
	}
	parts := strings.Split(envVar, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// GetEnvWithDefault gets env var with default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetKeyDisplayName masks an API key for logging
func GetKeyDisplayName(apiKey string) string {
	if apiKey == "" {
		return "Key Unknown"
	}
	if len(apiKey) <= 6 {
		return "Key ..."
	}
	return TruncateString(apiKey, 0, 6, "Key ...")
}
