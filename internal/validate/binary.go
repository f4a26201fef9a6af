package validate

import (
	"encoding/base64"
	"fmt"
	"strings"

	"longcatnode/internal/core"
)

// ValidateBinary checks that every attachment of an item is usable for passthrough.
func ValidateBinary(binary map[string]core.BinaryData) error {
	for name, data := range binary {
		if err := validateBinaryData(data); err != nil {
			return fmt.Errorf("binary %q: %w", name, err)
		}
	}
	return nil
}

func validateBinaryData(data core.BinaryData) error {
	if strings.TrimSpace(data.MimeType) == "" {
		return fmt.Errorf("mimeType is required")
	}

	// Pre-check base64 string length to avoid decoding huge payloads
	estimatedSize := int64(len(data.Data)) * 3 / 4
	if estimatedSize > core.MaxBinarySizeBytes {
		return fmt.Errorf("data too large: estimated %d bytes exceeds %d limit", estimatedSize, core.MaxBinarySizeBytes)
	}

	if _, err := base64.StdEncoding.DecodeString(data.Data); err != nil {
		return fmt.Errorf("invalid base64 data: %v", err)
	}
	return nil
}
