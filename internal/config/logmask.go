// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"net/url"
	"reflect"
	"strings"
	"time"
)

// sensitiveKeywords contains keywords that indicate sensitive fields.
// Any field name containing these keywords (case-insensitive) will be masked.
var sensitiveKeywords = []string{
	"password",
	"passwd",
	"pass",
	"secret",
	"token",
	"apikey",
	"api_key",
	"credential",
	"user",
}

const masked = "***"

// MaskSecrets recursively masks sensitive fields in the given data structure.
// Struct fields are keyed by their yaml tag name when present, so the result
// can be rendered back as YAML.
func MaskSecrets(data any) any {
	if data == nil {
		return nil
	}

	val := reflect.ValueOf(data)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	if d, ok := val.Interface().(time.Duration); ok {
		return d.String()
	}

	switch val.Kind() {
	case reflect.Map:
		result := make(map[string]any)
		iter := val.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			if isSensitiveKey(key) {
				result[key] = masked
			} else {
				result[key] = MaskSecrets(iter.Value().Interface())
			}
		}
		return result

	case reflect.Slice, reflect.Array:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = MaskSecrets(val.Index(i).Interface())
		}
		return result

	case reflect.Struct:
		result := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag := strings.Split(field.Tag.Get("yaml"), ",")[0]; tag != "" {
				if tag == "-" {
					continue
				}
				name = tag
			}
			fv := val.Field(i)
			if isSensitiveKey(name) {
				if fv.Kind() == reflect.String && fv.String() == "" {
					result[name] = ""
				} else {
					result[name] = masked
				}
				continue
			}
			result[name] = MaskSecrets(fv.Interface())
		}
		return result

	default:
		return data
	}
}

// isSensitiveKey checks if a key name contains any sensitive keyword.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}

// MaskURL strips user info from a URL for safe logging.
func MaskURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	u.User = nil
	return u.String()
}
