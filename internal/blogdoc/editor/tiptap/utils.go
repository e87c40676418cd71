package tiptap

import (
	"encoding/json"
	"math"
	"strconv"
)

// attrString возвращает строковый атрибут или пустую строку для отсутствующего и нестрокового значения.
func attrString(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

// attrInt читает числовой атрибут. Редактор присылает числа как float64 из JSON, старые документы хранят уровень строкой.
func attrInt(attrs map[string]any, key string) int {
	switch v := attrs[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func setNonEmpty(attrs map[string]any, key, value string) {
	if value != "" {
		attrs[key] = value
	}
}
