package config

import (
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// envConfig присваивает полям структуры s значения переменных окружения. Имя переменной берется из тега key.
// Пустые и отсутствующие переменные пропускаются, поле сохраняет текущее значение.
// Значения, которые не удалось разобрать, логируются и пропускаются.
func envConfig(key string, s any) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := typeParam.Field(i)
		envName := field.Tag.Get(key)
		if envName == "" {
			continue
		}

		raw, ok := os.LookupEnv(envName)
		if !ok || raw == "" {
			continue
		}

		if err := setField(v.Field(i), raw); err != nil {
			slog.Warn("Skip config value", "key", typeParam.Name()+"."+field.Name, "env", envName, "err", err)
			continue
		}

		logValue := raw
		if isSecret(field.Name) {
			logValue = maskSecret(raw)
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+field.Name),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)
	}
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	}
	return nil
}

func isSecret(fieldName string) bool {
	name := strings.ToLower(fieldName)
	return strings.Contains(name, "pass") || strings.Contains(name, "secret") || strings.Contains(name, "token")
}

// maskSecret оставляет видимыми первый и последний символ.
func maskSecret(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return strings.Repeat("*", len(r))
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}
