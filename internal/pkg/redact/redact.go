// Package redact маскирует секреты перед записью в логи и вывод команд.
package redact

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// URL оставляет от адреса только scheme и host.
// Path и query events API могут содержать ключи интеграции.
// Пример: "https://events.pagerduty.com/generic/2010-04-15/create_event.json" → "https://events.pagerduty.com/***"
func URL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}

// visibleSuffix — сколько последних символов секрета остаётся видимым.
const visibleSuffix = 4

// Secret маскирует service key, оставляя последние символы для сверки
// с настройками интеграции. Короткие значения скрываются полностью.
func Secret(secret string) string {
	n := utf8.RuneCountInString(secret)
	if n == 0 {
		return ""
	}
	if n <= visibleSuffix*2 {
		return strings.Repeat("*", n)
	}
	runes := []rune(secret)
	return strings.Repeat("*", n-visibleSuffix) + string(runes[n-visibleSuffix:])
}
