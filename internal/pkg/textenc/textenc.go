// Package textenc декодирует ввод pd-trigger (сообщения и строки логов
// из stdin) из однобайтовых кодировок в UTF-8.
package textenc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding — имя кодировки не распознано.
var ErrUnknownEncoding = errors.New("textenc: неизвестная кодировка")

// Lookup возвращает кодировку по WHATWG метке ("cp1251", "koi8-r")
// или IANA имени ("IBM437"). Пустое имя — UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	// ianaindex возвращает nil без ошибки для известных, но не реализованных кодировок.
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// NewReader возвращает reader, выдающий содержимое r в UTF-8.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
