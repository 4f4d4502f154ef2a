package pagerduty

import (
	"fmt"
	"slices"
	"strings"
)

// Типы контекстов events API.
const (
	ContextTypeImage = "image"
	ContextTypeLink  = "link"
)

// Context — дополнительное содержимое инцидента: изображение или ссылка.
// Реализации: ImageContext и LinkContext. Интерфейс закрыт — других
// вариантов нет, поэтому любой сконструированный Context сериализуем.
type Context interface {
	// Type возвращает "image" или "link".
	Type() string

	// ToMap сериализует контекст в JSON-совместимую map.
	// Ключи отсутствующих опциональных полей не включаются.
	ToMap() map[string]any

	sealed()
}

// ContextOption задаёт опциональное поле контекста.
type ContextOption func(*contextFields)

type contextFields struct {
	href *string
	alt  *string
	text *string
}

// WithHref задаёт ссылку, по которой ведёт изображение. Только для image.
func WithHref(href string) ContextOption {
	return func(f *contextFields) { f.href = &href }
}

// WithAlt задаёт альтернативный текст изображения. Только для image.
func WithAlt(alt string) ContextOption {
	return func(f *contextFields) { f.alt = &alt }
}

// WithText задаёт текст ссылки. Только для link.
func WithText(text string) ContextOption {
	return func(f *contextFields) { f.text = &text }
}

func collectFields(opts []ContextOption) contextFields {
	var f contextFields
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// ImageContext — изображение, прикреплённое к инциденту.
type ImageContext struct {
	src  string
	href *string
	alt  *string
}

// NewImageContext создаёт ImageContext. src обязателен: пустая строка
// считается непереданным src. WithText недопустим.
func NewImageContext(src string, opts ...ContextOption) (ImageContext, error) {
	if src == "" {
		return ImageContext{}, errImageSrcMissing()
	}
	return buildImage(src, collectFields(opts))
}

func buildImage(src string, f contextFields) (ImageContext, error) {
	if f.text != nil {
		return ImageContext{}, newValidationError("text", `image context cannot have "text" attached to it`)
	}
	return ImageContext{src: src, href: f.href, alt: f.alt}, nil
}

func errImageSrcMissing() error {
	return newValidationError("src", `image context must have "src" provided`)
}

// Type возвращает ContextTypeImage.
func (c ImageContext) Type() string { return ContextTypeImage }

// Src возвращает URL изображения.
func (c ImageContext) Src() string { return c.src }

// Href возвращает ссылку изображения и признак её наличия.
func (c ImageContext) Href() (string, bool) { return deref(c.href) }

// Alt возвращает альтернативный текст и признак его наличия.
func (c ImageContext) Alt() (string, bool) { return deref(c.alt) }

// ToMap: {type: "image", src, href?, alt?}.
func (c ImageContext) ToMap() map[string]any {
	m := map[string]any{
		"type": ContextTypeImage,
		"src":  c.src,
	}
	if c.href != nil {
		m["href"] = *c.href
	}
	if c.alt != nil {
		m["alt"] = *c.alt
	}
	return m
}

func (ImageContext) sealed() {}

// LinkContext — ссылка, прикреплённая к инциденту.
type LinkContext struct {
	href string
	text *string
}

// NewLinkContext создаёт LinkContext. href обязателен и передаётся
// позиционно, пустая строка считается непереданным href.
// WithHref и WithAlt недопустимы.
func NewLinkContext(href string, opts ...ContextOption) (LinkContext, error) {
	if href == "" {
		return LinkContext{}, errLinkHrefMissing()
	}
	f := collectFields(opts)
	if f.href != nil {
		return LinkContext{}, newValidationError("href", "link context href is passed positionally, not as an option")
	}
	return buildLink(href, f)
}

func buildLink(href string, f contextFields) (LinkContext, error) {
	if f.alt != nil {
		return LinkContext{}, newValidationError("alt", `link context cannot have "alt" attached to it`)
	}
	return LinkContext{href: href, text: f.text}, nil
}

func errLinkHrefMissing() error {
	return newValidationError("href", `link context must have "href" provided`)
}

// Type возвращает ContextTypeLink.
func (c LinkContext) Type() string { return ContextTypeLink }

// Href возвращает URL ссылки.
func (c LinkContext) Href() string { return c.href }

// Text возвращает текст ссылки и признак его наличия.
func (c LinkContext) Text() (string, bool) { return deref(c.text) }

// ToMap: {type: "link", href, text?}.
func (c LinkContext) ToMap() map[string]any {
	m := map[string]any{
		"type": ContextTypeLink,
		"href": c.href,
	}
	if c.text != nil {
		m["text"] = *c.text
	}
	return m
}

func (LinkContext) sealed() {}

// SerializeContext сериализует контекст. Эквивалент c.ToMap().
func SerializeContext(c Context) map[string]any {
	return c.ToMap()
}

// NewContext создаёт контекст по типу и набору полей, например из
// CLI флага "type=image,src=...,alt=...". Обязательное поле проверяется
// на присутствие в fields: явно переданное пустое значение допустимо.
// Поля другого варианта и неизвестные поля отклоняются.
func NewContext(kind string, fields map[string]string) (Context, error) {
	allowed := map[string][]string{
		ContextTypeImage: {"src", "href", "alt"},
		ContextTypeLink:  {"href", "text"},
	}
	names, ok := allowed[kind]
	if !ok {
		return nil, newValidationError("type", `type of context must be either "image" or "link"`)
	}
	if err := checkFieldNames(kind, fields, names); err != nil {
		return nil, err
	}

	var f contextFields
	if kind == ContextTypeImage {
		src, ok := fields["src"]
		if !ok {
			return nil, errImageSrcMissing()
		}
		if v, ok := fields["href"]; ok {
			f.href = &v
		}
		if v, ok := fields["alt"]; ok {
			f.alt = &v
		}
		image, err := buildImage(src, f)
		if err != nil {
			return nil, err
		}
		return image, nil
	}

	href, ok := fields["href"]
	if !ok {
		return nil, errLinkHrefMissing()
	}
	if v, ok := fields["text"]; ok {
		f.text = &v
	}
	link, err := buildLink(href, f)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func checkFieldNames(kind string, fields map[string]string, allowed []string) error {
	var unexpected []string
	for name := range fields {
		if !slices.Contains(allowed, name) {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) == 0 {
		return nil
	}
	slices.Sort(unexpected)
	return newValidationError(unexpected[0],
		fmt.Sprintf("%s context cannot have %s attached to it", kind, strings.Join(quoteAll(unexpected), ", ")))
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
