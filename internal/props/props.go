// Package props reads typed values off a Notion page's property map.
//
// Notion properties are a loosely-typed bag: every accessor here checks the
// concrete property kind and reports absence instead of guessing at shape.
// Only the first text span of rich-text and title values is read.
package props

import (
	"strings"

	"github.com/jomei/notionapi"
)

// SelectOption is a resolved select property value.
type SelectOption struct {
	Name  string
	Color string
}

// Number returns the value of a number property, or false if the key is
// missing or not a number property.
func Number(properties notionapi.Properties, key string) (float64, bool) {
	prop, ok := properties[key]
	if !ok {
		return 0, false
	}
	np, ok := prop.(*notionapi.NumberProperty)
	if !ok {
		return 0, false
	}
	return np.Number, true
}

// Text returns the first text span of a rich-text or title property.
// Empty spans count as absent.
func Text(properties notionapi.Properties, key string) (string, bool) {
	prop, ok := properties[key]
	if !ok {
		return "", false
	}
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		return firstSpan(p.RichText)
	case *notionapi.TitleProperty:
		return firstSpan(p.Title)
	}
	return "", false
}

// Title returns the first text span of a title property only.
func Title(properties notionapi.Properties, key string) (string, bool) {
	prop, ok := properties[key]
	if !ok {
		return "", false
	}
	tp, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return "", false
	}
	return firstSpan(tp.Title)
}

// Select returns the option of a select property. A same-named property of
// any other kind is absent, not an error.
func Select(properties notionapi.Properties, key string) (SelectOption, bool) {
	prop, ok := properties[key]
	if !ok {
		return SelectOption{}, false
	}
	sp, ok := prop.(*notionapi.SelectProperty)
	if !ok || sp.Select.Name == "" {
		return SelectOption{}, false
	}
	return SelectOption{
		Name:  sp.Select.Name,
		Color: string(sp.Select.Color),
	}, true
}

// URL returns the value of a url property.
func URL(properties notionapi.Properties, key string) (string, bool) {
	prop, ok := properties[key]
	if !ok {
		return "", false
	}
	up, ok := prop.(*notionapi.URLProperty)
	if !ok || up.URL == "" {
		return "", false
	}
	return up.URL, true
}

// FindKeyFold returns the actual property key matching target
// case-insensitively. Property keys are user-authored in Notion, so casing
// drifts; this lookup is deliberately scoped to the callers that need it
// rather than normalizing the whole bag. An exact match wins over a folded
// one when both exist.
func FindKeyFold(properties notionapi.Properties, target string) (string, bool) {
	if _, ok := properties[target]; ok {
		return target, true
	}
	for key := range properties {
		if strings.EqualFold(key, target) {
			return key, true
		}
	}
	return "", false
}

// firstSpan returns the plain text of the first span, if any.
func firstSpan(spans []notionapi.RichText) (string, bool) {
	if len(spans) == 0 || spans[0].PlainText == "" {
		return "", false
	}
	return spans[0].PlainText, true
}
