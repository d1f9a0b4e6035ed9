// Package extract turns a parsed message tree into the HTML text it carries.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dhcgn/eml-to-html/model"
)

// HTMLContentType is the only child content-type kept below a multipart node.
const HTMLContentType = "text/html"

var (
	ErrTypeMismatch = errors.New("unexpected payload kind")
	ErrDecode       = errors.New("payload is not valid utf-8")
)

// HTML returns the HTML text contained in node.
//
// A leaf is returned as decoded text whatever its own content-type is. Below
// a multipart node only children labelled exactly text/html are extracted;
// their results are joined with a newline in child order.
func HTML(node *model.Node) (string, error) {
	if node == nil {
		return "", fmt.Errorf("%w: nil node", ErrTypeMismatch)
	}

	switch p := node.Payload.(type) {
	case model.Leaf:
		return decode(p.Data)
	case model.Multipart:
		parts := make([]string, 0, len(p.Children))
		for i, child := range p.Children {
			if child == nil || child.ContentType != HTMLContentType {
				continue
			}
			text, err := HTML(child)
			if err != nil {
				return "", fmt.Errorf("part %d: %w", i, err)
			}
			parts = append(parts, text)
		}
		return strings.Join(parts, "\n"), nil
	case model.Unsupported:
		return "", fmt.Errorf("%w: %s", ErrTypeMismatch, p.Kind)
	default:
		return "", fmt.Errorf("%w: %T", ErrTypeMismatch, node.Payload)
	}
}

func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	offset := 0
	for offset < len(data) {
		r, size := utf8.DecodeRune(data[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return "", fmt.Errorf("%w: invalid byte at offset %d", ErrDecode, offset)
}
