// Package parser reads RFC 5322 / MIME messages into model.Node trees.
package parser

import (
	"errors"
	"fmt"
	"io"

	gomessage "github.com/emersion/go-message"

	"github.com/dhcgn/eml-to-html/model"
)

// DefaultContentType is used when a part has no usable Content-Type header.
const DefaultContentType = "text/plain"

// Parser turns raw message bytes into a part tree.
type Parser interface {
	Parse(r io.Reader) (*model.Node, error)
}

// Entity parses messages with github.com/emersion/go-message. Transfer
// encodings are decoded; body charsets are left untouched.
type Entity struct{}

// New returns the default Parser.
func New() Parser {
	return Entity{}
}

func (Entity) Parse(r io.Reader) (*model.Node, error) {
	entity, err := gomessage.Read(r)
	if err = tolerate(err); err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	return buildNode(entity)
}

// RFC822ContentType is an encapsulated message; its body is parsed as the
// node's only child.
const RFC822ContentType = "message/rfc822"

func buildNode(entity *gomessage.Entity) (*model.Node, error) {
	contentType, params := contentTypeOf(entity.Header)

	if contentType == RFC822ContentType {
		inner, err := gomessage.Read(entity.Body)
		if err = tolerate(err); err != nil {
			return nil, fmt.Errorf("%s: %w", contentType, err)
		}
		child, err := buildNode(inner)
		if err != nil {
			return nil, err
		}
		return model.NewMultipart(contentType, child), nil
	}

	// A multipart without boundary cannot be split and is kept as text.
	if mr := entity.MultipartReader(); mr != nil && params["boundary"] != "" {
		var children []*model.Node
		for i := 0; ; i++ {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if err = tolerate(err); err != nil {
				return nil, fmt.Errorf("%s part %d: %w", contentType, i, err)
			}
			child, err := buildNode(part)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return model.NewMultipart(contentType, children...), nil
	}

	// Truncated parts and incomplete base64 keep what was read.
	data, err := io.ReadAll(entity.Body)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read %s body: %w", contentType, err)
	}
	return model.NewLeaf(contentType, data), nil
}

func contentTypeOf(header gomessage.Header) (string, map[string]string) {
	mediaType, params, err := header.ContentType()
	if err != nil || mediaType == "" {
		return DefaultContentType, nil
	}
	return mediaType, params
}

// tolerate drops the errors go-message reports while still returning a
// readable entity with the raw body.
func tolerate(err error) error {
	if err == nil || gomessage.IsUnknownCharset(err) || gomessage.IsUnknownEncoding(err) {
		return nil
	}
	return err
}
