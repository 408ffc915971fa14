package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

// parseJSONMessages walks a JSON catalog token by token. Decoding into a
// map would lose both the document order and repeated codes.
func parseJSONMessages(name string, src []byte) ([]*schema.Message, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, gen.NewSchemaFormatError(name, "empty message catalog", gen.ErrBlockNotFound)
	}
	w := &jsonWalker{name: name, src: src, dec: json.NewDecoder(bytes.NewReader(src))}
	tok, at, err := w.token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, w.errorAt(at, "catalog must be a mapping of codes")
	}
	msgs := make([]*schema.Message, 0)
	seen := make(map[string]bool)
	for w.dec.More() {
		tok, at, err := w.token()
		if err != nil {
			return nil, err
		}
		code, _ := tok.(string)
		if code == "" {
			return nil, w.errorAt(at, "message code must be a non-empty string")
		}
		if seen[code] {
			return nil, gen.NewDuplicateKeyError("code", code, "")
		}
		seen[code] = true
		msg, err := w.message(code, at)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if _, _, err := w.token(); err != nil {
		return nil, err
	}
	if _, err := w.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, w.errorAt(w.next(), "unexpected content after the catalog")
	}
	return msgs, nil
}

type jsonWalker struct {
	name string
	src  []byte
	dec  *json.Decoder
}

func (w *jsonWalker) message(code string, at schema.Pos) (*schema.Message, error) {
	tok, open, err := w.token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, w.errorAt(open, fmt.Sprintf("code %s must map locales to texts", code))
	}
	msg := &schema.Message{Code: code, Pos: at}
	for w.dec.More() {
		tok, lp, err := w.token()
		if err != nil {
			return nil, err
		}
		loc, _ := tok.(string)
		if loc == "" {
			return nil, w.errorAt(lp, fmt.Sprintf("code %s: locale must be a non-empty string", code))
		}
		tok, tp, err := w.token()
		if err != nil {
			return nil, err
		}
		text, ok := tok.(string)
		if !ok {
			return nil, w.errorAt(tp, fmt.Sprintf("code %s: %s translation must be a string", code, loc))
		}
		if _, dup := msg.Text(loc); dup {
			return nil, gen.NewDuplicateKeyError("locale", code+"."+loc, "")
		}
		msg.Translations = append(msg.Translations, schema.Translation{Locale: loc, Text: text})
	}
	if _, _, err := w.token(); err != nil {
		return nil, err
	}
	if len(msg.Translations) == 0 {
		return nil, w.errorAt(open, fmt.Sprintf("code %s has no translations", code))
	}
	return msg, nil
}

// token returns the next token with the position it starts at.
func (w *jsonWalker) token() (json.Token, schema.Pos, error) {
	at := w.next()
	tok, err := w.dec.Token()
	var syn *json.SyntaxError
	switch {
	case err == nil:
		return tok, at, nil
	case errors.As(err, &syn):
		return nil, at, w.errorAt(w.pos(int(syn.Offset)), err.Error())
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, at, w.errorAt(w.pos(len(w.src)), "unexpected end of catalog")
	default:
		return nil, at, w.errorAt(at, err.Error())
	}
}

// next is the position of the first byte after the last token, skipping
// the separators the decoder consumes lazily.
func (w *jsonWalker) next() schema.Pos {
	off := int(w.dec.InputOffset())
	for off < len(w.src) && strings.IndexByte(" \t\r\n,:", w.src[off]) >= 0 {
		off++
	}
	return w.pos(off)
}

func (w *jsonWalker) pos(off int) schema.Pos {
	off = min(off, len(w.src))
	line := 1 + bytes.Count(w.src[:off], []byte("\n"))
	start := bytes.LastIndexByte(w.src[:off], '\n') + 1
	return schema.Pos{Line: line, Column: utf8.RuneCount(w.src[start:off]) + 1}
}

func (w *jsonWalker) errorAt(p schema.Pos, msg string) error {
	return &gen.SchemaFormatError{File: w.name, Line: p.Line, Column: p.Column, Message: msg, Cause: gen.ErrMalformedEntry}
}
