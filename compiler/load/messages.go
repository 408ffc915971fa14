package load

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

// ParseMessages decodes a message catalog: a flat mapping from code to a
// mapping of locale to text. Codes and translations keep document order.
// Files ending in .json are read as JSON, anything else as YAML.
func ParseMessages(name string, src []byte) ([]*schema.Message, error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return parseJSONMessages(name, src)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, gen.NewSchemaFormatError(name, err.Error(), gen.ErrMalformedEntry)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, gen.NewSchemaFormatError(name, "empty message catalog", gen.ErrBlockNotFound)
	}
	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, nodeError(name, root, "catalog must be a mapping of codes")
	}
	msgs := make([]*schema.Message, 0, len(root.Content)/2)
	seen := make(map[string]bool, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := deref(root.Content[i]), deref(root.Content[i+1])
		if k.Kind != yaml.ScalarNode || k.Value == "" {
			return nil, nodeError(name, k, "message code must be a non-empty string")
		}
		if seen[k.Value] {
			return nil, gen.NewDuplicateKeyError("code", k.Value, "")
		}
		seen[k.Value] = true
		msg, err := parseMessage(name, k, v)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func parseMessage(name string, k, v *yaml.Node) (*schema.Message, error) {
	if v.Kind != yaml.MappingNode {
		return nil, nodeError(name, v, fmt.Sprintf("code %s must map locales to texts", k.Value))
	}
	if len(v.Content) == 0 {
		return nil, nodeError(name, v, fmt.Sprintf("code %s has no translations", k.Value))
	}
	msg := &schema.Message{
		Code:         k.Value,
		Translations: make([]schema.Translation, 0, len(v.Content)/2),
		Pos:          schema.Pos{Line: k.Line, Column: k.Column},
	}
	for i := 0; i+1 < len(v.Content); i += 2 {
		loc, text := deref(v.Content[i]), deref(v.Content[i+1])
		if loc.Kind != yaml.ScalarNode || loc.Value == "" {
			return nil, nodeError(name, loc, fmt.Sprintf("code %s: locale must be a non-empty string", k.Value))
		}
		if text.Kind != yaml.ScalarNode || text.ShortTag() != "!!str" {
			return nil, nodeError(name, text, fmt.Sprintf("code %s: %s translation must be a string", k.Value, loc.Value))
		}
		if _, ok := msg.Text(loc.Value); ok {
			return nil, gen.NewDuplicateKeyError("locale", k.Value+"."+loc.Value, "")
		}
		msg.Translations = append(msg.Translations, schema.Translation{Locale: loc.Value, Text: text.Value})
	}
	return msg, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func nodeError(name string, n *yaml.Node, msg string) error {
	return &gen.SchemaFormatError{File: name, Line: n.Line, Column: n.Column, Message: msg, Cause: gen.ErrMalformedEntry}
}
