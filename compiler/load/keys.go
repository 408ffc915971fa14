package load

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

// ParseKeys extracts the storage keys declared by the struct named block
// in a storage schema file. The grammar accepted is:
//
//	file     = "package" ident ";" { import ";" } { decl ";" } .
//	import   = "import" ( spec | "(" { spec ";" } ")" ) .
//	keyBlock = "type" block "struct" "{" { entry ";" } "}" .
//	entry    = ident { "," ident } typeExpr [ tag ] .
//	typeExpr = ident | ident "." ident | "*" typeExpr | "[" "]" typeExpr
//	         | "[" int "]" typeExpr | "map" "[" typeExpr "]" typeExpr
//	         | "struct" "{" { entry ";" } "}" | "interface" "{" "}" .
//
// Declarations other than the key block are skipped. Keys keep their
// declaration order; inline struct types spanning several lines are
// captured whole.
func ParseKeys(name string, src []byte, block string) (*schema.KeySchema, error) {
	if block == "" {
		block = "Storage"
	}
	p := newParser(name, src)
	ks := &schema.KeySchema{Block: block}
	if err := p.parseHeader(ks); err != nil {
		return nil, err
	}
	found := false
	for p.tok != token.EOF && !found {
		if p.tok != token.TYPE {
			p.skipDecl()
			continue
		}
		p.next()
		var err error
		if p.tok == token.LPAREN {
			found, err = p.parseTypeGroup(ks)
		} else {
			found, err = p.parseTypeSpec(ks)
		}
		if err != nil {
			return nil, err
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if !found {
		return nil, &gen.SchemaFormatError{
			File:    name,
			Message: fmt.Sprintf("no %q struct declaration", block),
			Cause:   gen.ErrBlockNotFound,
		}
	}
	return ks, nil
}

type comment struct {
	line int
	text string
}

// parser is a small recursive-descent parser over go/scanner tokens.
type parser struct {
	name    string
	file    *token.File
	scanner scanner.Scanner
	err     error

	pos token.Pos
	tok token.Token
	lit string

	// line of the last non-comment token, used to tell leading comments
	// from trailing ones.
	tokLine  int
	comments []comment
}

func newParser(name string, src []byte) *parser {
	fset := token.NewFileSet()
	p := &parser{name: name, file: fset.AddFile(name, -1, len(src))}
	p.scanner.Init(p.file, src, func(pos token.Position, msg string) {
		if p.err == nil {
			p.err = &gen.SchemaFormatError{File: name, Line: pos.Line, Column: pos.Column, Message: msg, Cause: gen.ErrMalformedEntry}
		}
	}, scanner.ScanComments)
	p.next()
	return p
}

func (p *parser) next() {
	for {
		p.pos, p.tok, p.lit = p.scanner.Scan()
		if p.tok != token.COMMENT {
			break
		}
		line := p.file.Line(p.pos)
		if line <= p.tokLine {
			// trailing comment of the previous line.
			continue
		}
		if n := len(p.comments); n > 0 && p.comments[n-1].line != line-1 {
			p.comments = p.comments[:0]
		}
		p.comments = append(p.comments, comment{line: line, text: commentText(p.lit)})
	}
	if p.tok != token.SEMICOLON || p.lit != "\n" {
		p.tokLine = p.file.Line(p.pos)
	}
}

// doc returns the comment group ending on the line above the current token.
func (p *parser) doc() []string {
	n := len(p.comments)
	if n == 0 || p.comments[n-1].line != p.file.Line(p.pos)-1 {
		return nil
	}
	lines := make([]string, n)
	for i, c := range p.comments {
		lines[i] = c.text
	}
	return lines
}

func commentText(lit string) string {
	if strings.HasPrefix(lit, "//") {
		return strings.TrimPrefix(strings.TrimPrefix(lit, "//"), " ")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(lit, "/*"), "*/"))
}

func (p *parser) position() schema.Pos {
	pos := p.file.Position(p.pos)
	return schema.Pos{Line: pos.Line, Column: pos.Column}
}

func (p *parser) errorf(format string, args ...any) error {
	if p.err != nil {
		return p.err
	}
	pos := p.file.Position(p.pos)
	return &gen.SchemaFormatError{
		File:    p.name,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
		Cause:   gen.ErrMalformedEntry,
	}
}

func (p *parser) found() string {
	if p.lit != "" && p.tok != token.SEMICOLON {
		return p.lit
	}
	if p.tok == token.SEMICOLON {
		return "newline"
	}
	return p.tok.String()
}

func (p *parser) expect(tok token.Token) error {
	if p.tok != tok {
		return p.errorf("expected %s, found %s", tok, p.found())
	}
	p.next()
	return nil
}

// skipSemis skips optional statement terminators.
func (p *parser) skipSemis() {
	for p.tok == token.SEMICOLON {
		p.next()
	}
}

func (p *parser) parseHeader(ks *schema.KeySchema) error {
	p.skipSemis()
	if err := p.expect(token.PACKAGE); err != nil {
		return err
	}
	if p.tok != token.IDENT {
		return p.errorf("expected package name, found %s", p.found())
	}
	ks.Package = p.lit
	p.next()
	p.skipSemis()
	for p.tok == token.IMPORT {
		p.next()
		if p.tok == token.LPAREN {
			p.next()
			for p.tok != token.RPAREN {
				if p.tok == token.EOF {
					return p.errorf("unterminated import block")
				}
				if err := p.parseImportSpec(ks); err != nil {
					return err
				}
				p.skipSemis()
			}
			p.next()
		} else if err := p.parseImportSpec(ks); err != nil {
			return err
		}
		p.skipSemis()
	}
	return nil
}

func (p *parser) parseImportSpec(ks *schema.KeySchema) error {
	var imp schema.Import
	switch p.tok {
	case token.IDENT:
		imp.Name = p.lit
		p.next()
	case token.PERIOD:
		imp.Name = "."
		p.next()
	}
	if p.tok != token.STRING {
		return p.errorf("expected import path, found %s", p.found())
	}
	path, err := strconv.Unquote(p.lit)
	if err != nil {
		return p.errorf("invalid import path %s", p.lit)
	}
	imp.Path = path
	ks.Imports = append(ks.Imports, imp)
	p.next()
	return nil
}

// skipDecl skips tokens up to the end of the current top-level declaration.
func (p *parser) skipDecl() {
	depth := 0
	for p.tok != token.EOF {
		switch p.tok {
		case token.LBRACE, token.LPAREN, token.LBRACK:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACK:
			depth--
		case token.SEMICOLON:
			if depth <= 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

func (p *parser) parseTypeGroup(ks *schema.KeySchema) (bool, error) {
	p.next()
	found := false
	for p.tok != token.RPAREN && p.tok != token.EOF {
		p.skipSemis()
		if p.tok == token.RPAREN {
			break
		}
		ok, err := p.parseTypeSpec(ks)
		if err != nil {
			return false, err
		}
		found = found || ok
		if found {
			return true, nil
		}
	}
	if p.tok == token.RPAREN {
		p.next()
	}
	return found, nil
}

// parseTypeSpec parses one "ident type" spec. Specs other than the key block
// are skipped.
func (p *parser) parseTypeSpec(ks *schema.KeySchema) (bool, error) {
	if p.tok != token.IDENT || p.lit != ks.Block {
		p.skipSpec()
		return false, nil
	}
	p.next()
	if p.tok != token.STRUCT {
		return false, p.errorf("%s must be declared as a struct, found %s", ks.Block, p.found())
	}
	p.next()
	keys, err := p.parseFields()
	if err != nil {
		return false, err
	}
	ks.Keys = keys
	if err := p.resolve(ks, keys); err != nil {
		return false, err
	}
	return true, nil
}

// skipSpec skips one type spec, stopping before a closing group paren.
func (p *parser) skipSpec() {
	depth := 0
	for p.tok != token.EOF {
		switch p.tok {
		case token.LBRACE, token.LPAREN, token.LBRACK:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return
			}
			depth--
		case token.RBRACE, token.RBRACK:
			depth--
		case token.SEMICOLON:
			if depth <= 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

// parseFields parses "{" { entry ";" } "}".
func (p *parser) parseFields() ([]*schema.Key, error) {
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var keys []*schema.Key
	for {
		p.skipSemis()
		if p.tok == token.RBRACE {
			p.next()
			return keys, nil
		}
		if p.tok == token.EOF {
			return nil, p.errorf("unterminated struct declaration")
		}
		entry, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		keys = append(keys, entry...)
		switch p.tok {
		case token.SEMICOLON, token.RBRACE:
		default:
			return nil, p.errorf("expected newline after field, found %s", p.found())
		}
	}
}

// checkFields rejects inline struct fields that encoding/json cannot store:
// names without an exported form and names exporting to the same field.
// Unexported names are exported by the generator and tagged with their
// schema name.
func (p *parser) checkFields(fields []*schema.Key) error {
	seen := make(map[string]string, len(fields))
	for _, f := range fields {
		id := gen.FieldIdent(f.Name)
		if id == "" {
			return fieldError(p.name, f, fmt.Sprintf("field %s has no exported Go form and cannot be stored", f.Name))
		}
		if prev, ok := seen[id]; ok {
			return fieldError(p.name, f, fmt.Sprintf("fields %s and %s are both stored as %s", prev, f.Name, id))
		}
		seen[id] = f.Name
	}
	return nil
}

func fieldError(name string, f *schema.Key, msg string) error {
	return &gen.SchemaFormatError{File: name, Line: f.Pos.Line, Column: f.Pos.Column, Message: msg, Cause: gen.ErrMalformedEntry}
}

// parseEntry parses ident { "," ident } typeExpr [ tag ].
func (p *parser) parseEntry() ([]*schema.Key, error) {
	doc := p.doc()
	var keys []*schema.Key
	for {
		if p.tok != token.IDENT {
			return nil, p.errorf("expected key name, found %s", p.found())
		}
		keys = append(keys, &schema.Key{Name: p.lit, Doc: doc, Pos: p.position()})
		p.next()
		if p.tok != token.COMMA {
			break
		}
		p.next()
	}
	switch p.tok {
	case token.SEMICOLON, token.RBRACE, token.PERIOD, token.STRING:
		return nil, p.errorf("embedded field %s is not supported; declare it as \"name type\"", keys[0].Name)
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var tag string
	if p.tok == token.STRING {
		if tag, err = strconv.Unquote(p.lit); err != nil {
			return nil, p.errorf("invalid struct tag %s", p.lit)
		}
		p.next()
	}
	for _, k := range keys {
		k.Type = typ
		k.Tag = tag
	}
	return keys, nil
}

func (p *parser) parseType() (*schema.TypeExpr, error) {
	switch p.tok {
	case token.IDENT:
		name := p.lit
		p.next()
		if p.tok != token.PERIOD {
			return schema.Ident(name), nil
		}
		p.next()
		if p.tok != token.IDENT {
			return nil, p.errorf("expected type name after %s., found %s", name, p.found())
		}
		t := &schema.TypeExpr{Kind: schema.KindQualified, Pkg: name, Name: p.lit}
		p.next()
		return t, nil
	case token.MUL:
		p.next()
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return schema.PointerTo(elem), nil
	case token.LBRACK:
		p.next()
		t := &schema.TypeExpr{Kind: schema.KindSlice}
		if p.tok == token.INT {
			n, err := strconv.Atoi(p.lit)
			if err != nil || n < 0 {
				return nil, p.errorf("invalid array length %s", p.lit)
			}
			t.Kind, t.Len = schema.KindArray, n
			p.next()
		}
		if err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.Elem = elem
		return t, nil
	case token.MAP:
		p.next()
		if err := p.expect(token.LBRACK); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return schema.MapOf(key, elem), nil
	case token.STRUCT:
		p.next()
		fields, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		if err := p.checkFields(fields); err != nil {
			return nil, err
		}
		return &schema.TypeExpr{Kind: schema.KindStruct, Fields: fields}, nil
	case token.INTERFACE:
		p.next()
		if err := p.expect(token.LBRACE); err != nil {
			return nil, err
		}
		p.skipSemis()
		if p.tok != token.RBRACE {
			return nil, p.errorf("only the empty interface is supported as a value type")
		}
		p.next()
		return schema.Ident("any"), nil
	case token.FUNC, token.CHAN, token.ARROW:
		return nil, p.errorf("%s values cannot be serialized", p.tok)
	default:
		return nil, p.errorf("expected type, found %s", p.found())
	}
}

// resolve binds package qualifiers to the file's imports.
func (p *parser) resolve(ks *schema.KeySchema, keys []*schema.Key) error {
	for _, k := range keys {
		if err := p.resolveType(ks, k, k.Type); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) resolveType(ks *schema.KeySchema, k *schema.Key, t *schema.TypeExpr) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.KindQualified:
		path, ok := ks.ImportPath(t.Pkg)
		if !ok {
			return &gen.SchemaFormatError{
				File:    p.name,
				Line:    k.Pos.Line,
				Column:  k.Pos.Column,
				Message: fmt.Sprintf("key %s uses package %q which is not imported", k.Name, t.Pkg),
				Cause:   gen.ErrMalformedEntry,
			}
		}
		t.PkgPath = path
	case schema.KindStruct:
		return p.resolve(ks, t.Fields)
	}
	if err := p.resolveType(ks, k, t.Key); err != nil {
		return err
	}
	return p.resolveType(ks, k, t.Elem)
}
