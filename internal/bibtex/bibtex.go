// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex reads and rewrites BibTeX bibliographies. The parser keeps
// each entry's raw field map and original source text so entries survive a
// round trip untouched; interpretation of the values (LaTeX stripping, name
// splitting) happens later, at comparison time.
package bibtex

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/citecheck/pkg/types"
)

// monthStrings are the month abbreviations every BibTeX installation
// predefines. They seed the @string table for each parse.
var monthStrings = map[string]string{
	"jan": "January",
	"feb": "February",
	"mar": "March",
	"apr": "April",
	"may": "May",
	"jun": "June",
	"jul": "July",
	"aug": "August",
	"sep": "September",
	"oct": "October",
	"nov": "November",
	"dec": "December",
}

// ParseFile reads and parses one .bib file.
func ParseFile(path string) ([]types.Citation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bib file: %w", err)
	}
	citations, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return citations, nil
}

// Parse parses BibTeX source into citations, in source order. @string
// definitions apply to the entries that follow them, @comment and @preamble
// blocks are skipped, and text between entries is ignored the way BibTeX
// itself ignores it.
func Parse(content string) ([]types.Citation, error) {
	p := &parser{src: content, line: 1, strings: make(map[string]string, len(monthStrings))}
	for name, value := range monthStrings {
		p.strings[name] = value
	}

	var citations []types.Citation
	for {
		p.skipToEntry()
		if p.pos >= len(p.src) {
			return citations, nil
		}
		start := p.pos
		p.pos++ // consume '@'
		kind := strings.ToLower(p.readName())
		p.skipSpace()
		if p.pos >= len(p.src) || (p.src[p.pos] != '{' && p.src[p.pos] != '(') {
			// Stray @ without a block; BibTeX treats it as comment text.
			continue
		}

		switch kind {
		case "comment", "preamble":
			if err := p.skipBlock(); err != nil {
				return nil, err
			}
		case "string":
			if err := p.parseString(); err != nil {
				return nil, err
			}
		default:
			c, err := p.parseEntry(kind, start)
			if err != nil {
				return nil, err
			}
			citations = append(citations, c)
		}
	}
}

// parser is a single-pass scanner over BibTeX source. pos advances
// monotonically; line tracks newlines for error positions.
type parser struct {
	src     string
	pos     int
	line    int
	strings map[string]string
}

// parseEntry parses one @type{key, field = value, ...} entry. The opening
// delimiter is at the current position; start is the offset of the '@',
// kept so the raw entry text can be sliced out afterwards.
func (p *parser) parseEntry(kind string, start int) (types.Citation, error) {
	entryLine := p.line
	term := byte('}')
	if p.src[p.pos] == '(' {
		term = ')'
	}
	p.pos++
	p.skipSpace()

	key := p.readName()
	if key == "" {
		return types.Citation{}, fmt.Errorf("line %d: entry missing cite key", p.line)
	}
	p.skipSpace()

	fields := make(map[string]string)
	for {
		if p.pos >= len(p.src) {
			return types.Citation{}, fmt.Errorf("line %d: unterminated entry %q", entryLine, key)
		}
		switch c := p.src[p.pos]; {
		case c == term:
			p.pos++
			return buildCitation(kind, key, fields, p.src[start:p.pos]), nil
		case c == ',':
			p.pos++
			p.skipSpace()
		default:
			name := strings.ToLower(p.readName())
			if name == "" {
				return types.Citation{}, fmt.Errorf("line %d: malformed field in entry %q", p.line, key)
			}
			p.skipSpace()
			if p.pos >= len(p.src) || p.src[p.pos] != '=' {
				return types.Citation{}, fmt.Errorf("line %d: missing = after field %q in entry %q", p.line, name, key)
			}
			p.pos++
			value, err := p.readValue(key)
			if err != nil {
				return types.Citation{}, err
			}
			fields[name] = value
			p.skipSpace()
		}
	}
}

// parseString records one @string{name = value} definition.
func (p *parser) parseString() error {
	term := byte('}')
	if p.src[p.pos] == '(' {
		term = ')'
	}
	p.pos++
	p.skipSpace()

	name := strings.ToLower(p.readName())
	if name == "" {
		return fmt.Errorf("line %d: @string missing name", p.line)
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return fmt.Errorf("line %d: missing = in @string %q", p.line, name)
	}
	p.pos++

	value, err := p.readValue(name)
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != term {
		return fmt.Errorf("line %d: unterminated @string %q", p.line, name)
	}
	p.pos++
	p.strings[name] = value
	return nil
}

// readValue reads one field value: a sequence of braced, quoted, or bare
// parts joined with #. Bare parts resolve through the strings table; an
// undefined name stands for itself.
func (p *parser) readValue(key string) (string, error) {
	var parts []string
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("line %d: unterminated value in %q", p.line, key)
		}
		switch p.src[p.pos] {
		case '{':
			s, err := p.readBraced(key)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		case '"':
			s, err := p.readQuoted(key)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		default:
			word := p.readName()
			if word == "" {
				return "", fmt.Errorf("line %d: empty value in %q", p.line, key)
			}
			if resolved, ok := p.strings[strings.ToLower(word)]; ok {
				word = resolved
			}
			parts = append(parts, word)
		}
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '#' {
			p.pos++
			continue
		}
		return collapseSpace(strings.Join(parts, "")), nil
	}
}

// readBraced consumes a {...} group and returns its contents with the outer
// braces removed. Inner braces are kept: they are meaningful to LaTeX (case
// protection, accent groups).
func (p *parser) readBraced(key string) (string, error) {
	start := p.pos + 1
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++ // escaped character never affects the balance
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		case '\n':
			p.line++
		}
		p.pos++
	}
	return "", fmt.Errorf("line %d: unbalanced braces in %q", p.line, key)
}

// readQuoted consumes a "..." value. Braces protect embedded quotes, per
// BibTeX rules.
func (p *parser) readQuoted(key string) (string, error) {
	p.pos++ // opening quote
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		case '\n':
			p.line++
		}
		p.pos++
	}
	return "", fmt.Errorf("line %d: unterminated quoted value in %q", p.line, key)
}

// skipBlock consumes a balanced {...} or (...) block without interpreting
// its contents.
func (p *parser) skipBlock() error {
	blockLine := p.line
	open := p.src[p.pos]
	term := byte('}')
	if open == '(' {
		term = ')'
	}
	depth := 0
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '\\':
			p.pos++
		case open:
			depth++
		case term:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		case '\n':
			p.line++
		}
		p.pos++
	}
	return fmt.Errorf("line %d: unterminated block", blockLine)
}

// skipToEntry advances to the next '@'. Everything before it is comment
// text.
func (p *parser) skipToEntry() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '@' {
			return
		}
		if c == '\n' {
			p.line++
		}
		p.pos++
	}
}

// skipSpace advances past whitespace, counting lines.
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r':
		case '\n':
			p.line++
		default:
			return
		}
		p.pos++
	}
}

// readName reads a run of name characters: entry types, cite keys, field
// names, and @string names all share the same alphabet.
func (p *parser) readName() string {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// isNameChar covers letters, digits, and the punctuation cite keys commonly
// carry (DBLP keys use ':' and '/', BibTeX tools emit '.', '-', '_', '+').
func isNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == ':' || c == '.' || c == '+' || c == '/':
		return true
	}
	return false
}

// collapseSpace folds whitespace runs into single spaces, the way BibTeX
// treats line breaks inside values.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// buildCitation maps a parsed field set onto the typed citation record.
func buildCitation(kind, key string, fields map[string]string, raw string) types.Citation {
	c := types.Citation{
		Key:       key,
		Type:      kind,
		Title:     fields["title"],
		Author:    fields["author"],
		Year:      fields["year"],
		DOI:       fields["doi"],
		Journal:   fields["journal"],
		Booktitle: fields["booktitle"],
		Publisher: fields["publisher"],
		Volume:    fields["volume"],
		Number:    fields["number"],
		Pages:     fields["pages"],
		URL:       fields["url"],
		Abstract:  fields["abstract"],
		Raw:       fields,
		RawEntry:  raw,
	}
	c.ArxivID = ExtractArxivID(c)
	return c
}

// Filter rewrites BibTeX source keeping only the entries whose cite keys
// appear in keep. Everything else in the file passes through untouched:
// @comment blocks, @string definitions, @preamble, text between entries,
// and the kept entries' own formatting.
func Filter(content string, keep map[string]bool) string {
	type span struct{ start, end int }
	var remove []span

	i := 0
	for i < len(content) {
		if content[i] != '@' {
			i++
			continue
		}
		braceOpen := strings.IndexByte(content[i:], '{')
		if braceOpen < 0 {
			break
		}
		braceOpen += i
		kind := strings.ToLower(strings.TrimSpace(content[i+1 : braceOpen]))
		if kind == "comment" {
			i = braceOpen + 1
			continue
		}

		end := blockEnd(content, braceOpen)
		if kind != "string" && kind != "preamble" {
			body := content[braceOpen+1 : end]
			if comma := strings.IndexByte(body, ','); comma >= 0 {
				key := strings.TrimSpace(body[:comma])
				if !keep[key] {
					remove = append(remove, span{start: i, end: end})
				}
			}
		}
		i = end
	}

	if len(remove) == 0 {
		return content
	}

	var b strings.Builder
	last := 0
	for _, sp := range remove {
		b.WriteString(content[last:sp.start])
		// Swallow the blank left behind: trailing spaces and one newline.
		last = sp.end
		for last < len(content) && (content[last] == ' ' || content[last] == '\t' || content[last] == '\r') {
			last++
		}
		if last < len(content) && content[last] == '\n' {
			last++
		}
	}
	b.WriteString(content[last:])
	return b.String()
}

// blockEnd returns the index one past the brace-balanced block opening at
// open. Escaped characters are skipped and braces inside quoted strings do
// not affect the balance.
func blockEnd(content string, open int) int {
	balance := 1
	inQuote := false
	j := open + 1
	for j < len(content) && balance > 0 {
		switch content[j] {
		case '\\':
			j++
		case '"':
			inQuote = !inQuote
		case '{':
			if !inQuote {
				balance++
			}
		case '}':
			if !inQuote {
				balance--
			}
		}
		j++
	}
	return j
}
