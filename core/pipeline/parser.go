package pipeline

import (
	"sort"
	"strings"
)

// Parser splits a raw command line into a Pipeline.
//
// Parsing is total: malformed quoting or bracketing never fails, it degrades
// to literal command text. The parser tracks three literal contexts while
// scanning: single quotes, double quotes, and a nesting depth for one
// bracket pair (round brackets by default). Operators are never matched
// while a literal context is active. A backslash outside single quotes
// escapes the next character: the backslash is consumed and the character is
// copied literally.
//
// The operator table is per-parser data. A table handed to NewParserWith
// replaces the default table entirely, so default symbols that the custom
// table does not mention become inert text:
//
//	p := pipeline.NewParserWith(map[string]pipeline.Operator{"==>": pipeline.OpPipe})
//	p.Parse("a ==> b")  // two stages joined by a pipe
//	p.Parse("a | b")    // one stage; "|" is plain text under this table
type Parser struct {
	// Match, when set, replaces operator matching: it reports the operator
	// symbol present at pos, if any. Quote, escape, and bracket handling
	// stay with the parser. Use DefaultMatch to fall back to table lookup.
	Match func(line string, pos int) (string, bool)

	// OpenBracket and CloseBracket delimit the bracket literal context.
	OpenBracket  byte
	CloseBracket byte

	table   map[string]Operator
	symbols []string // table keys, longest first
}

// NewParser returns a parser with the default operator table.
func NewParser() *Parser {
	return NewParserWith(DefaultOperators())
}

// NewParserWith returns a parser using the given symbol table in place of
// the default one.
func NewParserWith(table map[string]Operator) *Parser {
	p := &Parser{
		OpenBracket:  '(',
		CloseBracket: ')',
		table:        make(map[string]Operator, len(table)),
	}
	for sym, op := range table {
		if sym == "" {
			continue
		}
		p.table[sym] = op
		p.symbols = append(p.symbols, sym)
	}
	// Longest symbols first so > never shadows >>, nor | shadow |;.
	sort.Slice(p.symbols, func(i, j int) bool {
		if len(p.symbols[i]) != len(p.symbols[j]) {
			return len(p.symbols[i]) > len(p.symbols[j])
		}
		return p.symbols[i] < p.symbols[j]
	})
	return p
}

// DefaultMatch looks the position up in the operator table, longest symbol
// first. Custom Match hooks may call it as a fallback.
func (p *Parser) DefaultMatch(line string, pos int) (string, bool) {
	for _, sym := range p.symbols {
		if strings.HasPrefix(line[pos:], sym) {
			return sym, true
		}
	}
	return "", false
}

func (p *Parser) matchOperator(line string, pos int) (string, bool) {
	if p.Match != nil {
		return p.Match(line, pos)
	}
	return p.DefaultMatch(line, pos)
}

// Parse splits line into a Pipeline. The returned pipeline's Source is
// always the untouched input, and there is always at least one stage: empty
// or blank input yields a single stage with empty command text.
func (p *Parser) Parse(line string) Pipeline {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Pipeline{Stages: []Stage{{}}, Source: line}
	}

	background := false
	if strings.HasSuffix(trimmed, "&") && !strings.HasSuffix(trimmed, "&&") &&
		!p.literalAt(trimmed, len(trimmed)-1) {
		background = true
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "&"))
	}

	tokens := p.tokenize(trimmed)

	var stages []Stage
	var cur strings.Builder
	input := ""

	appendText := func(text string) {
		if s := cur.String(); s != "" && !strings.HasSuffix(s, " ") {
			cur.WriteString(" ")
		}
		cur.WriteString(text)
	}
	flush := func() string {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		return text
	}
	// Consume the next whitespace-delimited word as a file path; text after
	// the word stays in play for the following stage.
	takePath := func(i int) (string, int) {
		if i+1 >= len(tokens) || tokens[i+1].op {
			return "", i
		}
		i++
		fields := strings.Fields(tokens[i].value)
		if len(fields) == 0 {
			return "", i
		}
		if rest := strings.Join(fields[1:], " "); rest != "" {
			appendText(rest)
		}
		return fields[0], i
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !tok.op {
			// Text tokens carry their original spacing; write them back
			// verbatim.
			cur.WriteString(tok.value)
			continue
		}

		op, known := p.table[tok.value]
		if !known {
			// A Match hook reported a symbol outside the table; keep it
			// as literal text.
			cur.WriteString(tok.value)
			continue
		}

		switch {
		case op == OpInputRedirect:
			// The stage is not finished: later text and operators still
			// belong to it, only the source path is consumed.
			input, i = takePath(i)
		case op.OutputRedirect():
			cmd := flush()
			var target string
			target, i = takePath(i)
			stages = append(stages, Stage{
				Command:        cmd,
				Op:             op,
				RedirectTarget: target,
				Append:         op == OpAppend,
				InputSource:    input,
			})
			input = ""
		default:
			stages = append(stages, Stage{Command: flush(), Op: op, InputSource: input})
			input = ""
		}
	}

	if remaining := flush(); remaining != "" || input != "" || len(stages) == 0 {
		stages = append(stages, Stage{Command: remaining, InputSource: input})
	}

	return Pipeline{Stages: stages, Source: line, Background: background}
}

// literalAt reports whether the byte at pos sits in a literal context:
// backslash-escaped, inside quotes (balanced or not), or inside brackets. It
// applies the same context rules as tokenize.
func (p *Parser) literalAt(line string, pos int) bool {
	inSingle, inDouble := false, false
	depth := 0

	for i := 0; i < len(line) && i <= pos; i++ {
		c := line[i]

		if c == '\\' && !inSingle && i+1 < len(line) {
			if i+1 == pos {
				return true
			}
			i++
			continue
		}
		if i == pos {
			return inSingle || inDouble || depth > 0
		}

		switch {
		case c == '\'' && !inDouble && depth == 0:
			inSingle = !inSingle
		case c == '"' && !inSingle && depth == 0:
			inDouble = !inDouble
		case inSingle || inDouble:
		case c == p.OpenBracket:
			depth++
		case c == p.CloseBracket && depth > 0:
			depth--
		}
	}
	return false
}

// token is either literal command text or an operator symbol.
type token struct {
	value string
	op    bool
}

func (p *Parser) tokenize(line string) []token {
	var tokens []token
	var cur strings.Builder
	inSingle, inDouble := false, false
	depth := 0

	flushText := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{value: cur.String()})
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		if c == '\\' && !inSingle && i+1 < len(line) {
			cur.WriteByte(line[i+1])
			i++
			continue
		}

		if c == '\'' && !inDouble && depth == 0 {
			inSingle = !inSingle
			cur.WriteByte(c)
			continue
		}
		if c == '"' && !inSingle && depth == 0 {
			inDouble = !inDouble
			cur.WriteByte(c)
			continue
		}
		if inSingle || inDouble {
			cur.WriteByte(c)
			continue
		}

		if c == p.OpenBracket {
			depth++
			cur.WriteByte(c)
			continue
		}
		if c == p.CloseBracket && depth > 0 {
			depth--
			cur.WriteByte(c)
			continue
		}
		if depth > 0 {
			cur.WriteByte(c)
			continue
		}

		if sym, ok := p.matchOperator(line, i); ok {
			flushText()
			tokens = append(tokens, token{value: sym, op: true})
			i += len(sym) - 1
			continue
		}

		cur.WriteByte(c)
	}

	flushText()
	return tokens
}
