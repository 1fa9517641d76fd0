package gocas

import (
	"sort"
	"strings"
)

// Preprocessor rewrites source text before tokenization.
type Preprocessor struct {
	Name  string
	Apply func(s *Session, src string) (string, error)
}

// AddPreprocessor appends p to the chain. Preprocessors run in order.
func (s *Session) AddPreprocessor(p Preprocessor) {
	s.preprocessors = append(s.preprocessors, p)
}

// RemovePreprocessor drops the preprocessor called name.
func (s *Session) RemovePreprocessor(name string) bool {
	for i, p := range s.preprocessors {
		if p.Name == name {
			s.preprocessors = append(s.preprocessors[:i], s.preprocessors[i+1:]...)
			return true
		}
	}
	return false
}

// Alias makes the identifier from read as to.
func (s *Session) Alias(from, to string) error {
	if !validName(from) || !validName(to) {
		return &Error{Op: "alias", Token: from, Err: ErrInvalidVariableName}
	}
	s.aliases[from] = to
	return nil
}

// Preprocess runs the preprocessor chain over src.
func (s *Session) Preprocess(src string) (out string, err error) {
	defer recoverTo(&err)
	return s.preprocess(src), nil
}

func (s *Session) preprocess(src string) string {
	for _, p := range s.preprocessors {
		out, err := p.Apply(s, src)
		if err != nil {
			throw(err)
		}
		src = out
	}
	return src
}

// lexUnit is a coarse token used by the preprocessors.
type lexUnit struct {
	kind  byte // 'n' number, 'i' identifier, '(' open, ')' close, 0 other
	text  string
	space bool // preceded by whitespace
}

func (s *Session) lexUnits(src string) []lexUnit {
	var units []lexUnit
	space := false
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			space = true
			i++
			continue
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			end := scanNumber(src, i)
			units = append(units, lexUnit{kind: 'n', text: src[i:end], space: space})
			i = end
		case isIdentStart(c):
			end := i + 1
			for end < len(src) && isIdentChar(src[end]) {
				end++
			}
			units = append(units, lexUnit{kind: 'i', text: src[i:end], space: space})
			i = end
		default:
			u := lexUnit{text: src[i : i+1], space: space}
			if _, ok := s.brackets[u.text]; ok {
				u.kind = '('
			} else if s.isCloser(u.text) {
				u.kind = ')'
			}
			units = append(units, u)
			i++
		}
		space = false
	}
	return units
}

func joinUnits(units []lexUnit) string {
	var b strings.Builder
	for i, u := range units {
		if u.space && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(u.text)
	}
	return b.String()
}

// aliasPreprocessor rewrites alternate function names such as ln.
func aliasPreprocessor() Preprocessor {
	return Preprocessor{Name: "aliases", Apply: func(s *Session, src string) (string, error) {
		units := s.lexUnits(src)
		for i, u := range units {
			if to, ok := s.aliases[u.text]; ok && u.kind == 'i' {
				units[i].text = to
			}
		}
		return joinUnits(units), nil
	}}
}

// impliedMultiplication inserts '*' where juxtaposition means a product:
// "2x", "2(x+1)", "(x+1)(x-1)", "x(y+1)" when x is not a function, and
// "x y".
func impliedMultiplication() Preprocessor {
	return Preprocessor{Name: "implied-multiplication", Apply: func(s *Session, src string) (string, error) {
		units := s.lexUnits(src)
		out := make([]lexUnit, 0, len(units))
		for i, u := range units {
			if i > 0 && s.impliesProduct(units[i-1], u) {
				out = append(out, lexUnit{text: "*"})
			}
			out = append(out, u)
		}
		return joinUnits(out), nil
	}}
}

func (s *Session) impliesProduct(prev, cur lexUnit) bool {
	switch prev.kind {
	case 'n':
		return cur.kind == 'i' || cur.kind == '('
	case ')':
		return cur.kind == 'i' || cur.kind == '(' || cur.kind == 'n'
	case 'i':
		switch cur.kind {
		case '(':
			return s.functions[prev.text] == nil
		case 'i':
			return cur.space
		}
	}
	return false
}

// scanNumber returns the end of the numeric literal starting at i. An 'e'
// is an exponent marker only when digits follow it, so "2e" is 2*e.
func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

// TokenKind classifies a Token.
type TokenKind uint8

const (
	TokenNumber TokenKind = iota
	TokenIdent
	TokenOperator
	TokenComma
	TokenGroup
)

// Token is one lexical unit. A TokenGroup holds the tokens between a
// matched pair of brackets.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int
	Group []Token
	Close string
}

func (t Token) String() string {
	if t.Kind == TokenGroup {
		parts := make([]string, len(t.Group))
		for i, g := range t.Group {
			parts[i] = g.String()
		}
		return t.Value + strings.Join(parts, " ") + t.Close
	}
	return t.Value
}

// Tokenize splits src into nested token groups. It does not preprocess.
func (s *Session) Tokenize(src string) (toks []Token, err error) {
	defer recoverTo(&err)
	return s.tokenize(src), nil
}

// operatorChars look like operators; an unregistered one is an operator
// error rather than a stray character.
const operatorChars = "+-*/^!%&|<>=~?:;@$#\\"

type tokenizer struct {
	s   *Session
	src string
	pos int
	ops []string // operator symbols, longest first
}

func (s *Session) tokenize(src string) []Token {
	t := &tokenizer{s: s, src: src, ops: s.operatorSymbols()}
	return t.group(Bracket{}, 0)
}

func (s *Session) operatorSymbols() []string {
	seen := map[string]bool{}
	for _, table := range []map[string]*Operator{s.binary, s.prefix, s.postfix} {
		for sym := range table {
			seen[sym] = true
		}
	}
	ops := make([]string, 0, len(seen))
	for sym := range seen {
		ops = append(ops, sym)
	}
	sort.Slice(ops, func(i, j int) bool {
		if len(ops[i]) != len(ops[j]) {
			return len(ops[i]) > len(ops[j])
		}
		return ops[i] < ops[j]
	})
	return ops
}

func (s *Session) isCloser(sym string) bool {
	for _, b := range s.brackets {
		if b.Close == sym {
			return true
		}
	}
	return false
}

// group reads tokens until the closer of open, or end of input when open is
// the zero Bracket.
func (t *tokenizer) group(open Bracket, openPos int) []Token {
	var out []Token
	for {
		for t.pos < len(t.src) && strings.IndexByte(" \t\r\n", t.src[t.pos]) >= 0 {
			t.pos++
		}
		if t.pos >= len(t.src) {
			if open.Open != "" {
				throwAt("tokenize", ErrParity, open.Open, openPos, "missing "+open.Close)
			}
			return out
		}
		start := t.pos
		c := t.src[start]
		rest := t.src[start:]
		switch {
		case isDigit(c) || (c == '.' && start+1 < len(t.src) && isDigit(t.src[start+1])):
			t.pos = scanNumber(t.src, start)
			out = append(out, Token{Kind: TokenNumber, Value: t.src[start:t.pos], Pos: start})
			continue
		case isIdentStart(c):
			t.pos++
			for t.pos < len(t.src) && isIdentChar(t.src[t.pos]) {
				t.pos++
			}
			out = append(out, Token{Kind: TokenIdent, Value: t.src[start:t.pos], Pos: start})
			continue
		case c == ',':
			t.pos++
			out = append(out, Token{Kind: TokenComma, Value: ",", Pos: start})
			continue
		case open.Close != "" && strings.HasPrefix(rest, open.Close):
			t.pos += len(open.Close)
			return out
		}
		if b, ok := t.bracket(rest); ok {
			t.pos += len(b.Open)
			inner := t.group(b, start)
			out = append(out, Token{Kind: TokenGroup, Value: b.Open, Close: b.Close, Pos: start, Group: inner})
			continue
		}
		if t.s.isCloser(string(c)) {
			throwAt("tokenize", ErrParity, string(c), start, "no matching opening bracket")
		}
		if op := t.operator(rest); op != "" {
			t.pos += len(op)
			out = append(out, Token{Kind: TokenOperator, Value: op, Pos: start})
			continue
		}
		if strings.IndexByte(operatorChars, c) >= 0 {
			throwAt("tokenize", ErrOperator, string(c), start, "operator is not registered")
		}
		throwAt("tokenize", ErrUnexpectedToken, string(rest[0]), start, "unexpected character")
	}
}

func (t *tokenizer) bracket(rest string) (Bracket, bool) {
	for open, b := range t.s.brackets {
		if strings.HasPrefix(rest, open) {
			return b, true
		}
	}
	return Bracket{}, false
}

func (t *tokenizer) operator(rest string) string {
	for _, op := range t.ops {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return ""
}

// Bracket is a registered pair of grouping symbols.
type Bracket struct {
	Open  string
	Close string
}

// RegisterBracket adds a grouping pair such as "{" and "}".
func (s *Session) RegisterBracket(open, close string) error {
	if open == "" || close == "" || open == close {
		return &Error{Op: "bracket", Token: open, Msg: "open and close must differ", Err: ErrOperator}
	}
	s.brackets[open] = Bracket{Open: open, Close: close}
	return nil
}
