package exprctx

import (
	"fmt"
	"strings"
	"unicode"
)

// Token is a lexical token of expression text.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int
}

type TokenKind int

const (
	TokIdent TokenKind = iota
	TokQuotedIdent
	TokString
	TokNumber
	TokOperator
	TokLParen
	TokRParen
	TokComma
	TokSemicolon
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokIdent:
		return "Ident"
	case TokQuotedIdent:
		return "QuotedIdent"
	case TokString:
		return "String"
	case TokNumber:
		return "Number"
	case TokOperator:
		return "Operator"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokComma:
		return "Comma"
	case TokSemicolon:
		return "Semicolon"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

var twoCharOps = []string{"||", "<=", ">=", "<>", "!=", "==", "<<", ">>"}

const oneCharOps = "+-*/%<>=!&|~."

// Lexer tokenizes expression text.
type Lexer struct {
	input []rune
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Lex tokenizes the entire input. The last token is always TokEOF.
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token. Comments are skipped like whitespace.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: start}, nil
	}

	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		return Token{Kind: TokLParen, Value: "(", Pos: start}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Value: ")", Pos: start}, nil
	case ',':
		l.pos++
		return Token{Kind: TokComma, Value: ",", Pos: start}, nil
	case ';':
		l.pos++
		return Token{Kind: TokSemicolon, Value: ";", Pos: start}, nil
	case '"':
		val, err := l.scanQuoted('"')
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokQuotedIdent, Value: val, Pos: start}, nil
	case '\'':
		val, err := l.scanQuoted('\'')
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokString, Value: val, Pos: start}, nil
	}

	if unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peek(1))) {
		return l.scanNumber(), nil
	}

	if isIdentStart(ch) {
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return Token{Kind: TokIdent, Value: string(l.input[start:l.pos]), Pos: start}, nil
	}

	for _, op := range twoCharOps {
		if ch == rune(op[0]) && l.peek(1) == rune(op[1]) {
			l.pos += 2
			return Token{Kind: TokOperator, Value: op, Pos: start}, nil
		}
	}
	if strings.ContainsRune(oneCharOps, ch) {
		l.pos++
		return Token{Kind: TokOperator, Value: string(ch), Pos: start}, nil
	}

	return Token{}, fmt.Errorf("unexpected character %q at position %d", ch, start)
}

// skipTrivia skips whitespace, "--" line comments and "/* */" block
// comments.
func (l *Lexer) skipTrivia() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case unicode.IsSpace(ch):
			l.pos++
		case ch == '-' && l.peek(1) == '-':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case ch == '/' && l.peek(1) == '*':
			start := l.pos
			l.pos += 2
			for l.pos < len(l.input) && !(l.input[l.pos] == '*' && l.peek(1) == '/') {
				l.pos++
			}
			if l.pos >= len(l.input) {
				return fmt.Errorf("unterminated comment at position %d", start)
			}
			l.pos += 2
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

// scanQuoted reads a quote-delimited token where a doubled quote stands for
// one literal quote.
func (l *Lexer) scanQuoted(quote rune) (string, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			if l.peek(1) == quote {
				sb.WriteRune(quote)
				l.pos += 2
				continue
			}
			l.pos++
			return sb.String(), nil
		}
		sb.WriteRune(ch)
		l.pos++
	}

	return "", fmt.Errorf("unterminated %c at position %d", quote, start)
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && (unicode.IsDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		next := l.peek(1)
		if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(l.peek(2))) {
			l.pos += 2
			for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
				l.pos++
			}
		}
	}
	return Token{Kind: TokNumber, Value: string(l.input[start:l.pos]), Pos: start}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
