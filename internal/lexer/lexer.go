package lexer

import (
	"fmt"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	// EOF represents the end of input
	EOF TokenType = iota
	// KEYWORD represents a keyword token
	KEYWORD
	// IDENTIFIER represents an identifier token
	IDENTIFIER
	// NUMBER represents a number token
	NUMBER
	// STRING represents a quoted string token, quotes stripped
	STRING
	// SYMBOL represents any symbol without a dedicated type
	SYMBOL
	// LPAREN represents a left parenthesis
	LPAREN
	// RPAREN represents a right parenthesis
	RPAREN
	// COMMA represents a comma
	COMMA
	// SEMICOLON represents a semicolon
	SEMICOLON
	// ASTERISK represents an asterisk
	ASTERISK
	// EQUALS represents an equals sign
	EQUALS
	// DOT represents a dot, used in qualified column names
	DOT
)

var typeNames = map[TokenType]string{
	EOF:        "EOF",
	KEYWORD:    "KEYWORD",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	SYMBOL:     "SYMBOL",
	LPAREN:     "(",
	RPAREN:     ")",
	COMMA:      ",",
	SEMICOLON:  ";",
	ASTERISK:   "*",
	EQUALS:     "=",
	DOT:        ".",
}

func (t TokenType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "INSERT": true,
	"INTO": true, "VALUES": true, "UPDATE": true, "SET": true,
	"DELETE": true, "CREATE": true, "TABLE": true, "JOIN": true,
	"ON": true, "PRIMARY": true, "UNIQUE": true, "INDEX": true,
	"SHOW": true, "TABLES": true, "DESCRIBE": true,
	"AND": true, "OR": true, "NULL": true, "TRUE": true, "FALSE": true,
	"INT": true, "INTEGER": true, "STRING": true, "TEXT": true,
	"BOOL": true, "BOOLEAN": true,
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("Token{Type: %v, Literal: %q}", t.Type, t.Literal)
}

// Lexer walks a command string byte by byte
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

// New creates a new lexer with the given input
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// NextToken consumes and returns the next token. Keywords are recognized
// case-insensitively and returned upper-cased; identifiers are lower-cased
// so table and column names compare consistently.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '(':
		tok = Token{Type: LPAREN, Literal: string(l.ch)}
	case ')':
		tok = Token{Type: RPAREN, Literal: string(l.ch)}
	case ',':
		tok = Token{Type: COMMA, Literal: string(l.ch)}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: string(l.ch)}
	case '*':
		tok = Token{Type: ASTERISK, Literal: string(l.ch)}
	case '=':
		tok = Token{Type: EQUALS, Literal: string(l.ch)}
	case '.':
		tok = Token{Type: DOT, Literal: string(l.ch)}
	case 0:
		tok = Token{Type: EOF, Literal: ""}
	case '"', '\'':
		quote := l.ch
		l.readChar()
		tok = Token{Type: STRING, Literal: l.readString(quote)}
	default:
		if isLetter(l.ch) {
			word := l.readIdentifier()
			upper := toUpper(word)
			if keywords[upper] {
				return Token{Type: KEYWORD, Literal: upper}
			}
			return Token{Type: IDENTIFIER, Literal: toLower(word)}
		} else if isDigit(l.ch) || l.ch == '-' {
			return Token{Type: NUMBER, Literal: l.readNumber()}
		}
		tok = Token{Type: SYMBOL, Literal: string(l.ch)}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readString(quote byte) string {
	position := l.position
	for l.ch != quote && l.ch != 0 {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return unicode.IsDigit(rune(ch))
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
