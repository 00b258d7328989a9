package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paulwritescode/minidb/internal/lexer"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexer.Token
	}{
		{
			name:  "Select_all_from_table",
			input: "SELECT * FROM tablex;",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "SELECT"},
				{Type: lexer.ASTERISK, Literal: "*"},
				{Type: lexer.KEYWORD, Literal: "FROM"},
				{Type: lexer.IDENTIFIER, Literal: "tablex"},
				{Type: lexer.SEMICOLON, Literal: ";"},
			},
		},
		{
			name:  "Create_table_with_flags",
			input: "CREATE TABLE u (id INT PRIMARY, name TEXT)",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "CREATE"},
				{Type: lexer.KEYWORD, Literal: "TABLE"},
				{Type: lexer.IDENTIFIER, Literal: "u"},
				{Type: lexer.LPAREN, Literal: "("},
				{Type: lexer.IDENTIFIER, Literal: "id"},
				{Type: lexer.KEYWORD, Literal: "INT"},
				{Type: lexer.KEYWORD, Literal: "PRIMARY"},
				{Type: lexer.COMMA, Literal: ","},
				{Type: lexer.IDENTIFIER, Literal: "name"},
				{Type: lexer.KEYWORD, Literal: "TEXT"},
				{Type: lexer.RPAREN, Literal: ")"},
			},
		},
		{
			name:  "Qualified_column_name",
			input: "users.id=orders.user_id",
			expected: []lexer.Token{
				{Type: lexer.IDENTIFIER, Literal: "users"},
				{Type: lexer.DOT, Literal: "."},
				{Type: lexer.IDENTIFIER, Literal: "id"},
				{Type: lexer.EQUALS, Literal: "="},
				{Type: lexer.IDENTIFIER, Literal: "orders"},
				{Type: lexer.DOT, Literal: "."},
				{Type: lexer.IDENTIFIER, Literal: "user_id"},
			},
		},
		{
			name:  "Quoted_string_keeps_case",
			input: "INSERT INTO users VALUES (1, 'Alice')",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "INSERT"},
				{Type: lexer.KEYWORD, Literal: "INTO"},
				{Type: lexer.IDENTIFIER, Literal: "users"},
				{Type: lexer.KEYWORD, Literal: "VALUES"},
				{Type: lexer.LPAREN, Literal: "("},
				{Type: lexer.NUMBER, Literal: "1"},
				{Type: lexer.COMMA, Literal: ","},
				{Type: lexer.STRING, Literal: "Alice"},
				{Type: lexer.RPAREN, Literal: ")"},
			},
		},
		{
			name:  "Keywords_case_insensitive_identifiers_lowercased",
			input: "select Name from Users where Active=true",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "SELECT"},
				{Type: lexer.IDENTIFIER, Literal: "name"},
				{Type: lexer.KEYWORD, Literal: "FROM"},
				{Type: lexer.IDENTIFIER, Literal: "users"},
				{Type: lexer.KEYWORD, Literal: "WHERE"},
				{Type: lexer.IDENTIFIER, Literal: "active"},
				{Type: lexer.EQUALS, Literal: "="},
				{Type: lexer.KEYWORD, Literal: "TRUE"},
			},
		},
		{
			name:  "Negative_number",
			input: "WHERE balance=-42",
			expected: []lexer.Token{
				{Type: lexer.KEYWORD, Literal: "WHERE"},
				{Type: lexer.IDENTIFIER, Literal: "balance"},
				{Type: lexer.EQUALS, Literal: "="},
				{Type: lexer.NUMBER, Literal: "-42"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lexer.New(tt.input)
			tokens := []lexer.Token{}
			for {
				tok := l.NextToken()
				if tok.Type == lexer.EOF {
					break
				}
				tokens = append(tokens, tok)
			}
			assert.Equal(t, tt.expected, tokens)
		})
	}
}
