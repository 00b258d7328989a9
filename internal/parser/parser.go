package parser

import (
	"strconv"

	"github.com/paulwritescode/minidb/internal/lexer"
	"github.com/paulwritescode/minidb/internal/types"
)

// Parser is a recursive-descent SQL parser with one token of lookahead.
type Parser struct {
	l    *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
}

// New creates a new parser over the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Parse parses a single command string into a Statement.
func Parse(input string) (Statement, error) {
	return New(lexer.New(input)).Parse()
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

// Parse parses the statement the parser was constructed over.
func (p *Parser) Parse() (Statement, error) {
	if p.cur.Type == lexer.EOF {
		return nil, types.NewParseError("empty statement")
	}
	if p.cur.Type != lexer.KEYWORD {
		return nil, types.NewParseError("unsupported statement: %s", p.cur.Literal)
	}

	var stmt Statement
	var err error
	switch p.cur.Literal {
	case "CREATE":
		stmt, err = p.parseCreate()
	case "INSERT":
		stmt, err = p.parseInsert()
	case "SELECT":
		stmt, err = p.parseSelect()
	case "UPDATE":
		stmt, err = p.parseUpdate()
	case "DELETE":
		stmt, err = p.parseDelete()
	case "SHOW":
		stmt, err = p.parseShowTables()
	case "DESCRIBE":
		stmt, err = p.parseDescribe()
	default:
		return nil, types.NewParseError("unsupported statement: %s", p.cur.Literal)
	}
	if err != nil {
		return nil, err
	}

	// A trailing semicolon is allowed; anything else is an error.
	if p.cur.Type == lexer.SEMICOLON {
		p.next()
	}
	if p.cur.Type != lexer.EOF {
		return nil, types.NewParseError("unexpected input after statement: %s", p.cur.Literal)
	}
	return stmt, nil
}

func (p *Parser) expectKeyword(kw string) error {
	if p.cur.Type != lexer.KEYWORD || p.cur.Literal != kw {
		return types.NewParseError("expected %s, got %s", kw, p.describe())
	}
	p.next()
	return nil
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.cur.Type != t {
		return lexer.Token{}, types.NewParseError("expected %s, got %s", t, p.describe())
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *Parser) describe() string {
	if p.cur.Type == lexer.EOF {
		return "end of input"
	}
	return p.cur.Literal
}

func (p *Parser) parseIdentifier(what string) (string, error) {
	if p.cur.Type != lexer.IDENTIFIER {
		return "", types.NewParseError("expected %s, got %s", what, p.describe())
	}
	name := p.cur.Literal
	p.next()
	return name, nil
}

// parseColumnRef parses `column` or `table.column`.
func (p *Parser) parseColumnRef() (ColumnRef, error) {
	first, err := p.parseIdentifier("column name")
	if err != nil {
		return ColumnRef{}, err
	}
	if p.cur.Type != lexer.DOT {
		return ColumnRef{Name: first}, nil
	}
	p.next()
	second, err := p.parseIdentifier("column name")
	if err != nil {
		return ColumnRef{}, err
	}
	return ColumnRef{Table: first, Name: second}, nil
}

// parseLiteral parses an unquoted integer, a quoted string or TRUE/FALSE.
func (p *Parser) parseLiteral() (interface{}, error) {
	switch p.cur.Type {
	case lexer.NUMBER:
		n, err := strconv.ParseInt(p.cur.Literal, 10, 64)
		if err != nil {
			return nil, types.NewParseError("invalid number: %s", p.cur.Literal)
		}
		p.next()
		return n, nil
	case lexer.STRING:
		s := p.cur.Literal
		p.next()
		return s, nil
	case lexer.KEYWORD:
		switch p.cur.Literal {
		case "TRUE":
			p.next()
			return true, nil
		case "FALSE":
			p.next()
			return false, nil
		}
	}
	return nil, types.NewParseError("expected literal, got %s", p.describe())
}

func (p *Parser) parseCondition() (*Condition, error) {
	col, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EQUALS); err != nil {
		return nil, err
	}
	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &Condition{Column: col, Value: val}, nil
}

// parseOptionalWhere consumes a WHERE clause if one is present.
func (p *Parser) parseOptionalWhere() (*Condition, error) {
	if p.cur.Type != lexer.KEYWORD || p.cur.Literal != "WHERE" {
		return nil, nil
	}
	p.next()
	return p.parseCondition()
}

func (p *Parser) parseCreate() (*CreateTableStatement, error) {
	p.next()
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	stmt := &CreateTableStatement{Table: table}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)

		if p.cur.Type == lexer.COMMA {
			p.next()
			continue
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		break
	}
	return stmt, nil
}

func (p *Parser) parseColumnDef() (types.Column, error) {
	name, err := p.parseIdentifier("column name")
	if err != nil {
		return types.Column{}, err
	}

	if p.cur.Type != lexer.KEYWORD {
		return types.Column{}, types.NewParseError("expected column type, got %s", p.describe())
	}
	colType, ok := types.ParseColumnType(p.cur.Literal)
	if !ok {
		return types.Column{}, types.NewParseError("unsupported column type: %s", p.cur.Literal)
	}
	p.next()

	col := types.Column{Name: name, Type: colType}
	for p.cur.Type == lexer.KEYWORD {
		switch p.cur.Literal {
		case "PRIMARY":
			col.PrimaryKey = true
		case "UNIQUE":
			col.Unique = true
		case "INDEX":
			col.Indexed = true
		default:
			return types.Column{}, types.NewParseError("unexpected column flag: %s", p.cur.Literal)
		}
		p.next()
	}
	return col.Normalize(), nil
}

func (p *Parser) parseInsert() (*InsertStatement, error) {
	p.next()
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt := &InsertStatement{Table: table}

	// Optional column list; absent means positional against schema order.
	if p.cur.Type == lexer.LPAREN {
		p.next()
		for {
			name, err := p.parseIdentifier("column name")
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, name)
			if p.cur.Type == lexer.COMMA {
				p.next()
				continue
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			break
		}
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	for {
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, val)
		if p.cur.Type == lexer.COMMA {
			p.next()
			continue
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		break
	}
	return stmt, nil
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	p.next()
	stmt := &SelectStatement{}

	if p.cur.Type == lexer.ASTERISK {
		stmt.Star = true
		p.next()
	} else {
		for {
			col, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
			if p.cur.Type != lexer.COMMA {
				break
			}
			p.next()
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if p.cur.Type == lexer.KEYWORD && p.cur.Literal == "JOIN" {
		p.next()
		join := &JoinClause{}
		join.Table, err = p.parseIdentifier("table name")
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("ON"); err != nil {
			return nil, err
		}
		join.Left, err = p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.EQUALS); err != nil {
			return nil, err
		}
		join.Right, err = p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		stmt.Join = join
	}

	stmt.Where, err = p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseUpdate() (*UpdateStatement, error) {
	p.next()
	table, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}

	stmt := &UpdateStatement{Table: table}
	for {
		col, err := p.parseIdentifier("column name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.EQUALS); err != nil {
			return nil, err
		}
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, Assignment{Column: col, Value: val})
		if p.cur.Type != lexer.COMMA {
			break
		}
		p.next()
	}

	stmt.Where, err = p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseDelete() (*DeleteStatement, error) {
	p.next()
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return &DeleteStatement{Table: table, Where: where}, nil
}

func (p *Parser) parseShowTables() (*ShowTablesStatement, error) {
	p.next()
	if err := p.expectKeyword("TABLES"); err != nil {
		return nil, err
	}
	return &ShowTablesStatement{}, nil
}

func (p *Parser) parseDescribe() (*DescribeStatement, error) {
	p.next()
	table, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	return &DescribeStatement{Table: table}, nil
}
