package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sxt-network/sxt-node/pkg/scalar"
)

// MaxStatementBytes bounds the size of a CREATE TABLE statement accepted by
// this node (spec §7 "statement-too-large").
const MaxStatementBytes = 64 * 1024

// ColumnDef is one parsed column declaration.
type ColumnDef struct {
	Identifier string
	Type       scalar.ColumnType
	NotNull    bool
}

// WithOption is one entry of a trailing WITH (key=value, ...) clause.
type WithOption struct {
	Key   string
	Value string
}

// Statement is a parsed CREATE TABLE statement, per the DDL surface of
// spec §6: a two-segment name, typed NOT NULL columns, an optional
// PRIMARY KEY, and an optional trailing WITH clause.
type Statement struct {
	Table      ID
	Columns    []ColumnDef
	PrimaryKey []string
	With       []WithOption
}

// WithValue returns the value of a WITH option by key, if present.
func (s *Statement) WithValue(key string) (string, bool) {
	for _, o := range s.With {
		if o.Key == key {
			return o.Value, true
		}
	}
	return "", false
}

// Parse parses the DDL subset described in spec §6.
func Parse(sql string) (*Statement, error) {
	if len(sql) > MaxStatementBytes {
		return nil, ErrStatementTooLarge
	}
	p := &parser{toks: tokenize(sql)}
	return p.parseCreateTable()
}

// --- tokenizer -------------------------------------------------------------

type token struct {
	text string
	quot bool // true if this token was a single-quoted string literal
}

func tokenize(sql string) []token {
	var toks []token
	i, n := 0, len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ',' || c == '(' || c == ')' || c == '.' || c == '=':
			toks = append(toks, token{text: string(c)})
			i++
		case c == '\'':
			j := i + 1
			var b strings.Builder
			for j < n {
				if sql[j] == '\'' {
					if j+1 < n && sql[j+1] == '\'' {
						b.WriteByte('\'')
						j += 2
						continue
					}
					break
				}
				b.WriteByte(sql[j])
				j++
			}
			toks = append(toks, token{text: b.String(), quot: true})
			i = j + 1
		default:
			j := i
			for j < n {
				c := sql[j]
				if c == ' ' || c == '\t' || c == '\n' || c == '\r' ||
					c == ',' || c == '(' || c == ')' || c == '.' || c == '=' || c == '\'' {
					break
				}
				j++
			}
			toks = append(toks, token{text: sql[i:j]})
			i = j
		}
	}
	return toks
}

// --- parser ------------------------------------------------------------

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) expectText(want string) error {
	t, ok := p.next()
	if !ok || !strings.EqualFold(t.text, want) {
		return fmt.Errorf("%w: expected %q", ErrUnsupportedOption, want)
	}
	return nil
}

func (p *parser) parseCreateTable() (*Statement, error) {
	if err := p.expectText("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectText("TABLE"); err != nil {
		return nil, err
	}

	nsTok, ok := p.next()
	if !ok {
		return nil, ErrBadIdentifierCount
	}
	if err := p.expectText("."); err != nil {
		return nil, ErrBadIdentifierCount
	}
	nameTok, ok := p.next()
	if !ok {
		return nil, ErrBadIdentifierCount
	}
	tableID, err := NewID(nsTok.text, nameTok.text)
	if err != nil {
		return nil, err
	}

	if err := p.expectText("("); err != nil {
		return nil, err
	}

	stmt := &Statement{Table: tableID}
	for {
		t, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("%w: unterminated column list", ErrUnsupportedOption)
		}
		if strings.EqualFold(t.text, "PRIMARY") {
			p.next()
			if err := p.expectText("KEY"); err != nil {
				return nil, err
			}
			pk, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			stmt.PrimaryKey = pk
		} else {
			def, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, def)
		}

		nt, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("%w: unterminated column list", ErrUnsupportedOption)
		}
		if nt.text == ")" {
			break
		}
		if nt.text != "," {
			return nil, fmt.Errorf("%w: expected , or )", ErrUnsupportedOption)
		}
	}

	// Optional trailing WITH (...) clause.
	if t, ok := p.peek(); ok && strings.EqualFold(t.text, "WITH") {
		p.next()
		with, err := p.parseWithClause()
		if err != nil {
			return nil, err
		}
		stmt.With = with
	}

	return stmt, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	if err := p.expectText("("); err != nil {
		return nil, err
	}
	var out []string
	for {
		t, ok := p.next()
		if !ok {
			return nil, ErrBadIdentifierCount
		}
		out = append(out, strings.ToUpper(t.text))
		nt, ok := p.next()
		if !ok {
			return nil, ErrBadIdentifierCount
		}
		if nt.text == ")" {
			break
		}
		if nt.text != "," {
			return nil, fmt.Errorf("%w: expected , or ) in identifier list", ErrUnsupportedOption)
		}
	}
	return out, nil
}

func (p *parser) parseColumnDef() (ColumnDef, error) {
	nameTok, ok := p.next()
	if !ok {
		return ColumnDef{}, ErrTooFewColumns
	}
	typeTok, ok := p.next()
	if !ok {
		return ColumnDef{}, ErrUnsupportedType
	}

	var args []string
	if t, ok := p.peek(); ok && t.text == "(" {
		p.next()
		for {
			at, ok := p.next()
			if !ok {
				return ColumnDef{}, ErrUnsupportedType
			}
			args = append(args, at.text)
			nt, ok := p.next()
			if !ok {
				return ColumnDef{}, ErrUnsupportedType
			}
			if nt.text == ")" {
				break
			}
			if nt.text != "," {
				return ColumnDef{}, fmt.Errorf("%w: expected , or ) in type args", ErrUnsupportedType)
			}
		}
	}

	colType, err := resolveType(typeTok.text, args)
	if err != nil {
		return ColumnDef{}, err
	}

	notNull := false
	for {
		t, ok := p.peek()
		if !ok {
			break
		}
		if strings.EqualFold(t.text, "NOT") {
			p.next()
			if err := p.expectText("NULL"); err != nil {
				return ColumnDef{}, err
			}
			notNull = true
			continue
		}
		break
	}

	return ColumnDef{Identifier: strings.ToUpper(nameTok.text), Type: colType, NotNull: notNull}, nil
}

func resolveType(name string, args []string) (scalar.ColumnType, error) {
	switch strings.ToUpper(name) {
	case "BOOLEAN", "BOOL":
		return scalar.Boolean(), nil
	case "U8", "UTINYINT":
		return scalar.U8Type(), nil
	case "I8", "TINYINT":
		return scalar.I8Type(), nil
	case "I16", "SMALLINT":
		return scalar.I16Type(), nil
	case "I32", "INT", "INTEGER":
		return scalar.I32Type(), nil
	case "I64", "BIGINT":
		return scalar.I64Type(), nil
	case "I128", "HUGEINT":
		return scalar.I128Type(), nil
	case "VARCHAR", "TEXT":
		return scalar.VarChar(), nil
	case "VARBINARY", "BYTEA":
		return scalar.VarBinary(), nil
	case "DECIMAL", "DECIMAL75", "NUMERIC":
		if len(args) != 2 {
			return scalar.ColumnType{}, fmt.Errorf("%w: DECIMAL requires (precision,scale)", ErrUnsupportedType)
		}
		prec, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return scalar.ColumnType{}, fmt.Errorf("%w: bad precision", ErrUnsupportedType)
		}
		scale, err := strconv.ParseInt(args[1], 10, 16)
		if err != nil {
			return scalar.ColumnType{}, fmt.Errorf("%w: bad scale", ErrUnsupportedType)
		}
		return scalar.Decimal75(uint8(prec), int16(scale))
	case "TIMESTAMPTZ":
		if len(args) < 1 {
			return scalar.ColumnType{}, fmt.Errorf("%w: TIMESTAMPTZ requires a unit", ErrUnsupportedType)
		}
		unit, err := resolveTimeUnit(args[0])
		if err != nil {
			return scalar.ColumnType{}, err
		}
		var tz *string
		if len(args) >= 2 {
			z := args[1]
			tz = &z
		}
		return scalar.TimestampTZ(unit, tz)
	default:
		return scalar.ColumnType{}, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
}

func resolveTimeUnit(s string) (scalar.TimeUnit, error) {
	switch strings.ToLower(strings.Trim(s, "'")) {
	case "s":
		return scalar.Second, nil
	case "ms":
		return scalar.Millisecond, nil
	case "us":
		return scalar.Microsecond, nil
	case "ns":
		return scalar.Nanosecond, nil
	default:
		return 0, fmt.Errorf("%w: unknown time unit %q", ErrUnsupportedType, s)
	}
}

func (p *parser) parseWithClause() ([]WithOption, error) {
	if err := p.expectText("("); err != nil {
		return nil, err
	}
	var out []WithOption
	for {
		kt, ok := p.next()
		if !ok {
			return nil, ErrUnsupportedOption
		}
		if err := p.expectText("="); err != nil {
			return nil, err
		}
		vt, ok := p.next()
		if !ok {
			return nil, ErrUnsupportedOption
		}
		out = append(out, WithOption{Key: strings.ToUpper(kt.text), Value: vt.text})
		nt, ok := p.next()
		if !ok {
			return nil, ErrUnsupportedOption
		}
		if nt.text == ")" {
			break
		}
		if nt.text != "," {
			return nil, fmt.Errorf("%w: expected , or ) in WITH clause", ErrUnsupportedOption)
		}
	}
	return out, nil
}

// Render re-serializes a Statement back into CREATE TABLE DDL text, used
// after the registry injects TABLE_UUID/COLUMN_*_UUID options.
func Render(s *Statement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s.%s (", s.Table.Namespace, s.Table.Name)
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Identifier)
		b.WriteByte(' ')
		b.WriteString(renderType(c.Type))
		if c.NotNull {
			b.WriteString(" NOT NULL")
		}
	}
	if len(s.PrimaryKey) > 0 {
		fmt.Fprintf(&b, ", PRIMARY KEY (%s)", strings.Join(s.PrimaryKey, ", "))
	}
	b.WriteString(")")
	if len(s.With) > 0 {
		b.WriteString(" WITH (")
		for i, o := range s.With {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s='%s'", o.Key, strings.ReplaceAll(o.Value, "'", "''"))
		}
		b.WriteString(")")
	}
	return b.String()
}

func renderType(t scalar.ColumnType) string {
	switch t.Kind() {
	case scalar.KindDecimal75:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision(), t.Scale())
	case scalar.KindTimestampTZ:
		if z := t.Zone(); z != nil {
			return fmt.Sprintf("TIMESTAMPTZ(%s,'%s')", t.Unit(), *z)
		}
		return fmt.Sprintf("TIMESTAMPTZ(%s)", t.Unit())
	default:
		return t.Kind().String()
	}
}

// WithOptions merges base options with additions, with additions taking
// precedence on key collision, preserving base order and appending new keys.
func WithOptions(base []WithOption, additions ...WithOption) []WithOption {
	out := append([]WithOption{}, base...)
	for _, add := range additions {
		found := false
		for i, o := range out {
			if o.Key == add.Key {
				out[i].Value = add.Value
				found = true
				break
			}
		}
		if !found {
			out = append(out, add)
		}
	}
	return out
}
