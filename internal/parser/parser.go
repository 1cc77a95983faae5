package parser

import (
	"errors"
	"sync"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// ErrNoStatement is returned when the input holds no SQL statement.
var ErrNoStatement = errors.New("no valid SQL found")

// SQLParser wraps the TiDB parser. A *parser.Parser keeps state between
// calls, so instances are pooled and each Parse takes its own.
type SQLParser struct {
	pool sync.Pool
}

func NewSQLParser() *SQLParser {
	return &SQLParser{
		pool: sync.Pool{New: func() any { return parser.New() }},
	}
}

// Parse converts a SQL string into an AST. Only the first statement is
// returned; trailing statements are parsed and discarded.
func (sp *SQLParser) Parse(sql string) (ast.StmtNode, error) {
	p := sp.pool.Get().(*parser.Parser)
	defer sp.pool.Put(p)

	stmtNodes, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, err
	}
	if len(stmtNodes) == 0 {
		return nil, ErrNoStatement
	}
	return stmtNodes[0], nil
}
