package parser

import (
	"strings"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/test_driver"
)

// ExtractTableNames returns every table a statement references, subqueries
// included, in first-seen order without duplicates.
func ExtractTableNames(node ast.StmtNode) []string {
	v := &tableCollector{seen: make(map[string]struct{})}
	node.Accept(v)
	return v.names
}

type tableCollector struct {
	seen  map[string]struct{}
	names []string
}

func (v *tableCollector) Enter(in ast.Node) (ast.Node, bool) {
	if tn, ok := in.(*ast.TableName); ok {
		if _, dup := v.seen[tn.Name.L]; !dup {
			v.seen[tn.Name.L] = struct{}{}
			v.names = append(v.names, tn.Name.O)
		}
	}
	return in, false
}

func (v *tableCollector) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}

// IsUnboundedWrite reports whether node is an UPDATE or DELETE with no WHERE
// clause, touching every row of its table.
func IsUnboundedWrite(node ast.StmtNode) bool {
	switch stmt := node.(type) {
	case *ast.UpdateStmt:
		return stmt.Where == nil
	case *ast.DeleteStmt:
		return stmt.Where == nil
	}
	return false
}

// SelectsStar reports whether a top-level SELECT lists a wildcard field.
// Wildcards inside subqueries (EXISTS (SELECT * ...)) are not considered.
func SelectsStar(node ast.StmtNode) bool {
	stmt, ok := node.(*ast.SelectStmt)
	if !ok || stmt.Fields == nil {
		return false
	}
	for _, field := range stmt.Fields.Fields {
		if field.WildCard != nil {
			return true
		}
	}
	return false
}

// MaxOffset returns the largest literal LIMIT offset anywhere in node.
// Offsets bound through placeholders are not literals and are skipped.
func MaxOffset(node ast.StmtNode) (uint64, bool) {
	v := &offsetVisitor{}
	node.Accept(v)
	return v.max, v.found
}

type offsetVisitor struct {
	max   uint64
	found bool
}

func (v *offsetVisitor) Enter(in ast.Node) (ast.Node, bool) {
	limit, ok := in.(*ast.Limit)
	if !ok || limit.Offset == nil {
		return in, false
	}
	val, ok := limit.Offset.(*test_driver.ValueExpr)
	if !ok {
		return in, false
	}
	var off uint64
	switch n := val.GetValue().(type) {
	case uint64:
		off = n
	case int64:
		if n < 0 {
			return in, false
		}
		off = uint64(n)
	default:
		return in, false
	}
	if !v.found || off > v.max {
		v.max, v.found = off, true
	}
	return in, false
}

func (v *offsetVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}

// LeadingWildcard returns the first LIKE pattern in node that starts with '%'.
func LeadingWildcard(node ast.StmtNode) (string, bool) {
	v := &likeVisitor{}
	node.Accept(v)
	return v.pattern, v.found
}

type likeVisitor struct {
	pattern string
	found   bool
}

func (v *likeVisitor) Enter(in ast.Node) (ast.Node, bool) {
	if v.found {
		return in, true
	}
	if like, ok := in.(*ast.PatternLikeOrIlikeExpr); ok {
		if strVal, ok := like.Pattern.(*test_driver.ValueExpr); ok {
			if s := strVal.GetString(); strings.HasPrefix(s, "%") {
				v.pattern, v.found = s, true
			}
		}
	}
	return in, false
}

func (v *likeVisitor) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
