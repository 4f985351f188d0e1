package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"

	"flagger/internal/ast"
	"flagger/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(label string) *treeNode {
	child := &treeNode{label: label}
	n.children = append(n.children, child)
	return child
}

// formatSpan formats a span as "startLine:startCol-endLine:endCol",
// or "span(start-end)" when fs is nil.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

func buildFileTreeNode(builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) *treeNode {
	file := builder.Files.Get(fileID)
	if file == nil {
		return &treeNode{label: fmt.Sprintf("File[%d]: <nil>", fileID)}
	}
	header := "File"
	if fs != nil {
		header = fs.Get(file.Span.File).FormatPath("auto", fs.BaseDir())
	}
	root := &treeNode{label: fmt.Sprintf("%s (span: %s)", header, formatSpan(file.Span, fs))}
	if file.Package != "" {
		root.add(fmt.Sprintf("Package: %s (span: %s)", file.Package, formatSpan(file.PackageSpan, fs)))
	}
	for idx, item := range builder.FlagSets(fileID) {
		root.children = append(root.children, buildFlagsTreeNode(builder, item, fs, idx))
	}
	return root
}

func buildFlagsTreeNode(builder *ast.Builder, item *ast.FlagsItem, fs *source.FileSet, idx int) *treeNode {
	node := &treeNode{label: fmt.Sprintf("Item[%d]: Flags %s (span: %s)", idx, item.Name, formatSpan(item.Span, fs))}
	for _, line := range item.Doc {
		node.add("Doc: " + line)
	}
	for _, vid := range item.Variants {
		v := builder.Items.Variant(vid)
		if v == nil {
			node.add("Variant: <nil>")
			continue
		}
		vn := node.add(fmt.Sprintf("Variant %s (span: %s)", v.Name, formatSpan(v.Span, fs)))
		switch v.Fields {
		case ast.FieldsTuple:
			vn.add(fmt.Sprintf("Fields: tuple (span: %s)", formatSpan(v.FieldsSpan, fs)))
		case ast.FieldsStruct:
			vn.add(fmt.Sprintf("Fields: struct (span: %s)", formatSpan(v.FieldsSpan, fs)))
		}
		if v.Value.IsValid() {
			vn.children = append(vn.children, buildExprTreeNode(builder, v.Value, fs, 0))
		} else {
			vn.add("Value: <implicit>")
		}
	}
	return node
}

func buildExprTreeNode(builder *ast.Builder, exprID ast.ExprID, fs *source.FileSet, depth int) *treeNode {
	expr := builder.Exprs.Get(exprID)
	if expr == nil {
		return &treeNode{label: "<nil>"}
	}
	node := &treeNode{label: fmt.Sprintf("%s %s (span: %s)", formatExprKind(expr.Kind), formatExprInline(builder, exprID), formatSpan(expr.Span, fs))}
	if depth > maxExprDepth {
		return node
	}

	// листья (литералы и пути) детей не имеют
	switch expr.Kind {
	case ast.ExprBinary:
		if b, ok := builder.Exprs.Binary(exprID); ok {
			node.children = append(node.children,
				buildExprTreeNode(builder, b.Left, fs, depth+1),
				buildExprTreeNode(builder, b.Right, fs, depth+1))
		}
	case ast.ExprUnary:
		if u, ok := builder.Exprs.Unary(exprID); ok {
			node.children = append(node.children, buildExprTreeNode(builder, u.Operand, fs, depth+1))
		}
	case ast.ExprGroup:
		if g, ok := builder.Exprs.Group(exprID); ok {
			node.children = append(node.children, buildExprTreeNode(builder, g.Inner, fs, depth+1))
		}
	case ast.ExprCall:
		if c, ok := builder.Exprs.Call(exprID); ok {
			node.children = append(node.children, buildExprTreeNode(builder, c.Target, fs, depth+1))
			for _, a := range c.Args {
				node.children = append(node.children, buildExprTreeNode(builder, a, fs, depth+1))
			}
		}
	}
	return node
}

func writeTree(w io.Writer, node *treeNode, prefix string, last, root bool) {
	switch {
	case root:
		fmt.Fprintln(w, node.label)
	case last:
		fmt.Fprintf(w, "%s└─ %s\n", prefix, node.label)
		prefix += "   "
	default:
		fmt.Fprintf(w, "%s├─ %s\n", prefix, node.label)
		prefix += "│  "
	}
	for i, child := range node.children {
		writeTree(w, child, prefix, i == len(node.children)-1, false)
	}
}

// FormatASTPretty prints the file as an indented tree.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	if builder.Files.Get(fileID) == nil {
		return errors.Newf("file %d not found", fileID)
	}
	writeTree(w, buildFileTreeNode(builder, fileID, fs), "", true, true)
	return nil
}

type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
	Fields   map[string]any  `json:"fields,omitempty"`
}

func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	file := builder.Files.Get(fileID)
	if file == nil {
		return errors.Newf("file %d not found", fileID)
	}

	output := ASTNodeOutput{Type: "File", Span: file.Span}
	if file.Package != "" {
		output.Fields = map[string]any{"package": file.Package}
	}
	for _, item := range builder.FlagSets(fileID) {
		output.Children = append(output.Children, flagsJSON(builder, item))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func flagsJSON(builder *ast.Builder, item *ast.FlagsItem) ASTNodeOutput {
	node := ASTNodeOutput{
		Type: "Flags",
		Span: item.Span,
		Text: item.Name,
	}
	if len(item.Doc) > 0 {
		node.Fields = map[string]any{"doc": item.Doc}
	}
	for _, vid := range item.Variants {
		v := builder.Items.Variant(vid)
		if v == nil {
			continue
		}
		vn := ASTNodeOutput{Type: "Variant", Span: v.Span, Text: v.Name, Fields: map[string]any{}}
		if len(v.Doc) > 0 {
			vn.Fields["doc"] = v.Doc
		}
		switch v.Fields {
		case ast.FieldsTuple:
			vn.Fields["fields"] = "tuple"
		case ast.FieldsStruct:
			vn.Fields["fields"] = "struct"
		}
		if v.Value.IsValid() {
			vn.Children = append(vn.Children, exprJSON(builder, v.Value, 0))
		} else {
			vn.Fields["implicit"] = true
		}
		node.Children = append(node.Children, vn)
	}
	return node
}

func exprJSON(builder *ast.Builder, exprID ast.ExprID, depth int) ASTNodeOutput {
	expr := builder.Exprs.Get(exprID)
	if expr == nil {
		return ASTNodeOutput{Type: "Expr", Kind: "Nil"}
	}
	node := ASTNodeOutput{
		Type: "Expr",
		Kind: formatExprKind(expr.Kind),
		Span: expr.Span,
		Text: formatExprInline(builder, exprID),
	}
	if depth > maxExprDepth {
		return node
	}
	var kids []ast.ExprID
	switch expr.Kind {
	case ast.ExprBinary:
		if b, ok := builder.Exprs.Binary(exprID); ok {
			node.Fields = map[string]any{"op": b.Op.String()}
			kids = []ast.ExprID{b.Left, b.Right}
		}
	case ast.ExprUnary:
		if u, ok := builder.Exprs.Unary(exprID); ok {
			node.Fields = map[string]any{"op": u.Op.String()}
			kids = []ast.ExprID{u.Operand}
		}
	case ast.ExprGroup:
		if g, ok := builder.Exprs.Group(exprID); ok {
			kids = []ast.ExprID{g.Inner}
		}
	case ast.ExprCall:
		if c, ok := builder.Exprs.Call(exprID); ok {
			kids = append([]ast.ExprID{c.Target}, c.Args...)
		}
	case ast.ExprLit:
		if lit, ok := builder.Exprs.Literal(exprID); ok {
			node.Fields = map[string]any{"literal": lit.Kind.String()}
		}
	}
	for _, k := range kids {
		node.Children = append(node.Children, exprJSON(builder, k, depth+1))
	}
	return node
}
