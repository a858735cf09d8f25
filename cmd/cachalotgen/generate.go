// cachalotgen is the Sugar component from spec §4.9/§6: a source
// rewriter that turns a marked function declaration of shape
//
//	//cachalot:generate [options]
//	func F(k1 K1, ..., r R) <-chan V { body }
//
// into a public wrapper of the same signature that defines the original
// body as an unexported inner function, builds a cachalot.Config[V], and
// calls cachalot.Load. It plays the same "thin, single-purpose CLI built
// on the core library" role as the teacher's cmd/ subcommands
// (cmd/sneller, cmd/dump), just doing AST surgery instead of query
// execution.
//
// Go has no async fn/Stream of its own, so the surface contract this
// generator targets is the channel-based rendition cachalot.Producer
// already uses: a function taking (k1,...,kn, r R) and returning
// <-chan V. There is no ecosystem library in the example corpus for
// this kind of source rewriting; go/ast + go/parser + go/format are the
// natural, and only reasonable, stdlib tools for the job (see
// DESIGN.md).
package main

import (
	"fmt"
	"go/ast"
	"strings"
)

const directivePrefix = "cachalot:generate"

// candidate describes one function eligible for Sugar rewriting.
type candidate struct {
	decl     *ast.FuncDecl
	opts     sugarOptions
	fallible bool
}

// findCandidates scans file for functions carrying a //cachalot:generate
// doc comment and validates the rejected-input rules from spec §4.9:
// no receiver, not const/no-body (foreign ABI has no Go analogue, so the
// equivalent rejected shape is a function with a nil Body, i.e. an
// external declaration).
func findCandidates(file *ast.File) ([]candidate, error) {
	var out []candidate
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		directive, ok := findDirective(fn.Doc)
		if !ok {
			continue
		}
		if fn.Recv != nil {
			return nil, fmt.Errorf("cachalotgen: %s: Sugar cannot be applied to a method (has a receiver)", fn.Name.Name)
		}
		if fn.Body == nil {
			return nil, fmt.Errorf("cachalotgen: %s: Sugar requires a function body", fn.Name.Name)
		}
		opts, err := parseOptions(directive)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate{
			decl:     fn,
			opts:     opts,
			fallible: returnsFallibleStream(fn),
		})
	}
	return out, nil
}

func findDirective(doc *ast.CommentGroup) (string, bool) {
	for _, c := range doc.List {
		text := strings.TrimPrefix(c.Text, "//")
		text = strings.TrimSpace(text)
		if strings.HasPrefix(text, directivePrefix) {
			return text, true
		}
	}
	return "", false
}

// returnsFallibleStream distinguishes the two Sugar variants (spec §4.9):
// a function returning `<-chan cachalot.Outcome[V, E]` gets the fallible
// TryLoad wrapper; any other single `<-chan V` result gets the
// infallible Load wrapper.
func returnsFallibleStream(fn *ast.FuncDecl) bool {
	if fn.Type.Results == nil || len(fn.Type.Results.List) != 1 {
		return false
	}
	ch, ok := fn.Type.Results.List[0].Type.(*ast.ChanType)
	if !ok {
		return false
	}
	sel, ok := ch.Value.(*ast.IndexListExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.SelectorExpr)
	return ok && ident.Sel.Name == "Outcome"
}

// splitParams splits a function's parameter list into the leading key
// parameters and the trailing range parameter, per spec §4.9 step 1:
// "Defines the original body as an inner async function taking
// (k1,...,kn) as a tuple and r separately."
func splitParams(fn *ast.FuncDecl) (keys []*ast.Field, rangeParam *ast.Field, err error) {
	fields := fn.Type.Params.List
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("cachalotgen: %s: expected at least a trailing range parameter", fn.Name.Name)
	}
	last := fields[len(fields)-1]
	if len(last.Names) > 1 {
		// split a combined field group so the range parameter stands alone
		rangeName := last.Names[len(last.Names)-1]
		keyNames := last.Names[:len(last.Names)-1]
		keys = append(keys, fields[:len(fields)-1]...)
		keys = append(keys, &ast.Field{Names: keyNames, Type: last.Type})
		rangeParam = &ast.Field{Names: []*ast.Ident{rangeName}, Type: last.Type}
		return keys, rangeParam, nil
	}
	keys = fields[:len(fields)-1]
	rangeParam = last
	return keys, rangeParam, nil
}

func fieldName(f *ast.Field, i int) string {
	if len(f.Names) > i {
		return f.Names[i].Name
	}
	return fmt.Sprintf("arg%d", i)
}
