package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: cachalotgen -in file.go -out file_gen.go\n")
		flag.PrintDefaults()
	}
	in := flag.String("in", "", "source file containing //cachalot:generate functions")
	out := flag.String("out", "", "output file (defaults to stdout)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*in, *out); err != nil {
		fmt.Fprintln(os.Stderr, "cachalotgen:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inPath, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	candidates, err := findCandidates(file)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no //cachalot:generate functions found in %s", inPath)
	}

	formatted, err := generateSource(fset, file.Name.Name, candidates)
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = os.Stdout.Write(formatted)
		return err
	}
	return os.WriteFile(outPath, formatted, 0o644)
}

// generateSource renders the wrapper functions for candidates into a
// single formatted Go source file in package pkgName.
func generateSource(fset *token.FileSet, pkgName string, candidates []candidate) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by cachalotgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkgName)
	buf.WriteString("import (\n\t\"context\"\n\n\t\"github.com/lanz-project/cachalot\"\n)\n\n")

	for _, c := range candidates {
		if err := emit(&buf, fset, c); err != nil {
			return nil, fmt.Errorf("%s: %w", c.decl.Name.Name, err)
		}
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// emit the unformatted source too, so a failure is debuggable
		return nil, fmt.Errorf("format generated source: %w\n--- unformatted ---\n%s", err, buf.String())
	}
	return formatted, nil
}

func emit(buf *bytes.Buffer, fset *token.FileSet, c candidate) error {
	fn := c.decl
	keys, rangeParam, err := splitParams(fn)
	if err != nil {
		return err
	}
	if rangeParam.Type == nil {
		return fmt.Errorf("range parameter has no type")
	}

	rangeName := fieldName(rangeParam, 0)
	var rangeType bytes.Buffer
	if err := printer.Fprint(&rangeType, fset, rangeParam.Type); err != nil {
		return err
	}

	valueType, err := resultValueType(fn, c.fallible)
	if err != nil {
		return err
	}

	keyNames, keyTypes := collectKeyFields(keys)
	single := len(keyNames) == 1
	keyTuple := keyTypes[0]
	keyArgs := keyNames[0]
	if !single {
		keyTuple = "struct{" + joinFieldDecls(keyNames, keyTypes) + "}"
		keyArgs = keyTuple + "{" + joinValues(keyNames) + "}"
	}

	fmt.Fprintf(buf, "func %s(%s) <-chan ", fn.Name.Name, joinParamList(keys, rangeName, rangeType.String()))
	if c.fallible {
		fmt.Fprintf(buf, "cachalot.Outcome[%s, error] {\n", valueType)
	} else {
		fmt.Fprintf(buf, "%s {\n", valueType)
	}

	// A single key field needs no wrapping: the inner closure takes it
	// by its own name and type directly, matching the bare value passed
	// to cachalot.Load/TryLoad below. Multiple key fields are passed as
	// an anonymous struct tuple named cachalotKey — deliberately distinct
	// from any user field name (which may itself be "key") — and
	// destructured back into the original names before the original
	// body runs.
	if single {
		fmt.Fprintf(buf, "\tinner := func(ctx context.Context, %s %s, %s %s) <-chan ", keyArgs, keyTuple, rangeName, rangeType.String())
	} else {
		fmt.Fprintf(buf, "\tinner := func(ctx context.Context, cachalotKey %s, %s %s) <-chan ", keyTuple, rangeName, rangeType.String())
	}
	if c.fallible {
		fmt.Fprintf(buf, "cachalot.Outcome[%s, error] {", valueType)
	} else {
		fmt.Fprintf(buf, "%s {", valueType)
	}
	if !single {
		for _, n := range keyNames {
			fmt.Fprintf(buf, "\n\t\t%s := cachalotKey.%s", n, n)
		}
	}
	buf.WriteString("\n\t\t")
	if err := printer.Fprint(buf, fset, fn.Body); err != nil {
		return err
	}
	buf.WriteString("\n\t}\n\n")

	fmt.Fprintf(buf, "\tcfg, err := cachalot.NewConfig[%s](%q, %d)\n", valueType, rootOrDefault(c.opts.root), c.opts.pageSize)
	buf.WriteString("\tif err != nil {\n\t\tpanic(err)\n\t}\n")

	if c.fallible {
		fmt.Fprintf(buf, "\treturn cachalot.TryLoad(context.Background(), %s, %s, cachalot.IdentityRange, inner, cfg)\n", keyArgs, rangeName)
	} else {
		fmt.Fprintf(buf, "\treturn cachalot.Load(context.Background(), %s, %s, cachalot.IdentityRange, inner, cfg)\n", keyArgs, rangeName)
	}
	buf.WriteString("}\n\n")
	return nil
}

func rootOrDefault(root string) string {
	if root == "" {
		return ".cachalot"
	}
	return root
}

func collectKeyFields(keys []*ast.Field) (names []string, types []string) {
	for _, f := range keys {
		var typeBuf bytes.Buffer
		printer.Fprint(&typeBuf, token.NewFileSet(), f.Type)
		if len(f.Names) == 0 {
			names = append(names, fmt.Sprintf("arg%d", len(names)))
			types = append(types, typeBuf.String())
			continue
		}
		for _, n := range f.Names {
			names = append(names, n.Name)
			types = append(types, typeBuf.String())
		}
	}
	return names, types
}

func joinFieldDecls(names, types []string) string {
	s := ""
	for i := range names {
		if i > 0 {
			s += "; "
		}
		s += names[i] + " " + types[i]
	}
	return s
}

func joinValues(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n
	}
	return s
}

func joinParamList(keys []*ast.Field, rangeName, rangeType string) string {
	names, types := collectKeyFields(keys)
	s := ""
	for i := range names {
		if i > 0 {
			s += ", "
		}
		s += names[i] + " " + types[i]
	}
	if s != "" {
		s += ", "
	}
	s += rangeName + " " + rangeType
	return s
}

func resultValueType(fn *ast.FuncDecl, fallible bool) (string, error) {
	ch, ok := fn.Type.Results.List[0].Type.(*ast.ChanType)
	if !ok {
		return "", fmt.Errorf("expected a single chan-typed result")
	}
	if !fallible {
		var b bytes.Buffer
		printer.Fprint(&b, token.NewFileSet(), ch.Value)
		return b.String(), nil
	}
	idx, ok := ch.Value.(*ast.IndexListExpr)
	if !ok || len(idx.Indices) < 1 {
		return "", fmt.Errorf("expected cachalot.Outcome[V, E] result")
	}
	var b bytes.Buffer
	printer.Fprint(&b, token.NewFileSet(), idx.Indices[0])
	return b.String(), nil
}
