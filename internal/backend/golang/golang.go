// Package golang runs Go doctest examples in-process with the yaegi
// interpreter.
//
// Examples use ">>>" and "..." prompts and // comments:
//
//	>>> import "strings"
//	>>> strings.ToUpper("go")
//	"GO"
//
// All examples of a DocTest share one interpreter, so declarations carry
// over from one example to the next. When an example is a single expression
// its value is echoed in Go syntax, unless it is a call to a print
// function. The DocTest's globs are importable as package "globs".
package golang

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"io"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

// GlobsImportPath is the import path under which a DocTest's globs are
// exposed to its examples.
const GlobsImportPath = "globs"

// Fault prefixes. Expected output starting with one of these expects the
// example to fault.
const (
	PanicPrefix = "panic:"
	ErrorPrefix = "error:"
)

// Backend is the Go language backend.
type Backend struct {
	findComments func(string) []string
}

// New creates the Go backend.
func New() *Backend {
	return &Backend{findComments: backend.CommentFinder("go", "//")}
}

func (b *Backend) Name() string { return "go" }

func (b *Backend) Prompts() (string, string) { return ">>>", "..." }

func (b *Backend) CommentPrefix() string { return "//" }

func (b *Backend) FindComments(source string) []string { return b.findComments(source) }

// Available is always true; the interpreter is linked in.
func (b *Backend) Available() bool { return true }

// NewExecutor creates an interpreter-backed executor for test.
func (b *Backend) NewExecutor(test *models.DocTest) (backend.Executor, error) {
	return &Executor{test: test}, nil
}

// Executor evaluates the examples of one DocTest in a shared interpreter.
type Executor struct {
	test   *models.DocTest
	interp *interp.Interpreter
	stdout bytes.Buffer
}

// Enter creates the interpreter and exposes the DocTest's globs.
func (e *Executor) Enter(_ context.Context) error {
	i := interp.New(interp.Options{Stdout: &e.stdout, Stderr: io.Discard})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("failed to load stdlib symbols: %w", err)
	}

	if len(e.test.Globs) > 0 {
		symbols := make(map[string]reflect.Value, len(e.test.Globs))
		for name, value := range e.test.Globs {
			rv := reflect.ValueOf(value)
			if !rv.IsValid() {
				continue
			}
			// Exported variables must be addressable.
			ptr := reflect.New(rv.Type())
			ptr.Elem().Set(rv)
			symbols[name] = ptr.Elem()
		}
		exports := interp.Exports{GlobsImportPath + "/" + GlobsImportPath: symbols}
		if err := i.Use(exports); err != nil {
			return fmt.Errorf("failed to export globs: %w", err)
		}
	}

	e.interp = i
	return nil
}

// Execute evaluates example index. Faults raised by the example are part of
// the Result; only a cancelled context is returned as an error.
func (e *Executor) Execute(ctx context.Context, index int) (backend.Result, error) {
	if e.interp == nil {
		return nil, errors.New("executor not entered")
	}
	if index < 0 || index >= len(e.test.Examples) {
		return nil, fmt.Errorf("example index %d out of range [0, %d)", index, len(e.test.Examples))
	}
	source := e.test.Examples[index].Source

	e.stdout.Reset()
	value, err := e.interp.EvalWithContext(ctx, source)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	res := &Result{}
	if err != nil {
		res.fault = describeFault(err)
	} else if echoes(source) && value.IsValid() && value.CanInterface() {
		if value.Kind() != reflect.Func {
			fmt.Fprintf(&e.stdout, "%#v\n", value.Interface())
		}
	}

	res.output = e.stdout.String()
	if res.output != "" && !strings.HasSuffix(res.output, "\n") {
		res.output += "\n"
	}
	return res, nil
}

// Exit drops the interpreter.
func (e *Executor) Exit() error {
	e.interp = nil
	e.stdout.Reset()
	return nil
}

// describeFault renders an evaluation failure as "panic: ..." or
// "error: ...".
func describeFault(err error) string {
	var p interp.Panic
	if errors.As(err, &p) {
		return fmt.Sprintf("%s %v\n", PanicPrefix, p.Value)
	}
	return fmt.Sprintf("%s %v\n", ErrorPrefix, err)
}

// echoes reports whether source is a single expression whose value should
// be printed.
func echoes(source string) bool {
	expr, err := goparser.ParseExpr(strings.TrimSpace(source))
	if err != nil {
		return false
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return true
	}
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name != "print" && fn.Name != "println"
	case *ast.SelectorExpr:
		pkg, ok := fn.X.(*ast.Ident)
		if ok && pkg.Name == "fmt" && (strings.HasPrefix(fn.Sel.Name, "Print") || strings.HasPrefix(fn.Sel.Name, "Fprint")) {
			return false
		}
	}
	return true
}

// Result is the outcome of one Go example.
type Result struct {
	output string
	fault  string
}

// Check compares output, or the fault when the example expects one.
func (r *Result) Check(example *models.Example, check backend.CheckFunc, optionflags flags.Flag) models.Outcome {
	if r.fault == "" {
		return backend.Output{Stdout: r.output}.Check(example, check, optionflags)
	}
	if !expectsFault(example.Want) {
		return models.Boom
	}

	want, got := example.Want, r.fault
	if optionflags.Has(flags.IgnoreExceptionDetail) {
		want, got = faultKind(want), faultKind(got)
	}
	if check(want, got, optionflags) {
		return models.Success
	}
	return models.Failure
}

// String returns the output, followed by the fault if there was one.
func (r *Result) String() string {
	return r.output + r.fault
}

// Fault returns the fault description, or "".
func (r *Result) Fault() string {
	return r.fault
}

func expectsFault(want string) bool {
	return strings.HasPrefix(want, PanicPrefix) || strings.HasPrefix(want, ErrorPrefix)
}

// faultKind keeps only the text before the first colon.
func faultKind(msg string) string {
	if idx := strings.Index(msg, ":"); idx >= 0 {
		return msg[:idx] + "\n"
	}
	return msg
}
