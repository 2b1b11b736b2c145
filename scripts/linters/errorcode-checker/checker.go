package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrorCodeInfo describes one errors.MustNewCode declaration
type ErrorCodeInfo struct {
	Name    string
	Code    string
	File    string
	Line    int
	Package string
	UsedIn  []string
}

func (i *ErrorCodeInfo) Used() bool { return len(i.UsedIn) > 0 }

// Violation is a forbidden pattern match
type Violation struct {
	File    string
	Line    int
	Pattern string
	Text    string
}

// ErrorCodeChecker collects error code declarations and their uses
type ErrorCodeChecker struct {
	fileSet      *token.FileSet
	errorCodes   map[string]*ErrorCodeInfo // keyed by package dir + "." + name
	files        []string
	excludePaths []string
	verbose      bool
}

// NewErrorCodeChecker creates a new ErrorCodeChecker
func NewErrorCodeChecker(verbose bool) *ErrorCodeChecker {
	return &ErrorCodeChecker{
		fileSet:    token.NewFileSet(),
		errorCodes: make(map[string]*ErrorCodeInfo),
		verbose:    verbose,
	}
}

func (c *ErrorCodeChecker) debug(format string, args ...interface{}) {
	if c.verbose {
		fmt.Printf(format, args...)
	}
}

func (c *ErrorCodeChecker) excluded(path string) bool {
	for _, excludePath := range c.excludePaths {
		if strings.Contains(filepath.ToSlash(path), excludePath) {
			return true
		}
	}
	return false
}

// ignoredDir follows the go tool: directories starting with "_" or "." are
// not part of the module.
func ignoredDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// CheckDirectory parses every Go file under dir. Declarations are collected
// first so uses in any file, including tests, count.
func (c *ErrorCodeChecker) CheckDirectory(dir string, excludePaths []string) error {
	c.excludePaths = excludePaths

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != dir && ignoredDir(info.Name()) {
			return filepath.SkipDir
		}
		if c.excluded(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		c.files = append(c.files, path)
		return nil
	})
	if err != nil {
		return err
	}

	parsed := make(map[string]*ast.File, len(c.files))
	for _, path := range c.files {
		file, err := parser.ParseFile(c.fileSet, path, nil, 0)
		if err != nil {
			return fmt.Errorf("failed to parse file %s: %w", path, err)
		}
		parsed[path] = file
		c.checkDeclarations(file, path)
	}
	for _, path := range c.files {
		c.checkUsage(parsed[path], path)
	}
	return nil
}

// checkDeclarations records package-level `X = errors.MustNewCode("a.b")`
func (c *ErrorCodeChecker) checkDeclarations(file *ast.File, path string) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					continue
				}
				code, ok := mustNewCodeArg(vs.Values[i])
				if !ok {
					continue
				}
				pos := c.fileSet.Position(name.Pos())
				info := &ErrorCodeInfo{
					Name:    name.Name,
					Code:    code,
					File:    path,
					Line:    pos.Line,
					Package: filepath.Dir(path),
				}
				c.errorCodes[info.Package+"."+info.Name] = info
				c.debug("DEBUG: declared %s = %q at %s:%d\n", info.Name, code, path, pos.Line)
			}
		}
	}
}

func mustNewCodeArg(expr ast.Expr) (string, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "MustNewCode" {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	code, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return code, true
}

// checkUsage marks codes referenced by identifier (same package) or by
// selector (pkg.Name) anywhere outside their own declaration.
func (c *ErrorCodeChecker) checkUsage(file *ast.File, path string) {
	dir := filepath.Dir(path)
	ast.Inspect(file, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.SelectorExpr:
			for _, info := range c.errorCodes {
				if info.Name == x.Sel.Name && info.Package != dir {
					c.markUsed(info, path, x.Pos())
				}
			}
			return false
		case *ast.Ident:
			if info, ok := c.errorCodes[dir+"."+x.Name]; ok {
				pos := c.fileSet.Position(x.Pos())
				if !(pos.Filename == info.File && pos.Line == info.Line) {
					c.markUsed(info, path, x.Pos())
				}
			}
		}
		return true
	})
}

func (c *ErrorCodeChecker) markUsed(info *ErrorCodeInfo, path string, p token.Pos) {
	pos := c.fileSet.Position(p)
	info.UsedIn = append(info.UsedIn, fmt.Sprintf("%s:%d", path, pos.Line))
}

// Unused returns declared codes nothing references, sorted by code
func (c *ErrorCodeChecker) Unused() []*ErrorCodeInfo {
	var out []*ErrorCodeInfo
	for _, info := range c.errorCodes {
		if !info.Used() {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Duplicates returns code strings declared more than once
func (c *ErrorCodeChecker) Duplicates() map[string][]*ErrorCodeInfo {
	byCode := make(map[string][]*ErrorCodeInfo)
	for _, info := range c.errorCodes {
		byCode[info.Code] = append(byCode[info.Code], info)
	}
	for code, infos := range byCode {
		if len(infos) < 2 {
			delete(byCode, code)
		}
	}
	return byCode
}

// CheckForbiddenPatterns scans non-test sources for patterns that bypass the
// coded error package.
func (c *ErrorCodeChecker) CheckForbiddenPatterns(patterns []string) ([]Violation, error) {
	var violations []Violation
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, path := range c.files {
			if strings.HasSuffix(path, "_test.go") {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			for i, line := range strings.Split(string(data), "\n") {
				if re.MatchString(line) {
					violations = append(violations, Violation{File: path, Line: i + 1, Pattern: pattern, Text: strings.TrimSpace(line)})
				}
			}
		}
	}
	return violations, nil
}

// Report renders the usage summary. The bool is true when every code is used.
func (c *ErrorCodeChecker) Report() (bool, []string) {
	names := make([]string, 0, len(c.errorCodes))
	for key := range c.errorCodes {
		names = append(names, key)
	}
	sort.Strings(names)

	lines := []string{fmt.Sprintf("Found %d error codes", len(names))}
	for _, key := range names {
		info := c.errorCodes[key]
		status := "used"
		if !info.Used() {
			status = "UNUSED"
		}
		lines = append(lines, fmt.Sprintf("  %-40s %-8s %s:%d", info.Code, status, info.File, info.Line))
	}
	return len(c.Unused()) == 0, lines
}
