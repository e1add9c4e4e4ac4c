package host

import (
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// GoProject is a Workspace project backed by Go source trees. Types are
// resolved by mapping a fully qualified name like
// "example.com/mod/pkg.Type" onto the package directory under the
// project's module root or one of its dependency roots, then reading the
// type's doc comment and method set from the parsed source.
type GoProject struct {
	name string
	// mappings pair a module path with the directory holding its source.
	// The first entry is the project itself; the rest are dependencies.
	mappings []ModuleMapping
}

// ModuleMapping maps a module path onto the directory containing its
// source tree.
type ModuleMapping struct {
	Module string
	Root   string
}

// NewGoProject creates a project named name rooted at the given module
// mapping, with zero or more dependency mappings.
func NewGoProject(name string, project ModuleMapping, deps ...ModuleMapping) *GoProject {
	return &GoProject{
		name:     name,
		mappings: append([]ModuleMapping{project}, deps...),
	}
}

// Name implements Project.
func (p *GoProject) Name() string {
	return p.name
}

// SourceRoots implements Project.
func (p *GoProject) SourceRoots() []string {
	return []string{p.mappings[0].Root}
}

// DependencyRoots implements Project.
func (p *GoProject) DependencyRoots() []string {
	roots := make([]string, 0, len(p.mappings)-1)
	for _, m := range p.mappings[1:] {
		roots = append(roots, m.Root)
	}
	return roots
}

// ResolveType implements Project. The name must be a fully qualified
// "pkg/path.TypeName"; anything that does not resolve inside the project's
// module mappings yields (nil, nil).
func (p *GoProject) ResolveType(name string) (*TypeInfo, error) {
	pkgPath, typeName, ok := splitTypeName(name)
	if !ok {
		return nil, nil
	}

	for _, m := range p.mappings {
		if pkgPath != m.Module && !strings.HasPrefix(pkgPath, m.Module+"/") {
			continue
		}
		dir := filepath.Join(m.Root, filepath.FromSlash(strings.TrimPrefix(pkgPath, m.Module)))
		info, err := resolveInDir(dir, pkgPath, typeName)
		if err != nil || info != nil {
			return info, err
		}
	}
	return nil, nil
}

// splitTypeName splits "pkg/path.Type" at the final dot of the last path
// segment.
func splitTypeName(name string) (pkgPath, typeName string, ok bool) {
	slash := strings.LastIndexByte(name, '/')
	dot := strings.LastIndexByte(name, '.')
	if dot == -1 || dot < slash || dot == len(name)-1 {
		return "", "", false
	}
	return name[:dot], name[dot+1:], true
}

// resolveInDir parses the package in dir and looks up the named type.
func resolveInDir(dir, pkgPath, typeName string) (*TypeInfo, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}

	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse package %s: %w", pkgPath, err)
	}

	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		docPkg := doc.New(pkg, pkgPath, 0)
		for _, t := range docPkg.Types {
			if t.Name != typeName {
				continue
			}
			info := &TypeInfo{
				Name: pkgPath + "." + typeName,
				Doc:  strings.TrimSpace(t.Doc),
			}
			for _, m := range t.Methods {
				if !ast.IsExported(m.Name) {
					continue
				}
				info.Methods = append(info.Methods, MethodInfo{
					Name: m.Name,
					Doc:  strings.TrimSpace(m.Doc),
				})
			}
			return info, nil
		}
	}
	return nil, nil
}
