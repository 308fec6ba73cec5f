package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importRef struct {
	file string
	imp  string
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	internal := modulePath + "/internal/"

	type violation struct {
		importRef
		rule string
	}
	var violations []violation
	for _, ref := range internalImports(t, root, modulePath) {
		for _, bad := range disallowedImports(internal, layerFor(ref.file)) {
			if strings.HasPrefix(ref.imp, bad) {
				violations = append(violations, violation{importRef: ref, rule: bad})
				break
			}
		}
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

// Outbound clients are constructed in internal/app and reach the rest of the
// tree only through interfaces.
func TestClientsOnlyImportedByApp(t *testing.T) {
	root, modulePath := moduleRoot(t)
	clients := modulePath + "/internal/clients/"

	var violations []importRef
	for _, ref := range internalImports(t, root, modulePath) {
		if !strings.HasPrefix(ref.imp, clients) {
			continue
		}
		if strings.HasPrefix(ref.file, "internal/app/") || strings.HasPrefix(ref.file, "internal/clients/") {
			continue
		}
		violations = append(violations, ref)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("internal/clients imported outside internal/app:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q\n", v.file, v.imp)
		}
		t.Fatal(b.String())
	}
}

func layerFor(rel string) string {
	for _, layer := range []string{"platform", "domain", "modules", "data", "services", "http", "clients", "observability"} {
		if strings.HasPrefix(rel, "internal/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func disallowedImports(internal string, layer string) []string {
	var names []string
	switch layer {
	case "domain":
		names = []string{"platform", "modules", "data", "services", "http", "clients", "observability", "app"}
	case "platform":
		names = []string{"modules", "data", "services", "http", "clients", "observability", "app"}
	case "modules":
		names = []string{"data", "services", "http", "clients", "app"}
	case "data":
		names = []string{"modules", "services", "http", "clients", "app"}
	case "services":
		names = []string{"http", "clients", "app"}
	case "http":
		names = []string{"data", "clients", "app"}
	case "clients", "observability":
		names = []string{"modules", "data", "services", "http", "app"}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, internal+n+"/")
	}
	return out
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

// internalImports lists every module-internal import under internal/.
func internalImports(t *testing.T, root, modulePath string) []importRef {
	t.Helper()
	fset := token.NewFileSet()
	var out []importRef
	err := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "testdata":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil || !strings.HasPrefix(imp, modulePath+"/") {
				continue
			}
			out = append(out, importRef{file: filepath.ToSlash(rel), imp: imp})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}
	return out
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
