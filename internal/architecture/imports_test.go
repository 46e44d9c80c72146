package architecture_test

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/mod/modfile"
)

// layerRules lists, per directory under internal/, the sibling directories it must not import.
var layerRules = []struct {
	dir       string
	forbidden []string
}{
	{"platform", []string{"domain", "data", "services", "http", "app", "clients", "observability"}},
	{"domain", []string{"platform", "data", "services", "http", "app", "clients", "observability"}},
	{"observability", []string{"domain", "data", "services", "http", "app", "clients"}},
	{"data", []string{"services", "http", "app", "clients"}},
	{"services", []string{"http", "app", "clients"}},
	{"http", []string{"data", "app"}},
}

// Only these trees may depend on concrete infrastructure clients.
var clientImporters = []string{"clients", "app", "http"}

type goFile struct {
	rel     string // relative to internal/, slash separated
	imports []string
}

func TestImportBoundaries(t *testing.T) {
	module, files := loadInternal(t)

	var bad []string
	for _, f := range files {
		for _, rule := range layerRules {
			if !inDir(f.rel, rule.dir) {
				continue
			}
			for _, imp := range f.imports {
				local, ok := strings.CutPrefix(imp, module+"/internal/")
				if !ok {
					continue
				}
				for _, dir := range rule.forbidden {
					if inDir(local+"/", dir) {
						bad = append(bad, fmt.Sprintf("%s imports %s (%s must not depend on %s)", f.rel, imp, rule.dir, dir))
					}
				}
			}
		}
	}
	report(t, "import boundary violations", bad)
}

func TestClientsOnlyImportedByWiring(t *testing.T) {
	module, files := loadInternal(t)

	var bad []string
	for _, f := range files {
		if anyDir(f.rel, clientImporters) {
			continue
		}
		for _, imp := range f.imports {
			if strings.HasPrefix(imp, module+"/internal/clients/") {
				bad = append(bad, fmt.Sprintf("%s imports %s", f.rel, imp))
			}
		}
	}
	report(t, "internal/clients imported outside app/http wiring", bad)
}

func inDir(rel, dir string) bool { return strings.HasPrefix(rel, dir+"/") }

func anyDir(rel string, dirs []string) bool {
	for _, d := range dirs {
		if inDir(rel, d) {
			return true
		}
	}
	return false
}

func report(t *testing.T, title string, lines []string) {
	t.Helper()
	if len(lines) > 0 {
		t.Fatalf("%s:\n- %s", title, strings.Join(lines, "\n- "))
	}
}

// loadInternal parses the import block of every .go file under internal/.
func loadInternal(t *testing.T) (string, []goFile) {
	t.Helper()
	root := moduleRoot(t)
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	module := modfile.ModulePath(data)
	if module == "" {
		t.Fatalf("go.mod has no module line")
	}

	internal := filepath.Join(root, "internal")
	fset := token.NewFileSet()
	var files []goFile
	err = filepath.WalkDir(internal, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return err
		}
		parsed, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(internal, path)
		f := goFile{rel: filepath.ToSlash(rel)}
		for _, spec := range parsed.Imports {
			if imp, err := strconv.Unquote(spec.Path.Value); err == nil {
				f.imports = append(f.imports, imp)
			}
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		t.Fatalf("walk internal/: %v", err)
	}
	return module, files
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}
