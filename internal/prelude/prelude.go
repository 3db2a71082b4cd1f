// Package prelude loads the library procedures the evaluator's primitive
// set doesn't provide directly (map, filter, fold-left/right, append,
// reverse, length, ...), written in the dialect itself and evaluated
// against an interpreter's root environment at startup.
package prelude

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/golisp/internal/evaluator"
	"github.com/cwbudde/golisp/internal/reader"
	"github.com/cwbudde/golisp/internal/value"
)

//go:embed manifest.yaml prelude.golisp
var embedded embed.FS

// manifest lists, in load order, which source files make up the prelude.
type manifest struct {
	Files []string `yaml:"files"`
}

// Load reads manifest.yaml and evaluates every listed source file, in
// order, against interp's root environment. If extraDir is non-empty, it
// is checked first for each named file, so a user-supplied file of the
// same name in that directory takes precedence over the embedded copy.
func Load(interp *evaluator.Interpreter, extraDir string) error {
	raw, err := embedded.ReadFile("manifest.yaml")
	if err != nil {
		return fmt.Errorf("prelude: reading manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("prelude: parsing manifest: %w", err)
	}
	for _, name := range m.Files {
		src, err := loadSource(name, extraDir)
		if err != nil {
			return err
		}
		if err := evalSource(interp, name, src); err != nil {
			return err
		}
	}
	return nil
}

func loadSource(name, extraDir string) (string, error) {
	if extraDir != "" {
		if b, err := os.ReadFile(filepath.Join(extraDir, name)); err == nil {
			return string(b), nil
		}
	}
	b, err := embedded.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("prelude: %s: %w", name, err)
	}
	return string(b), nil
}

func evalSource(interp *evaluator.Interpreter, file, src string) error {
	r := reader.New(interp.Heap, src, file)
	for {
		form, err := r.Read()
		if err != nil {
			return fmt.Errorf("prelude: %s: %w", file, err)
		}
		if form == value.Eof {
			return nil
		}
		if _, err := interp.Eval(interp.Root, form); err != nil {
			return fmt.Errorf("prelude: %s: %w", file, err)
		}
	}
}
