package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/roach88/animgraph/internal/compiler"
)

// loadDocument reads a graph document and maps failures to command errors.
func loadDocument(f *OutputFormatter, path string) (*compiler.Document, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, f.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("document not found: %s", path), nil)
	}
	doc, err := compiler.LoadFile(path)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeParse, "failed to load document", err)
	}
	return doc, nil
}

// compileDocument validates and compiles a loaded document. Validation
// errors are reported one per line.
func compileDocument(f *OutputFormatter, doc *compiler.Document) (*compiler.Program, error) {
	if errs := compiler.Validate(doc); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, f.fail(ExitFailure, errs[0].Code, "document is invalid", errors.New(strings.Join(msgs, "; ")))
	}
	prog, err := compiler.Compile(doc)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeCompile, "failed to compile document", err)
	}
	return prog, nil
}
