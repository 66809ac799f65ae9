package stubs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrNoStubSuffix is returned when a path has no .c/.cpp part to rewrite,
// so the stub would overwrite the source itself.
var ErrNoStubSuffix = errors.New("path has no .c or .cpp suffix")

// Every occurrence is rewritten, not only the trailing extension:
// "src.core/a.cpp" becomes "src.pyiore/a.pyi" and "a.cc" becomes "a.pyic".
var sourceSuffix = regexp.MustCompile(`\.c(pp)?`)

// StubPath derives the .pyi path for a C/C++ source path
func StubPath(path string) string {
	return sourceSuffix.ReplaceAllString(path, ".pyi")
}

// ContentHash returns the hex SHA-256 of data
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GenerateFile writes the stub for the source at path next to it
func GenerateFile(path string) (*Result, error) {
	return NewEmitter(Options{}).GenerateFile(path)
}

// EmitFile reads path and renders its stub without writing anything.
// Read errors are returned unchanged.
func (e *Emitter) EmitFile(path string) (*Result, error) {
	stubPath := StubPath(path)
	if stubPath == path {
		return nil, fmt.Errorf("%w: %s", ErrNoStubSuffix, path)
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := e.Emit(string(code))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Source = path
	res.StubPath = stubPath
	res.ContentHash = ContentHash(code)
	return res, nil
}

// GenerateFile renders the stub for path and writes it to StubPath(path)
func (e *Emitter) GenerateFile(path string) (*Result, error) {
	res, err := e.EmitFile(path)
	if err != nil {
		return nil, err
	}
	if err := WriteStub(res); err != nil {
		return nil, err
	}
	return res, nil
}

// WriteStub writes res.Stub to res.StubPath in one call
func WriteStub(res *Result) error {
	return os.WriteFile(res.StubPath, []byte(res.Stub), 0644)
}
