// Command depscheck fails the build when an engine package grows a
// dependency on a presentation or transport package. Surfaces depend on
// the engine, never the reverse.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// enginePrefixes name the packages that must stay surface-agnostic.
var enginePrefixes = []string{
	"merge-and-wander/server/internal/game",
	"merge-and-wander/server/internal/grid",
	"merge-and-wander/server/internal/movement",
	"merge-and-wander/server/internal/save",
	"merge-and-wander/server/internal/view",
	"merge-and-wander/server/internal/world",
}

// forbiddenPrefixes name the presentation and transport dependencies an
// engine package must not reach.
var forbiddenPrefixes = []string{
	"merge-and-wander/server/internal/net",
	"merge-and-wander/server/internal/term",
	"github.com/gorilla/websocket",
	"github.com/gdamore/tcell",
	"github.com/go-chi/chi",
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}

		if !enginePackage(pkg.ImportPath) {
			continue
		}
		for _, imp := range pkg.Imports {
			if forbiddenImport(imp) {
				violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

func enginePackage(path string) bool {
	for _, prefix := range enginePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func forbiddenImport(imp string) bool {
	for _, prefix := range forbiddenPrefixes {
		if strings.HasPrefix(imp, prefix) {
			return true
		}
	}
	return false
}
