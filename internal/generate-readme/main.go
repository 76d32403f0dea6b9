// Command generate-readme assembles the repository README from a template
// and the documentation index so the two never drift apart.
package main

import (
	"bytes"
	_ "embed"
	"log"
	"os"
	"path/filepath"
	"text/template"
)

//go:generate go run ./

//go:embed README.md.template
var templateSource string

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	templates, err := template.New("README.md.template").Delims("{{{", "}}}").Parse(templateSource)
	if err != nil {
		return err
	}
	var readme bytes.Buffer
	if err := templates.Execute(&readme, struct{}{}); err != nil {
		return err
	}

	docsIndex, err := os.ReadFile(filepath.FromSlash("../../docs/README.md"))
	if err != nil {
		return err
	}
	// The docs index drops one heading level under the project header, and
	// its repo-relative links gain the docs/ prefix.
	readme.WriteString("#")
	readme.Write(bytes.ReplaceAll(docsIndex, []byte("](./"), []byte("](./docs/")))

	return os.WriteFile(filepath.FromSlash("../../README.md"), readme.Bytes(), 0o644)
}
