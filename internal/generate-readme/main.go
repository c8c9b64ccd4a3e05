// Command generate-readme rebuilds the repository README from its template,
// filling in the built-in preset names and an index of the docs directory.
package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/typelate/docpatch/internal/ruleset"
)

//go:generate go run ./

var (
	//go:embed README.md.template
	templateSource string
	templates      = template.Must(template.New("README.md.template").Delims("{{{", "}}}").Parse(templateSource))
)

type docPage struct {
	Title string
	Path  string
}

func main() {
	var out bytes.Buffer
	if err := templates.Execute(&out, struct {
		Presets []string
		Docs    []docPage
	}{
		Presets: ruleset.Presets(),
		Docs:    docIndex(filepath.FromSlash("../../docs")),
	}); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.FromSlash("../../README.md"), out.Bytes(), 0o644); err != nil {
		log.Fatal(err)
	}
}

// docIndex lists the markdown pages under dir, titled by their first heading.
func docIndex(dir string) []docPage {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal(err)
	}
	var pages []docPage
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Fatal(err)
		}
		pages = append(pages, docPage{
			Title: pageTitle(string(buf), e.Name()),
			Path:  "./docs/" + e.Name(),
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages
}

func pageTitle(content, fallback string) string {
	for line := range strings.Lines(content) {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	fmt.Fprintf(os.Stderr, "no heading in %s\n", fallback)
	return fallback
}
