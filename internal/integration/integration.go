// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

//go:embed *.sh
var scripts embed.FS

// Shells lists the shells an integration snippet exists for.
func Shells() []string {
	entries, err := scripts.ReadDir(".")
	if err != nil {
		return nil
	}

	shells := make([]string, 0, len(entries))
	for _, e := range entries {
		shells = append(shells, strings.TrimSuffix(e.Name(), ".sh"))
	}

	sort.Strings(shells)

	return shells
}

// Render renders the integration script for shell, pointing it at the
// running executable.
func Render(shell string) (string, error) {
	bin, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}

	return render(shell, filepath.ToSlash(bin))
}

func render(shell, bin string) (string, error) {
	source, err := scripts.ReadFile(shell + ".sh")
	if err != nil {
		return "", fmt.Errorf("unsupported shell %q: must be one of %v", shell, Shells())
	}

	tmpl, err := template.New(shell).Funcs(template.FuncMap{"quote": quote}).Parse(string(source))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Bin": bin,
	}); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// quote wraps s in double quotes for a POSIX-like shell.
func quote(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

	return `"` + replacer.Replace(s) + `"`
}
