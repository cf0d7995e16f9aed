// Package render turns embedded templates into config file content for the
// target host.
package render

import (
	"bytes"
	"fmt"
	"path"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/groundworkhq/provision/assets"
)

// File renders the named template from the embedded template set. Names are
// relative to the templates directory, e.g. "vhost.conf.tmpl".
func File(name string, data any) (string, error) {
	raw, err := assets.Templates.ReadFile(path.Join("templates", name))
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}
