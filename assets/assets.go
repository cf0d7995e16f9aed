// Package assets holds the configuration templates rendered onto the target
// host.
package assets

import "embed"

//go:embed templates
var Templates embed.FS
