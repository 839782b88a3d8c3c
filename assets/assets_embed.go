// Where: cli/assets/assets_embed.go
// What: Embedded service schema and core stack template.
// Why: Ship validation and skeleton assets inside the binary.
package assets

import "embed"

// SchemaFS carries the JSON Schema the service configuration is validated
// against before compilation.
//
//go:embed schema/*.json
var SchemaFS embed.FS

// TemplateFS carries the core stack skeleton rendered at the start of every
// compilation pass.
//
//go:embed templates/*.tmpl
var TemplateFS embed.FS
