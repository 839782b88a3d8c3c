// Where: cli/internal/infra/render/renderer.go
// What: Core stack skeleton rendering from embedded templates.
// Why: Keep the non-function stack scaffolding in one reviewable asset.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/flintfn/flint/cli/assets"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
)

const coreStackTemplate = "templates/core-stack.json.tmpl"

var (
	coreOnce sync.Once
	coreTmpl *template.Template
	coreErr  error
)

// CoreStackData parameterizes the core stack skeleton.
type CoreStackData struct {
	Service           string
	Stage             string
	BucketName        string
	BlockPublicAccess bool
}

// CoreStack is the rendered skeleton: the resources and outputs present in
// every compiled stack before any function is added.
type CoreStack struct {
	Resources map[string]any `json:"Resources"`
	Outputs   map[string]any `json:"Outputs"`
}

// RenderCoreStack renders the embedded skeleton for the given service.
func RenderCoreStack(data CoreStackData) (CoreStack, error) {
	tmpl, err := loadCoreTemplate()
	if err != nil {
		return CoreStack{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return CoreStack{}, errcode.NewInternal(errcode.InternalTemplateRenderFailure,
			"render core stack: %v", err)
	}

	var out CoreStack
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		return CoreStack{}, errcode.NewInternal(errcode.InternalTemplateRenderFailure,
			"decode rendered core stack: %v", err)
	}
	return out, nil
}

func loadCoreTemplate() (*template.Template, error) {
	coreOnce.Do(func() {
		coreTmpl, coreErr = template.New("core-stack.json.tmpl").
			Funcs(sprig.TxtFuncMap()).
			ParseFS(assets.TemplateFS, coreStackTemplate)
	})
	if coreErr != nil {
		return nil, fmt.Errorf("load core stack template: %w", coreErr)
	}
	return coreTmpl, nil
}
