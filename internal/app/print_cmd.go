// Where: cli/internal/app/print_cmd.go
// What: print command handler.
// Why: Inspect the compiled template without writing artifacts.
package app

import (
	"fmt"
	"io"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/compile"
)

func runPrint(cli CLI, deps Dependencies, out io.Writer) int {
	service, err := loadService(deps, cli.Config, cli.Print.Stage, cli.Print.Region)
	if err != nil {
		return exitWithError(out, err)
	}

	graph, err := compile.Compile(service, compile.Options{})
	if err != nil {
		return exitWithError(out, err)
	}

	description := compile.TemplateDescription(service)
	var document []byte
	switch cli.Print.Format {
	case "yaml":
		document, err = cfn.MarshalTemplateYAML(graph, description)
	default:
		document, err = cfn.MarshalTemplate(graph, description)
	}
	if err != nil {
		return exitWithError(out, err)
	}

	fmt.Fprintln(out, string(document))
	return 0
}
