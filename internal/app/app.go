// Where: cli/internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/flintfn/flint/cli/internal/usecase/deploy"
	"github.com/flintfn/flint/cli/internal/version"
)

// Dependencies holds all injected dependencies required for CLI command
// execution. It enables swapping provider clients for fakes in tests.
type Dependencies struct {
	// WorkDir is the service root containing the configuration file.
	WorkDir string
	Out     io.Writer
	Deploy  DeployDeps
}

// DeployDeps constructs the provider-facing ports used by deploy commands.
type DeployDeps struct {
	NewFunctionAPI      func(ctx context.Context, region string) (deploy.FunctionAPI, error)
	NewUploader         func(ctx context.Context, region string) (deploy.ArtifactUploader, error)
	IsNotFound          func(error) bool
	IsTransientConflict func(error) bool
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	Config  string `short:"c" default:"flint.yml" help:"Path to service configuration"`
	EnvFile string `name:"env-file" help:"Path to .env file"`

	Package PackageCmd `cmd:"" help:"Compile the template and package artifacts"`
	Print   PrintCmd   `cmd:"" help:"Compile and print the template"`
	Deploy  DeployCmd  `cmd:"" help:"Reconcile deployed functions against local state"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// PackageCmd compiles the template and writes artifacts under .flint/.
type PackageCmd struct {
	Stage  string `help:"Override the provider stage"`
	Region string `help:"Override the provider region"`
}

// PrintCmd compiles the template and prints it.
type PrintCmd struct {
	Format string `default:"json" enum:"json,yaml" help:"Output format"`
	Stage  string `help:"Override the provider stage"`
	Region string `help:"Override the provider region"`
}

// DeployCmd reconciles one function, or every packaged function when no
// selector is given.
type DeployCmd struct {
	Function string `arg:"" optional:"" help:"Function to deploy (default: all)"`
	Force    bool   `help:"Update code even when the artifact hash matches"`
	Stage    string `help:"Override the provider stage"`
	Region   string `help:"Override the provider region"`
}

type VersionCmd struct{}

// Run parses arguments and dispatches to the matching command handler.
// Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.WorkDir == "" {
		deps.WorkDir = "."
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("flint"),
		kong.Description("Serverless template compiler and deployment CLI"),
		kong.Exit(func(int) {}),
		kong.Writers(out, out),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	loadEnvFile(deps.WorkDir, cli.EnvFile, out)

	command := ctx.Command()
	switch {
	case command == "package":
		return runPackage(cli, deps, out)
	case command == "print":
		return runPrint(cli, deps, out)
	case command == "version":
		fmt.Fprintf(out, "flint version %s\n", version.GetVersion())
		return 0
	case strings.HasPrefix(command, "deploy"):
		return runDeploy(cli, deps, out)
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

// loadEnvFile loads the named env file, or a .env in the service root when
// none is given. Relative paths resolve against the service root, matching
// the configuration file. Missing files only warn; the configuration may not
// need them.
func loadEnvFile(workDir, envFile string, out io.Writer) {
	if envFile != "" {
		if !filepath.IsAbs(envFile) {
			envFile = filepath.Join(workDir, envFile)
		}
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", envFile, err)
		}
		return
	}
	local := filepath.Join(workDir, ".env")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Load(local); err != nil {
			fmt.Fprintf(out, "Warning: failed to load %s: %v\n", local, err)
		}
	}
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}
