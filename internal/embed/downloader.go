package embed

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// embedBinaryName is the generic (non-platform-suffixed) executable
// name cortex-embed is installed and looked up under.
const embedBinaryName = "cortex-embed"

// embedBinaryEnvVar lets an operator point straight at an already
// built cortex-embed binary, bypassing PATH lookup and the build
// fallback entirely.
const embedBinaryEnvVar = "CORTEX_EMBED_BINARY"

// embedModulePath is the module-qualified import path for the
// in-tree embedding server, used both as the `go build` target and
// in the error text pointing an operator at `go install`.
const embedModulePath = "github.com/kraklabs/codeintel/cmd/cortex-embed"

// Builder compiles the cortex-embed subcommand to outputPath. Exists
// as an interface so tests can substitute a no-op build without
// shelling out to the real go toolchain.
type Builder interface {
	Build(outputPath string) error
}

// GoBuilder invokes `go build` against the module's own
// cmd/cortex-embed package, the same binary `cmd/cortex-embed/main.go`
// implements in-process.
type GoBuilder struct{}

// NewGoBuilder creates a Builder backed by the local go toolchain.
func NewGoBuilder() Builder {
	return &GoBuilder{}
}

func (b *GoBuilder) Build(outputPath string) error {
	goBin, err := exec.LookPath("go")
	if err != nil {
		return fmt.Errorf("go toolchain not found on PATH: %w", err)
	}
	cmd := exec.Command(goBin, "build", "-o", outputPath, embedModulePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build %s: %w", embedModulePath, err)
	}
	return nil
}

// EnsureBinaryInstalled resolves a path to a runnable cortex-embed
// binary, in order: an explicit CORTEX_EMBED_BINARY override, a PATH
// lookup (covers `go install`, a container COPY, or a package
// manager), the cached install under ~/.cortex/bin from a previous
// resolution, and finally a `go build` of this module's own
// cmd/cortex-embed package. If builder is nil, uses GoBuilder.
//
// Unlike an external release artifact, the binary this resolves to
// is always the module's own hashing-based embedder — there is no
// network fetch involved.
func EnsureBinaryInstalled(builder Builder) (string, error) {
	if override := os.Getenv(embedBinaryEnvVar); override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%s=%s does not exist: %w", embedBinaryEnvVar, override, err)
		}
		return override, nil
	}

	if found, err := exec.LookPath(embedBinaryName); err == nil {
		return found, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	binDir := filepath.Join(homeDir, ".cortex", "bin")
	binaryPath := filepath.Join(binDir, embedBinaryName)
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); err == nil {
		return binaryPath, nil
	}

	if builder == nil {
		builder = NewGoBuilder()
	}

	if err := os.MkdirAll(binDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create install directory: %w", err)
	}

	if err := builder.Build(binaryPath); err != nil {
		return "", fmt.Errorf(
			"cortex-embed binary not found and could not be built: %w\n\n"+
				"Install it with:\n  go install %s@latest\n"+
				"or point at an existing binary with %s=/path/to/cortex-embed",
			err, embedModulePath, embedBinaryEnvVar)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(binaryPath, 0755); err != nil {
			return "", fmt.Errorf("failed to make binary executable: %w", err)
		}
	}

	return binaryPath, nil
}
