package importgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver_RelativeImport(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"src/utils/helpers.ts", "src/main.ts"})
	got := r.Resolve("./utils/helpers", "src/main.ts")
	assert.Equal(t, "src/utils/helpers.ts", got)
}

func TestResolver_ParentRelativeImport(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"src/lib/format.ts", "src/components/Button.tsx"})
	got := r.Resolve("../lib/format", "src/components/Button.tsx")
	assert.Equal(t, "src/lib/format.ts", got)
}

func TestResolver_JSImportMapsToTS(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"src/foo.ts"})
	got := r.Resolve("./foo.js", "src/main.ts")
	assert.Equal(t, "src/foo.ts", got)
}

func TestResolver_PythonRelativeImport(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"pkg/sibling.py"})
	got := r.Resolve(".sibling", "pkg/main.py")
	assert.Equal(t, "pkg/sibling.py", got)
}

func TestResolver_SourcePrefixFallback(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"src/widgets/button.py"})
	got := r.Resolve("widgets.button", "app/main.py")
	assert.Equal(t, "src/widgets/button.py", got)
}

func TestResolver_Unresolvable(t *testing.T) {
	t.Parallel()

	r := NewResolver([]string{"src/main.ts"})
	assert.Equal(t, "", r.Resolve("some-external-package", "src/main.ts"))
}

func TestClassifyImportType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "static", ClassifyImportType("./utils"))
	assert.Equal(t, "dynamic", ClassifyImportType("import('./utils')"))
	assert.Equal(t, "dynamic", ClassifyImportType("dynamic-module"))
}
