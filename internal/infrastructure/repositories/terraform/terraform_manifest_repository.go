package terraform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/repositories"
)

const ecosystemName = "terraform"

var refPattern = regexp.MustCompile(`[?&]ref=([^&\s"]+)`)

//nolint:gochecknoglobals // static HCL schemas
var (
	rootSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
			{Type: "terraform"},
		},
	}
	terraformSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: "required_providers"}},
	}
)

// ManifestRepository reads module and provider requirements of Terraform files.
type ManifestRepository struct{}

var _ repositories.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new Terraform reader.
func NewManifestRepository() *ManifestRepository {
	return &ManifestRepository{}
}

func (it *ManifestRepository) Name() string { return ecosystemName }

func (it *ManifestRepository) Files() []string {
	return []string{"main.tf", "versions.tf"}
}

// Parse returns "module.<source>" entries for module blocks and
// "provider.<source>" entries for required_providers.
func (it *ManifestRepository) Parse(path, content string) ([]entities.Dependency, error) {
	file, diags := hclparse.NewParser().ParseHCL([]byte(content), path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %s", path, diags.Error())
	}

	body, _, diags := file.Body.PartialContent(rootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read %s: %s", path, diags.Error())
	}

	var deps []entities.Dependency
	for _, block := range body.Blocks {
		switch block.Type {
		case "module":
			if dep, ok := moduleDependency(block, path); ok {
				deps = append(deps, dep)
			}
		case "terraform":
			deps = append(deps, providerDependencies(block, path)...)
		}
	}
	return deps, nil
}

func moduleDependency(block *hcl.Block, path string) (entities.Dependency, bool) {
	attrs, _ := block.Body.JustAttributes()
	source, ok := stringAttribute(attrs, "source")
	if !ok {
		return entities.Dependency{}, false
	}

	version, _ := stringAttribute(attrs, "version")
	if match := refPattern.FindStringSubmatch(source); match != nil {
		version = match[1]
		source = refPattern.ReplaceAllString(source, "")
	}
	return entities.Dependency{
		Name:      "module." + source,
		Version:   version,
		Ecosystem: ecosystemName,
		FilePath:  path,
	}, true
}

func providerDependencies(block *hcl.Block, path string) []entities.Dependency {
	content, _, diags := block.Body.PartialContent(terraformSchema)
	if diags.HasErrors() {
		return nil
	}

	var deps []entities.Dependency
	for _, providers := range content.Blocks {
		attrs, _ := providers.Body.JustAttributes()
		for name, attr := range attrs {
			value, valueDiags := attr.Expr.Value(&hcl.EvalContext{})
			if valueDiags.HasErrors() || !value.Type().IsObjectType() {
				continue
			}
			source := name
			if s := objectString(value, "source"); s != "" {
				source = s
			}
			deps = append(deps, entities.Dependency{
				Name:      "provider." + strings.ToLower(source),
				Version:   objectString(value, "version"),
				Ecosystem: ecosystemName,
				FilePath:  path,
			})
		}
	}
	return deps
}

func stringAttribute(attrs hcl.Attributes, name string) (string, bool) {
	attr, ok := attrs[name]
	if !ok {
		return "", false
	}
	value, diags := attr.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() || value.IsNull() || value.Type() != cty.String {
		return "", false
	}
	return value.AsString(), true
}

func objectString(value cty.Value, key string) string {
	if !value.Type().HasAttribute(key) {
		return ""
	}
	attr := value.GetAttr(key)
	if attr.IsNull() || attr.Type() != cty.String {
		return ""
	}
	return attr.AsString()
}
