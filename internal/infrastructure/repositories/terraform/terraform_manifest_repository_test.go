//go:build unit

package terraform_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/infrastructure/repositories/terraform"
)

func TestManifestRepositoryParse(t *testing.T) {
	t.Parallel()

	t.Run("should read module sources and required providers", func(t *testing.T) {
		t.Parallel()

		// given
		content := `
terraform {
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
  }
}

module "network" {
  source = "git::https://github.com/acme/terraform-network.git?ref=v2.1.0"
}

module "dns" {
  source  = "acme/dns/aws"
  version = "1.4.0"
}
`
		repo := terraform.NewManifestRepository()

		// when
		deps, err := repo.Parse("main.tf", content)

		// then
		require.NoError(t, err)
		sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
		require.Len(t, deps, 3)
		assert.Equal(t, entities.Dependency{
			Name: "module.acme/dns/aws", Version: "1.4.0", Ecosystem: "terraform", FilePath: "main.tf",
		}, deps[0])
		assert.Equal(t, "module.git::https://github.com/acme/terraform-network.git", deps[1].Name)
		assert.Equal(t, "v2.1.0", deps[1].Version)
		assert.Equal(t, "provider.hashicorp/aws", deps[2].Name)
		assert.Equal(t, "~> 5.0", deps[2].Version)
	})

	t.Run("should return an error for invalid HCL", func(t *testing.T) {
		t.Parallel()

		// given
		repo := terraform.NewManifestRepository()

		// when
		_, err := repo.Parse("main.tf", `module "x" {`)

		// then
		require.Error(t, err)
	})
}
