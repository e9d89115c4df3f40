// internal/topics/topics_test.go
package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github-activity-service/internal/model"
)

func strPtr(s string) *string { return &s }

func TestInfer(t *testing.T) {
	t.Run("infers tokens from name, description and language", func(t *testing.T) {
		repo := model.Repository{
			Name:        "my-react-portfolio",
			Description: strPtr("A node/express backend"),
			Language:    strPtr("TypeScript"),
		}

		got := Infer(repo)

		assert.ElementsMatch(t, []string{"react", "typescript", "nodejs", "portfolio", "fullstack"}, got)
	})

	t.Run("fullstack requires react and a backend token", func(t *testing.T) {
		repo := model.Repository{
			Name:        "dashboard",
			Description: strPtr("react frontend with mongodb storage"),
		}

		got := Infer(repo)

		assert.Contains(t, got, "react")
		assert.Contains(t, got, "mongodb")
		assert.Contains(t, got, "fullstack")
	})

	t.Run("no fullstack without react", func(t *testing.T) {
		repo := model.Repository{
			Name:        "api-server",
			Description: strPtr("mongoose models"),
		}

		got := Infer(repo)

		assert.NotContains(t, got, "fullstack")
	})

	t.Run("declared topics are preserved in order", func(t *testing.T) {
		repo := model.Repository{
			Name:   "plain",
			Topics: []string{"cli", "tooling"},
		}

		got := Infer(repo)

		assert.Equal(t, []string{"cli", "tooling"}, got[:2])
	})

	t.Run("idempotent on an already enriched list", func(t *testing.T) {
		repo := model.Repository{
			Name:        "my-react-portfolio",
			Description: strPtr("A node/express backend"),
			Language:    strPtr("TypeScript"),
		}

		once := Infer(repo)
		repo.Topics = once
		twice := Infer(repo)

		assert.Equal(t, once, twice)
	})

	t.Run("nil description and language are tolerated", func(t *testing.T) {
		got := Infer(model.Repository{Name: "bare"})
		assert.Empty(t, got)
	})
}
