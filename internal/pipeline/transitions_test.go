package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agencydesk/internal/models"
)

func TestCanTransition(t *testing.T) {
	for _, from := range models.Stages {
		for _, to := range models.Stages {
			assert.Equal(t, from != to, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.True(t, CanTransition("", models.StageNew))
	assert.False(t, CanTransition(models.StageNew, "archived"))
	assert.False(t, CanTransition("archived", models.StageNew))
}
