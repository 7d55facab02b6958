package models_test

import (
	"testing"

	"hrdesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range models.Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.Status("archived").Valid())
	assert.False(t, models.Status("").Valid())
}

func TestStatusResolvable(t *testing.T) {
	resolvable := map[models.Status]bool{
		models.StatusUnderReview:   true,
		models.StatusInvestigating: true,
		models.StatusEscalated:     true,
	}
	for _, s := range models.Statuses {
		assert.Equal(t, resolvable[s], s.Resolvable(), s)
	}
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, models.PriorityCritical.Valid())
	assert.True(t, models.PriorityLow.Valid())
	assert.False(t, models.Priority("blocker").Valid())
}

func TestResolutionMerge(t *testing.T) {
	r := &models.Resolution{}
	r.Merge(map[string]any{"summary": "warning issued", "action": "training"})
	r.Merge(map[string]any{"action": "suspension", "follow_up": true})

	assert.Equal(t, "warning issued", r.Data["summary"])
	assert.Equal(t, "suspension", r.Data["action"], "later keys win")
	assert.Equal(t, true, r.Data["follow_up"])
	assert.Len(t, r.Data, 3)
}

func TestEmployeeFullName(t *testing.T) {
	assert.Equal(t, "Iryna Shevchenko", (&models.Employee{FirstName: "Iryna", LastName: "Shevchenko"}).FullName())
	assert.Equal(t, "Iryna", (&models.Employee{FirstName: "Iryna"}).FullName())
	assert.Equal(t, "", (&models.Employee{}).FullName())
}
