package services

import (
	"testing"

	"github.com/Dosada05/competition-system/models"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		role models.UserRole
		want bool
	}{
		{"admin manages competitions", OpCompetitionManage, models.RoleAdmin, true},
		{"user cannot manage competitions", OpCompetitionManage, models.RoleUser, false},
		{"admin views dashboard", OpDashboardView, models.RoleAdmin, true},
		{"user cannot view dashboard", OpDashboardView, models.RoleUser, false},
		{"unknown operation denied", Operation("unknown:op"), models.RoleAdmin, false},
		{"empty role denied", OpCompetitionManage, models.UserRole(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.op, tt.role))
		})
	}
}
