package services

import "github.com/Dosada05/competition-system/models"

// Operation — действие, требующее проверки роли. Проверки, зависящие
// от данных строки (лидер команды и т.п.), остаются в сервисах.
type Operation string

const (
	OpCompetitionManage Operation = "competition:manage"
	OpDashboardView     Operation = "dashboard:view"
)

var rolePermissions = map[Operation][]models.UserRole{
	OpCompetitionManage: {models.RoleAdmin},
	OpDashboardView:     {models.RoleAdmin},
}

// Authorize — чистая функция: разрешено ли роли выполнять операцию.
// Вызывается внутри сервисных операций, а не в маршрутизации.
func Authorize(op Operation, role models.UserRole) bool {
	for _, allowed := range rolePermissions[op] {
		if role == allowed {
			return true
		}
	}
	return false
}
