// Package access holds the role-to-action authorization table consulted
// at the service boundary before mutating calls are dispatched.
package access

import "github.com/bdedica/tramite/pkg/models"

// Action labels the operations the policy gates.
type Action string

const (
	ActionManageTemplates   Action = "manage_templates"
	ActionManageStages      Action = "manage_stages"
	ActionManageFields      Action = "manage_fields"
	ActionStartProcess      Action = "start_process"
	ActionCompleteExecution Action = "complete_execution"
	ActionViewProcesses     Action = "view_processes"
)

// policy is the full (role, action) grant table. Anything not listed is
// denied.
var policy = map[models.Role]map[Action]bool{
	models.RoleCoordenador: {
		ActionManageTemplates:   true,
		ActionManageStages:      true,
		ActionManageFields:      true,
		ActionStartProcess:      true,
		ActionCompleteExecution: true,
		ActionViewProcesses:     true,
	},
	models.RoleOrientador: {
		ActionCompleteExecution: true,
		ActionViewProcesses:     true,
	},
	models.RoleJIJ: {
		ActionCompleteExecution: true,
		ActionViewProcesses:     true,
	},
}

// IsAuthorized reports whether the role may perform the action.
func IsAuthorized(role models.Role, action Action) bool {
	return policy[role][action]
}
