package audit

import "strings"

// Action is the kind of event an audit record describes. Values are
// persisted by name.
type Action string

const (
	ActionUserCreated          Action = "UserCreated"
	ActionUserUpdated          Action = "UserUpdated"
	ActionUserDeleted          Action = "UserDeleted"
	ActionUserActivated        Action = "UserActivated"
	ActionUserDeactivated      Action = "UserDeactivated"
	ActionPasswordChanged      Action = "PasswordChanged"
	ActionRoleAssigned         Action = "RoleAssigned"
	ActionRoleRemoved          Action = "RoleRemoved"
	ActionRoleCreated          Action = "RoleCreated"
	ActionRoleUpdated          Action = "RoleUpdated"
	ActionRoleDeleted          Action = "RoleDeleted"
	ActionLogin                Action = "Login"
	ActionLogout               Action = "Logout"
	ActionPermissionGranted    Action = "PermissionGranted"
	ActionPermissionRevoked    Action = "PermissionRevoked"
	ActionAdminActionPerformed Action = "AdminActionPerformed"

	ActionFileUploaded  Action = "FileUploaded"
	ActionFileDeleted   Action = "FileDeleted"
	ActionFileMoved     Action = "FileMoved"
	ActionFolderCreated Action = "FolderCreated"
	ActionFileShared    Action = "FileShared"
	ActionFilePurged    Action = "FilePurged"
)

var allActions = []Action{
	ActionUserCreated, ActionUserUpdated, ActionUserDeleted, ActionUserActivated,
	ActionUserDeactivated, ActionPasswordChanged, ActionRoleAssigned, ActionRoleRemoved,
	ActionRoleCreated, ActionRoleUpdated, ActionRoleDeleted, ActionLogin, ActionLogout,
	ActionPermissionGranted, ActionPermissionRevoked, ActionAdminActionPerformed,
	ActionFileUploaded, ActionFileDeleted, ActionFileMoved, ActionFolderCreated,
	ActionFileShared, ActionFilePurged,
}

// AdminActions are the kinds counted as administrative on the dashboard.
var AdminActions = []Action{
	ActionUserCreated,
	ActionUserUpdated,
	ActionUserDeactivated,
	ActionUserActivated,
	ActionRoleAssigned,
	ActionRoleRemoved,
}

// DailyAdminActions is the narrower set used for the per-day series.
var DailyAdminActions = []Action{
	ActionUserCreated,
	ActionUserUpdated,
	ActionRoleAssigned,
}

func AllActions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

// ParseAction accepts an action name case-insensitively.
func ParseAction(s string) (Action, bool) {
	for _, a := range allActions {
		if strings.EqualFold(string(a), s) {
			return a, true
		}
	}
	return "", false
}
