package i18n

func init() {
	RegisterCatalog("en-US", NewCatalog("en-US", map[Code]string{
		"UNKNOWN":         "an unexpected error occurred",
		"UNAUTHENTICATED": "sign in to continue",

		"WORKSPACE_NOT_MEMBER":     "you are not a member of this workspace",
		"WORKSPACE_ADMIN_REQUIRED": "only a workspace administrator can do this",
		"INVITE_CODE_INVALID":      "invalid invite code",
		"ALREADY_MEMBER":           "you are already a member of this workspace",
		"LAST_ADMIN":               "cannot demote the only administrator",
		"LAST_MEMBER":              "cannot remove the only member of the workspace",
		"MEMBER_INVALID_ROLE":      "unknown member role {{.Role}}",

		"WORKSPACE_NAME_EMPTY": "workspace name is required",
		"PROJECT_NAME_EMPTY":   "project name is required",

		"TASK_NAME_EMPTY":       "task name is required",
		"TASK_INVALID_STATUS":   "unknown task status {{.Status}}",
		"TASK_INVALID_POSITION": "task position is out of range",
		"TASK_INVALID_DUE_DATE": "due date must be an RFC 3339 timestamp",
		"INVALID_ASSIGNEE":      "user {{.UserID}} is not a member of workspace {{.WorkspaceID}}",
		"CROSS_WORKSPACE_MOVE":  "cannot move a task into a project from another workspace",
		"REORDER_EMPTY":         "reorder batch must contain at least one item",

		"FILTER_INVALID":     "invalid filter expression",
		"PAGE_TOKEN_INVALID": "invalid page token",

		"NOT_FOUND":     "the requested resource was not found",
		"STORE_FAILURE": "storage is temporarily unavailable",
	}))
}
