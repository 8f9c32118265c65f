// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Membership errors
	CodeWorkspaceNotMember     Code = "WORKSPACE_NOT_MEMBER"
	CodeWorkspaceAdminRequired Code = "WORKSPACE_ADMIN_REQUIRED"
	CodeInviteCodeInvalid      Code = "INVITE_CODE_INVALID"
	CodeAlreadyMember          Code = "ALREADY_MEMBER"
	CodeLastAdmin              Code = "LAST_ADMIN"
	CodeLastMember             Code = "LAST_MEMBER"
	CodeMemberInvalidRole      Code = "MEMBER_INVALID_ROLE"

	// Workspace errors
	CodeWorkspaceNameEmpty Code = "WORKSPACE_NAME_EMPTY"

	// Project errors
	CodeProjectNameEmpty Code = "PROJECT_NAME_EMPTY"

	// Task errors
	CodeTaskNameEmpty       Code = "TASK_NAME_EMPTY"
	CodeTaskInvalidStatus   Code = "TASK_INVALID_STATUS"
	CodeTaskInvalidPosition Code = "TASK_INVALID_POSITION"
	CodeTaskInvalidDueDate  Code = "TASK_INVALID_DUE_DATE"
	CodeInvalidAssignee     Code = "INVALID_ASSIGNEE"
	CodeCrossWorkspaceMove  Code = "CROSS_WORKSPACE_MOVE"
	CodeReorderEmpty        Code = "REORDER_EMPTY"

	// Query errors
	CodeFilterInvalid    Code = "FILTER_INVALID"
	CodePageTokenInvalid Code = "PAGE_TOKEN_INVALID"

	// Storage errors
	CodeNotFound     Code = "NOT_FOUND"
	CodeStoreFailure Code = "STORE_FAILURE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeWorkspaceNameEmpty,
		CodeProjectNameEmpty,
		CodeTaskNameEmpty,
		CodeTaskInvalidStatus,
		CodeTaskInvalidPosition,
		CodeTaskInvalidDueDate,
		CodeMemberInvalidRole,
		CodeInviteCodeInvalid,
		CodeInvalidAssignee,
		CodeCrossWorkspaceMove,
		CodeReorderEmpty,
		CodeFilterInvalid,
		CodePageTokenInvalid:
		return codes.InvalidArgument

	// Unauthenticated - no resolvable caller identity
	case CodeUnauthenticated:
		return codes.Unauthenticated

	// PermissionDenied - caller identity lacks rights in the workspace
	case CodeWorkspaceNotMember,
		CodeWorkspaceAdminRequired:
		return codes.PermissionDenied

	// FailedPrecondition - state doesn't allow the operation
	case CodeAlreadyMember,
		CodeLastAdmin,
		CodeLastMember:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
