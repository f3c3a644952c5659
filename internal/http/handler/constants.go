package handler

const (
	paramID     = "id"
	paramLinkID = "link_id"
	paramUserID = "user_id"
	paramRole   = "role"

	queryPath       = "path"
	queryFrom       = "from"
	queryTo         = "to"
	queryUserID     = "user_id"
	queryAction     = "action"
	queryCount      = "count"
	queryDays       = "days"
	queryDaysToKeep = "days_to_keep"
	queryPageSize   = "page_size"
	queryPage       = "page"
	queryType       = "type"

	formFile           = "file"
	formPath           = "path"
	formTitle          = "title"
	formExpirationDate = "expiration_date"

	jsonKeyError   = "error"
	jsonKeyMessage = "message"
	jsonKeyStatus  = "status"
	jsonKeyAllowed = "allowed"
	jsonKeyRemoved = "removed"

	statusOK       = "ok"
	statusDegraded = "unavailable"

	dateLayout      = "2006-01-02"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	auditExportName = "audit-logs.xlsx"
)

const (
	msgContentTypeJSONRequired = "content type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidID               = "invalid id"
	msgInvalidUserID           = "invalid user id"
	msgInvalidLinkID           = "invalid link id"
	msgInvalidDate             = "invalid date, expected YYYY-MM-DD or RFC 3339"
	msgInvalidNumber           = "invalid numeric parameter"
	msgInvalidAction           = "unknown audit action"
	msgIDsRequired             = "at least one id is required"
	msgFileRequired            = "a file is required"
	msgFileTooLarge            = "file exceeds the maximum upload size"
	msgFileOpenFailed          = "failed to read uploaded file"
	msgAccessDenied            = "you do not have access to this item"
	msgLoggedOut               = "logged out"
	msgExportFailed            = "failed to export audit logs"
	msgInvalidUserType         = "user type must be client or admin"
	msgInvalidDaysToKeep       = "days_to_keep must be a positive number of days"
)

const (
	descFileUploaded   = "File uploaded: %s"
	descFileRegistered = "File registered: %s"
	descFolderCreated  = "Folder created: %s"
	descFileDeleted    = "Item deleted: %s"
	descFilesDeleted   = "Items deleted: %d"
	descFileMoved      = "Item moved: %s"
	descFilesMoved     = "Items moved to %s: %d"
	descFileShared     = "File shared: %s"
	descShareRevoked   = "Share revoked: %d"
	descLinkCreated    = "Shared link created: %s"
	descAuditCleanup   = "Audit logs older than %d days removed: %d"
	descPurgeRun       = "Manual purge removed %d items"

	descUserCreated     = "User created: %s (type: %s)"
	descUserUpdated     = "User updated: %s"
	descUserActivated   = "User activated: %s"
	descUserDeactivated = "User deactivated: %s"
	descRoleAssigned    = "Role '%s' assigned to user: %s"
	descRoleRemoved     = "Role '%s' removed from user: %s"
)
