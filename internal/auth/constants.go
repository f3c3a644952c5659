package auth

const (
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "user_email"
	ContextKeyUser   = "user"

	jsonKeyError = "error"

	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgMissingAuthorization    = "missing authorization token"
	msgInvalidOrExpiredToken   = "invalid or expired token"
	msgUserNotAuthenticated    = "user not authenticated"
	msgInvalidUserIDCtx        = "invalid user ID in context"
	msgUnauthorized            = "unauthorized"
	msgAccountDisabled         = "account disabled"
	msgInsufficientPermissions = "insufficient permissions"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgLookupFailed            = "failed to resolve user"

	descAnonymousAdminAttemptFmt = "Unauthenticated admin area access: %s %s"
	descUnknownAdminAttempt      = "Admin area access attempted by unknown account"
	descInactiveAdminAttempt     = "Admin area access attempted by inactive account"
	descNonAdminAttempt          = "Admin area access attempted without admin role"
	descAdminAccessFmt           = "Admin area access: %s %s"
	descLoginSucceeded           = "User logged in"
	descLoginFailed              = "Failed login attempt"
	descLogout                   = "User logged out"
)
