package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// The frontend maps these codes to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong username/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed/forged token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token blacklisted after logout
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // duplicate username
	AuthEmailExists        = "AUTH_EMAIL_EXISTS"        // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"     // no access to resource
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED" // not a conversation party
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"    // owner-only operation

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Businesses (BUSINESS_) ====================
	BusinessNotFound     = "BUSINESS_NOT_FOUND"
	BusinessSlugExists   = "BUSINESS_SLUG_EXISTS"
	BusinessNotApproved  = "BUSINESS_NOT_APPROVED"
	CategoryNotFound     = "CATEGORY_NOT_FOUND"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS" // one review per (business,user)

	// ==================== Chat (CHAT_) ====================
	ChatConversationNotFound = "CHAT_CONVERSATION_NOT_FOUND"
	ChatAccessDenied         = "CHAT_ACCESS_DENIED"    // neither party of the conversation
	ChatOwnBusinessForbidden = "CHAT_OWN_BUSINESS"     // owner cannot chat with own business
	ChatInvalidAttachment    = "CHAT_INVALID_ATTACHMENT"
	ChatAttachmentTooLarge   = "CHAT_ATTACHMENT_TOO_LARGE"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
