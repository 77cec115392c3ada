// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError   = "error.internal"
	KeyRateLimited     = "error.rate_limited"
	KeyRouteNotFound   = "error.route_not_found"
	KeyDatabaseError   = "error.database"
	KeyServiceHealthy  = "health.healthy"
	KeyServiceDegraded = "health.degraded"

	// Authentication
	KeyAuthRequired      = "auth.required"
	KeyAuthInvalidAPIKey = "auth.invalid_api_key"

	// Lessons
	KeyLessonCreated       = "lesson.created"
	KeyLessonNotFound      = "lesson.not_found"
	KeyLessonFetchFailed   = "lesson.fetch_failed"
	KeyLessonCreateFailed  = "lesson.create_failed"
	KeyLessonFieldsMissing = "lesson.fields_missing"
	KeyLessonPriceRange    = "lesson.price_range"

	// Payments
	KeyPaymentRequired         = "payment.required"
	KeyPaymentRecorded         = "payment.recorded"
	KeyPaymentAlreadyProcessed = "payment.already_processed"
	KeyPaymentFieldsMissing    = "payment.fields_missing"
	KeyPaymentAmountMismatch   = "payment.amount_mismatch"
	KeyPaymentInvalidSignature = "payment.invalid_signature"
	KeyPaymentInvalidPayer     = "payment.invalid_payer"
	KeyPaymentSaveFailed       = "payment.save_failed"
	KeyPaymentWalletRequired   = "payment.wallet_required"

	// Files
	KeyFileAccessDenied = "file.access_denied"
	KeyFileNotFound     = "file.not_found"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
