package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo pairs a machine-readable code with a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a storage-level unique
// constraint rejection. Used as the backstop for the check-then-act
// sequences (one rating / one conversation per pair, slug probing):
// when two requests race, the second writer lands here.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	// pgx and sqlite do not surface pq.Error; fall back to message matching
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}

// ParseError converts storage and service errors into a code/message
// pair safe to return to clients. context hints which resource was
// being touched.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "خطای سرور رخ داد",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	if IsUniqueViolation(err) {
		return parseDuplicateKeyError(err.Error())
	}

	errStrLower := strings.ToLower(err.Error())

	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "داده‌های وابسته وجود دارد و این عملیات ممکن نیست",
		}
	}

	if strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "یکی از فیلدهای الزامی خالی است",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "اتصال به سرویس برقرار نشد. لطفاً بعداً دوباره تلاش کنید",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "خطای سرور رخ داد. لطفاً بعداً دوباره تلاش کنید",
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "slug") {
		return ErrorInfo{
			Code:    BusinessSlugExists,
			Message: "این شناسه قبلاً استفاده شده است",
		}
	}
	if strings.Contains(errLower, "username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "این نام کاربری قبلاً ثبت شده است",
		}
	}
	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailExists,
			Message: "این ایمیل قبلاً ثبت شده است",
		}
	}
	if strings.Contains(errLower, "rating") || strings.Contains(errLower, "idx_business_user_rating") {
		return ErrorInfo{
			Code:    ReviewAlreadyExists,
			Message: "شما قبلاً برای این کسب‌وکار نظر ثبت کرده‌اید",
		}
	}
	if strings.Contains(errLower, "conversation") || strings.Contains(errLower, "idx_business_user_conversation") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "گفتگو برای این کسب‌وکار از قبل وجود دارد",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "این داده قبلاً ثبت شده است",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "business") {
		return "کسب‌وکار یافت نشد"
	}
	if strings.Contains(contextLower, "category") {
		return "دسته‌بندی یافت نشد"
	}
	if strings.Contains(contextLower, "user") {
		return "کاربر یافت نشد"
	}
	if strings.Contains(contextLower, "review") || strings.Contains(contextLower, "rating") {
		return "نظر یافت نشد"
	}
	if strings.Contains(contextLower, "conversation") || strings.Contains(contextLower, "chat") {
		return "گفتگو یافت نشد"
	}

	return "داده مورد نظر یافت نشد"
}

// ParseAndRespond parses the error and writes the response in one step.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
