package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/calisthenics-backend/internal/pkg/apierr"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
)

// RespondAPIError writes err through the apierr taxonomy. Internal errors are
// logged and their message is replaced.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", errors.New("unknown error"))
	}
	msg := ae.Error()
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "path", c.FullPath(), "error", err)
		}
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: ae.Code, Fields: ae.Fields},
	})
}

// RespondBindError turns a gin binding failure into a 400 listing the
// offending fields.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apierr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apierr.FieldError{
				Field:   fieldPath(fe),
				Message: fieldMessage(fe),
			})
		}
		ae := apierr.Validation(fields)
		c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
			Error: APIError{Message: "validation failed", Code: ae.Code, Fields: ae.Fields},
		})
		return
	}
	RespondError(c, http.StatusBadRequest, "invalid_request", err)
	c.Abort()
}

// fieldPath drops the root struct name from the validator namespace and
// lower-cases the first letter of each segment.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}
