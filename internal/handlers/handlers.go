package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError answers {"error": ...}. Unknown errors are logged and hidden behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	c.JSON(status, gin.H{"error": clientMessage(err)})
}

var sentinels = []error{
	apperrors.ErrValidation,
	apperrors.ErrUnauthorized,
	apperrors.ErrForbidden,
	apperrors.ErrNotFound,
	apperrors.ErrConflict,
	apperrors.ErrUnavailable,
}

// clientMessage drops the "<sentinel>: " prefix of errors built with fmt.Errorf("%w: ...").
func clientMessage(err error) string {
	if msg := apperrors.Message(err); msg != "" {
		return msg
	}
	msg := err.Error()
	for _, s := range sentinels {
		if detail, ok := strings.CutPrefix(msg, s.Error()+": "); ok {
			return detail
		}
	}
	return msg
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// pagination reads page and pageSize, answering 400 on out of range values.
func pagination(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return 0, 0, false
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return 0, 0, false
	}
	return page, pageSize, true
}

// optionalID reads an optional numeric query parameter.
func optionalID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &id, true
}

// language is the lang query parameter, else Accept-Language.
func language(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	return c.GetHeader("Accept-Language")
}
