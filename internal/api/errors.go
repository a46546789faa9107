package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"launchkit-backend-go/internal/core"
	"launchkit-backend-go/internal/generation"
	"launchkit-backend-go/internal/llmjson"
	"launchkit-backend-go/internal/models"
	"launchkit-backend-go/internal/scraper"
)

const internalErrorMessage = "An unexpected internal server error occurred."

// mapErrorToStatus maps service errors to an HTTP status and response body.
func mapErrorToStatus(err error) (int, ErrorResponse) {
	var (
		quotaErr  *core.QuotaError
		scrapeErr *scraper.Error
	)
	switch {
	case errors.Is(err, core.ErrAnalysisNotFound):
		return http.StatusNotFound, ErrorResponse{Error: core.ErrAnalysisNotFound.Error()}
	case errors.Is(err, core.ErrStrategyNotFound):
		return http.StatusNotFound, ErrorResponse{Error: core.ErrStrategyNotFound.Error()}
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: core.ErrForbidden.Error()}
	case errors.Is(err, core.ErrAuthRequired):
		return http.StatusUnauthorized, ErrorResponse{Error: core.ErrAuthRequired.Error()}
	case errors.As(err, &quotaErr):
		return http.StatusForbidden, ErrorResponse{Error: quotaErr.Error()}
	case errors.Is(err, core.ErrAnalysisNotCompleted):
		return http.StatusBadRequest, ErrorResponse{Error: core.ErrAnalysisNotCompleted.Error()}
	case errors.Is(err, core.ErrInvalidURL):
		return http.StatusBadRequest, ErrorResponse{Error: core.ErrInvalidURL.Error()}
	case errors.Is(err, core.ErrWaitlistDuplicate):
		return http.StatusBadRequest, ErrorResponse{Error: core.ErrWaitlistDuplicate.Error()}
	case errors.Is(err, generation.ErrNotConfigured):
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error()}
	case errors.As(err, &scrapeErr):
		return http.StatusBadGateway, ErrorResponse{Error: scrapeErr.Message}
	case errors.Is(err, llmjson.ErrMalformed), errors.Is(err, core.ErrInvalidModelOutput):
		return http.StatusBadGateway, ErrorResponse{
			Error:   "The AI response could not be read. Please try again.",
			Details: err.Error(),
		}
	case errors.Is(err, generation.ErrUpstream):
		return http.StatusBadGateway, ErrorResponse{
			Error:   "The AI provider request failed. Please try again.",
			Details: err.Error(),
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage}
	}
}

// respondError writes the mapped error. analysis may be nil.
func respondError(c *gin.Context, logger *zap.Logger, err error, analysis *models.ICPAnalysis) {
	status, resp := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else if status >= http.StatusBadGateway {
		logger.Warn("Upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
	}
	resp.Analysis = analysis
	c.JSON(status, resp)
}

// respondInternal hides the cause from the client; used by the aggregate endpoints.
func respondInternal(c *gin.Context, logger *zap.Logger, message string, err error) {
	logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
}

// validationMessage describes the first violated binding rule.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report JSON field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}
