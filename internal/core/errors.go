package core

import (
	"errors"
	"fmt"
)

var (
	ErrAnalysisNotFound     = errors.New("ICP analysis not found")
	ErrAnalysisNotCompleted = errors.New("ICP analysis is not completed yet")
	ErrStrategyNotFound     = errors.New("GTM strategy not found")
	ErrForbidden            = errors.New("you do not have access to this resource")
	ErrAuthRequired         = errors.New("authentication required")
	ErrQuotaExceeded        = errors.New("plan limit reached")
	ErrWaitlistDuplicate    = errors.New("this email is already on the waitlist")
	ErrInvalidModelOutput   = errors.New("model output is not a JSON object")
	ErrInvalidURL           = errors.New("url must be a valid http or https URL")
)

// QuotaError is returned when a trial user has used every creation on the plan.
type QuotaError struct {
	Used int
	Max  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("You have reached your plan limit of %d creations (%d used). Upgrade to Pro for unlimited ICP analyses and GTM strategies.", e.Max, e.Used)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }
