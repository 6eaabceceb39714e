package models

import "errors"

// Domain errors shared by store and services. HTTP mapping lives in internal/http.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is deactivated")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskNotActive      = errors.New("task is not accepting submissions")
	ErrTaskExpired        = errors.New("task has expired")
	ErrTaskFull           = errors.New("task reached its submission cap")
	ErrTaskHasSubmissions = errors.New("task already has submissions")
	ErrOwnTask            = errors.New("cannot submit to own task")
	ErrBadStatusChange    = errors.New("illegal status transition")
	ErrDuplicateSubmission = errors.New("submission already exists for this task")
	ErrDailyLimitReached  = errors.New("daily submission limit reached")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyReviewed    = errors.New("submission already reviewed")
	ErrNotPermitted       = errors.New("caller is not permitted to perform this action")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentFinalized   = errors.New("payment already finalized")
	ErrDisputeNotFound    = errors.New("dispute not found")
	ErrDisputeExists      = errors.New("submission already has an open dispute")
	ErrDisputeClosed      = errors.New("dispute already resolved")
	ErrNotDisputable      = errors.New("only rejected submissions can be disputed")
	ErrValidation         = errors.New("validation failed")
)
