package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the use case layer. Each maps to one stable error
// code on the HTTP surface.
var (
	ErrValidation          = goerr.New("validation failed")
	ErrNotFound            = goerr.New("record not found")
	ErrNotEditable         = goerr.New("apr is not editable")
	ErrInvalidTransition   = goerr.New("status transition not allowed")
	ErrRiskScoreInvalid    = goerr.New("risk score is invalid")
	ErrResponsibleMismatch = goerr.New("responsible confirmation does not match apr responsible")
	ErrForbidden           = goerr.New("operation not allowed for role")
	ErrNotFinal            = goerr.New("apr is not exportable")
)

// Keys for goerr values attached to use case errors
const (
	FieldKey  = "field"
	AprIDKey  = "apr_id"
	StepIDKey = "step_id"
	StatusKey = "status"
)
