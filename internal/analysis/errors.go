package analysis

import (
	"errors"
	"fmt"

	"github.com/joshsymonds/policycheck/internal/compliance"
)

// Kind classifies analysis failures.
type Kind string

// Error kinds.
const (
	KindInvalidInput       Kind = "InvalidInput"
	KindCatalogUnavailable Kind = "CatalogUnavailable"
	KindPaymentRequired    Kind = "PaymentRequired"
	KindInternal           Kind = "Internal"
)

// Error is a classified analysis failure.
type Error struct {
	Err     error
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so errors.Is(err, ErrInvalidInput)
// works against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrCatalogUnavailable = &Error{Kind: KindCatalogUnavailable}
	ErrPaymentRequired    = &Error{Kind: KindPaymentRequired}
)

func newError(kind Kind, msg, detail string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Detail: detail, Err: err}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// ErrorReport is the document returned in place of a Report when analysis fails.
type ErrorReport struct {
	Error        string           `json:"error" yaml:"error"`
	ErrorType    Kind             `json:"error_type" yaml:"error_type"`
	ErrorDetails string           `json:"error_details" yaml:"error_details"`
	Message      string           `json:"message" yaml:"message"`
	Gaps         []compliance.Gap `json:"gaps" yaml:"gaps"`
	Strengths    []compliance.Gap `json:"strengths" yaml:"strengths"`
	Score        int              `json:"score" yaml:"score"`
	Success      bool             `json:"success" yaml:"success"`
}

// NewErrorReport describes err as a failed analysis.
func NewErrorReport(err error) ErrorReport {
	r := ErrorReport{
		Error:     err.Error(),
		ErrorType: KindInternal,
		Gaps:      []compliance.Gap{},
		Strengths: []compliance.Gap{},
	}

	var ae *Error
	if errors.As(err, &ae) {
		r.ErrorType = ae.Kind
		r.Error = ae.Message
		if ae.Err != nil {
			r.Error = fmt.Sprintf("%s: %v", ae.Message, ae.Err)
		}
		r.ErrorDetails = ae.Detail
	}

	r.Message = "Analysis failed: " + r.Error
	return r
}
