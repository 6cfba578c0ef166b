// Package marketerr defines the tagged error kinds every fallible engine
// operation returns. Kept as a single small enum-like type rather than a
// hierarchy of error structs, per the source prototype's ErrorType enum.
package marketerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names one of the fallible outcomes an engine operation can produce.
type Kind int

const (
	// Lookup
	AssetNotFound Kind = iota
	PortfolioNotFound
	OrderNotFound

	// Validation
	QuantityCantBeZero
	LimitCantBeZero
	InvalidAssetID
	CantSplitOrder

	// Accounting
	InsufficientFreeAmount
	InsufficientLockedAmount

	// Matching
	NotEnoughMatchingOrdersToImmediatelyFillBestOrder
	NoLimitForBestOrder
	CantLockAmountForBestOrder

	// Infrastructure
	EngineWasTooBusy
	InvalidState
)

var names = map[Kind]string{
	AssetNotFound:      "AssetNotFound",
	PortfolioNotFound:  "PortfolioNotFound",
	OrderNotFound:      "OrderNotFound",
	QuantityCantBeZero: "QuantityCantBeZero",
	LimitCantBeZero:    "LimitCantBeZero",
	InvalidAssetID:     "InvalidAssetId",
	CantSplitOrder:     "CantSplitOrder",
	InsufficientFreeAmount:   "InsufficientFreeAmount",
	InsufficientLockedAmount: "InsufficientLockedAmount",
	NotEnoughMatchingOrdersToImmediatelyFillBestOrder: "NotEnoughMatchingOrdersToImmediatelyFillBestOrder",
	NoLimitForBestOrder:        "NoLimitForBestOrder",
	CantLockAmountForBestOrder: "CantLockAmountForBestOrder",
	EngineWasTooBusy:           "EngineWasTooBusy",
	InvalidState:               "InvalidState",
}

// String returns the textual name of the kind, which is exactly what the
// HTTP surface sends back as an error body.
func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return "UnknownError"
}

// HTTPStatus maps a Kind to the status code the API layer should respond
// with. Lookup failures are 404, EngineWasTooBusy is 503, everything else
// is a 400 except InvalidState, an invariant breach reported as a 500.
func (k Kind) HTTPStatus() int {
	switch k {
	case AssetNotFound, PortfolioNotFound, OrderNotFound:
		return http.StatusNotFound
	case EngineWasTooBusy:
		return http.StatusServiceUnavailable
	case InvalidState:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error is the concrete error value returned across package boundaries.
// ID carries the offending identifier for lookup failures, empty otherwise.
type Error struct {
	Kind Kind
	ID   string
}

func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

func NewWithID(kind Kind, id fmt.Stringer) *Error {
	return &Error{Kind: kind, ID: id.String()}
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s(%s)", e.Kind.String(), e.ID)
	}
	return e.Kind.String()
}

// Is lets errors.Is match on Kind alone, independent of the carried ID.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
