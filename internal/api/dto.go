package api

import (
	"fmt"
	"reflect"
	"strings"

	validatorpkg "github.com/go-playground/validator/v10"

	"marketsim/internal/order"
)

// validate wraps go-playground/validator with a tag-name function that
// reports JSON field names in error messages instead of Go field names.
var validate = newValidator()

func newValidator() *validatorpkg.Validate {
	v := validatorpkg.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formatValidationErr(err error) string {
	verrs, ok := err.(validatorpkg.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", e.Field(), e.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// modeDTO is the wire form of order.Mode: {"kind":"best"} or
// {"kind":"limit","price":n}.
type modeDTO struct {
	Kind  string `json:"kind" validate:"required,oneof=best limit"`
	Price uint64 `json:"price,omitempty"`
}

func (m modeDTO) toMode() (order.Mode, error) {
	switch m.Kind {
	case "best":
		return order.BestMode(), nil
	case "limit":
		if m.Price == 0 {
			return order.Mode{}, fmt.Errorf("price: required when kind is limit")
		}
		return order.LimitMode(m.Price), nil
	default:
		return order.Mode{}, fmt.Errorf("kind: must be best or limit")
	}
}

// placeOrderRequest is the body of POST .../buy and .../sell.
type placeOrderRequest struct {
	Quantity uint64  `json:"quantity" validate:"required,gt=0"`
	Mode     modeDTO `json:"mode" validate:"required"`
}

type placeOrderResponse struct {
	OrderID string          `json:"order_id"`
	Trades  []tradeResponse `json:"trades,omitempty"`
}

type tradeResponse struct {
	ID       string `json:"id"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}

type createPortfolioRequest struct {
	InitialCoins uint64 `json:"initial_coins"`
}

type createPortfolioResponse struct {
	PortfolioID string `json:"portfolio_id"`
}

type createAssetRequest struct {
	Name string `json:"name" validate:"required"`
}

type createAssetResponse struct {
	AssetID string `json:"asset_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}
