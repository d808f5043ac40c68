package model

import "github.com/shopspring/decimal"

// Order sides as the exchange expects them.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OrderRequest is the body of POST /api/v3/brokerage/orders.
type OrderRequest struct {
	ClientOrderID      string             `json:"client_order_id"`
	ProductID          string             `json:"product_id"`
	Side               string             `json:"side"`
	OrderConfiguration OrderConfiguration `json:"order_configuration"`
}

type OrderConfiguration struct {
	MarketMarketIOC *MarketIOC `json:"market_market_ioc,omitempty"`
}

// MarketIOC sizes an immediate-or-cancel market order in base currency.
type MarketIOC struct {
	BaseSize string `json:"base_size"`
}

// NewMarketOrderRequest builds a market IOC order for baseSize units of the base currency.
func NewMarketOrderRequest(clientOrderID, productID, side string, baseSize decimal.Decimal) OrderRequest {
	return OrderRequest{
		ClientOrderID: clientOrderID,
		ProductID:     productID,
		Side:          side,
		OrderConfiguration: OrderConfiguration{
			MarketMarketIOC: &MarketIOC{BaseSize: baseSize.String()},
		},
	}
}

// OrderResponse is what the exchange returns for an order submission.
// The flat fields are filled from SuccessResponse when the exchange nests them.
type OrderResponse struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id,omitempty"`
	Side          string `json:"side,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`

	SuccessResponse *OrderSuccessResponse `json:"success_response,omitempty"`
	ErrorResponse   *OrderErrorResponse   `json:"error_response,omitempty"`

	OrderConfiguration *OrderConfiguration `json:"order_configuration,omitempty"`
}

type OrderSuccessResponse struct {
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	Side          string `json:"side"`
	ClientOrderID string `json:"client_order_id"`
}

type OrderErrorResponse struct {
	Error                 string `json:"error"`
	Message               string `json:"message"`
	ErrorDetails          string `json:"error_details"`
	PreviewFailureReason  string `json:"preview_failure_reason"`
	NewOrderFailureReason string `json:"new_order_failure_reason"`
}

// Normalize copies nested success fields to the top level and picks the most
// specific failure reason available.
func (r *OrderResponse) Normalize() {
	if s := r.SuccessResponse; s != nil {
		if r.OrderID == "" {
			r.OrderID = s.OrderID
		}
		if r.ProductID == "" {
			r.ProductID = s.ProductID
		}
		if r.Side == "" {
			r.Side = s.Side
		}
		if r.ClientOrderID == "" {
			r.ClientOrderID = s.ClientOrderID
		}
	}
	if r.FailureReason == "" && r.ErrorResponse != nil {
		e := r.ErrorResponse
		switch {
		case e.NewOrderFailureReason != "" && e.NewOrderFailureReason != "UNKNOWN_FAILURE_REASON":
			r.FailureReason = e.NewOrderFailureReason
		case e.PreviewFailureReason != "" && e.PreviewFailureReason != "UNKNOWN_PREVIEW_FAILURE_REASON":
			r.FailureReason = e.PreviewFailureReason
		case e.Error != "":
			r.FailureReason = e.Error
		default:
			r.FailureReason = e.Message
		}
	}
}
