package connectors

import "strings"

// CoinbaseFailureReasons maps order failure reasons to human-readable messages.
var CoinbaseFailureReasons = map[string]string{
	"UNKNOWN_FAILURE_REASON":                "Unknown failure",
	"UNSUPPORTED_ORDER_CONFIGURATION":       "Order configuration is not supported",
	"INVALID_SIDE":                          "Order side is invalid",
	"INVALID_PRODUCT_ID":                    "Product does not exist",
	"INVALID_SIZE_PRECISION":                "Order size has too many decimals",
	"INVALID_PRICE_PRECISION":               "Price has too many decimals",
	"INSUFFICIENT_FUND":                     "Not enough balance",
	"INVALID_LEDGER_BALANCE":                "Ledger balance is invalid",
	"ORDER_ENTRY_DISABLED":                  "Order entry is disabled for this product",
	"INELIGIBLE_PAIR":                       "Pair is not eligible for trading",
	"INVALID_LIMIT_PRICE_POST_ONLY":         "Post-only limit price would cross the book",
	"INVALID_LIMIT_PRICE":                   "Limit price is invalid",
	"INVALID_NO_LIQUIDITY":                  "No liquidity for this order",
	"INVALID_REQUEST":                       "Request is invalid",
	"COMMANDER_REJECTED_NEW_ORDER":          "Order was rejected",
	"INSUFFICIENT_FUNDS":                    "Not enough balance",
	"PREVIEW_INSUFFICIENT_FUND":             "Not enough balance",
	"PREVIEW_INVALID_BASE_SIZE_TOO_SMALL":   "Order size is below the product minimum",
	"PREVIEW_INVALID_BASE_SIZE_TOO_LARGE":   "Order size is above the product maximum",
	"PREVIEW_INVALID_PRODUCT_ID":            "Product does not exist",
	"PREVIEW_INVALID_SIZE_PRECISION":        "Order size has too many decimals",
	"PREVIEW_ORDER_SIZE_EXCEEDS_BULK_LIMIT": "Order size exceeds the bulk limit",
	"PERMISSION_DENIED":                     "API key lacks trade permission",
	"UNAUTHORIZED":                          "API key was rejected",
}

// FailureReasonMessage returns a readable message for a failure reason. Unknown
// reasons are returned as they are.
func FailureReasonMessage(reason string) string {
	if msg, ok := CoinbaseFailureReasons[strings.ToUpper(strings.TrimSpace(reason))]; ok {
		return msg
	}
	return reason
}
