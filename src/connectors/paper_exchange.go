package connectors

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/model"
)

// PaperOrderHistory is how many filled orders PaperExchange keeps for Orders.
const PaperOrderHistory = 100

// PaperExchange fills every order without contacting an exchange.
type PaperExchange struct {
	mu     sync.Mutex
	orders []model.OrderRequest
}

func NewPaperExchange() *PaperExchange {
	return &PaperExchange{}
}

func (p *PaperExchange) ExecuteMarketOrder(_ context.Context, symbol, side string, baseSize decimal.Decimal) (*model.OrderResponse, error) {
	clientID := uuid.NewString()
	req := model.NewMarketOrderRequest(clientID, symbol, side, baseSize)

	p.mu.Lock()
	if len(p.orders) == PaperOrderHistory {
		copy(p.orders, p.orders[1:])
		p.orders = p.orders[:len(p.orders)-1]
	}
	p.orders = append(p.orders, req)
	p.mu.Unlock()

	logger.WithFields(logger.Fields{
		"product_id": symbol,
		"side":       side,
		"base_size":  baseSize.String(),
	}).Info("Paper exchange filled order")

	return &model.OrderResponse{
		Success:            true,
		OrderID:            "paper-" + uuid.NewString(),
		ProductID:          symbol,
		Side:               side,
		ClientOrderID:      clientID,
		OrderConfiguration: &req.OrderConfiguration,
	}, nil
}

func (p *PaperExchange) TestConnection(_ context.Context) bool {
	return true
}

// Orders returns the most recent orders, oldest first.
func (p *PaperExchange) Orders() []model.OrderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.OrderRequest, len(p.orders))
	copy(out, p.orders)
	return out
}
