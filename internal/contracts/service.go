package contracts

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crediario/portal-backend/internal/customers"
	"crediario/portal-backend/internal/sales"
)

// Service assembles the sale snapshot and renders the contract document.
type Service struct {
	sales     *sales.Service
	customers customers.Repository
	storeName string
	logger    *zap.Logger
}

func NewService(salesService *sales.Service, customersRepo customers.Repository, storeName string, logger *zap.Logger) *Service {
	return &Service{
		sales:     salesService,
		customers: customersRepo,
		storeName: storeName,
		logger:    logger,
	}
}

// RenderContract writes the contract PDF for one sale to w.
func (s *Service) RenderContract(ctx context.Context, saleID uuid.UUID, w io.Writer) error {
	detail, err := s.sales.Get(ctx, saleID)
	if err != nil {
		return err
	}

	customer, err := s.customers.GetByID(ctx, detail.Sale.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}
	if customer == nil {
		return customers.ErrCustomerNotFound
	}

	data := ContractData{
		Sale:         detail.Sale,
		Installments: detail.Installments,
		Customer:     *customer,
		StoreName:    s.storeName,
	}

	if err := NewGenerator().Generate(data, w); err != nil {
		return err
	}

	s.logger.Info("contract rendered",
		zap.String("sale_id", saleID.String()),
		zap.String("sale_number", detail.Sale.SaleNumber))
	return nil
}
