package service

import (
	"time"

	"go-inventory-api/internal/repository"
)

type DashboardService interface {
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
}

type dashboardService struct {
	purchaseRepo repository.PurchaseRepository
}

func NewDashboardService(purchaseRepo repository.PurchaseRepository) DashboardService {
	return &dashboardService{purchaseRepo: purchaseRepo}
}

func (s *dashboardService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.purchaseRepo.GetSalesMovement(startDate, endDate)
	if err != nil {
		return nil, persistence("sales movement", err)
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	stats, err := s.purchaseRepo.GetDashboardStats()
	if err != nil {
		return nil, persistence("dashboard stats", err)
	}
	return stats, nil
}
