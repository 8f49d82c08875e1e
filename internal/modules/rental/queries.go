package rental

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"locamat/internal/domain"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractOverdue   ContractStatus = "overdue"
	ContractCompleted ContractStatus = "completed"
)

// ContractSummary decorates a contract with the derived display state and the
// penalty total accumulated by its lines.
type ContractSummary struct {
	Contract       domain.Contract `json:"contract"`
	Status         ContractStatus  `json:"status"`
	OpenLines      int             `json:"open_lines"`
	TotalPenalties decimal.Decimal `json:"total_penalties"`
}

// OpenLines lists the contract lines still awaiting restitution, oldest
// first, with unit and client preloaded for display. Stale reads are fine
// here; the restitution transaction re-checks everything under lock.
func (s *Service) OpenLines(ctx context.Context) ([]domain.ContractLine, error) {
	var lines []domain.ContractLine
	err := s.db.WithContext(ctx).
		Preload("Unit").
		Preload("Unit.Model").
		Preload("Contract").
		Preload("Contract.Client").
		Where("actual_return_date IS NULL").
		Order("id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ContractsByClient returns a client's contracts, newest first.
func (s *Service) ContractsByClient(ctx context.Context, clientID int64) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("client_id = ?", clientID).
		Order("id DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// ContractSummaries prepares every contract for display, newest first.
func (s *Service) ContractSummaries(ctx context.Context) ([]ContractSummary, error) {
	var contracts []domain.Contract
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Lines").
		Order("id DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}

	today := dateOnly(time.Now())
	out := make([]ContractSummary, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, summarize(c, today))
	}
	return out, nil
}

func summarize(c domain.Contract, today time.Time) ContractSummary {
	sum := ContractSummary{
		Contract:       c,
		TotalPenalties: decimal.Zero,
	}

	overdue := false
	for _, l := range c.Lines {
		if l.Penalty != nil {
			sum.TotalPenalties = sum.TotalPenalties.Add(*l.Penalty)
		}
		if l.Returned() {
			continue
		}
		sum.OpenLines++
		if l.PlannedReturnDate.Before(today) {
			overdue = true
		}
	}

	switch {
	case sum.OpenLines == 0:
		sum.Status = ContractCompleted
	case overdue:
		sum.Status = ContractOverdue
	default:
		sum.Status = ContractActive
	}
	return sum
}
