package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service feeds the back-office dashboard. Everything here is a read-only,
// stale-tolerant view: no locks, no participation in the rental transactions.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type ModelRevenue struct {
	Model   string          `json:"model"`
	Revenue decimal.Decimal `json:"revenue"`
}

type OverdueAlert struct {
	LineID            int64     `json:"line_id"`
	Serial            string    `json:"serial"`
	ClientName        string    `json:"client_name"`
	PlannedReturnDate time.Time `json:"planned_return_date"`
	DaysLate          int       `json:"days_late"`
}

type Dashboard struct {
	Revenue30Days   decimal.Decimal `json:"revenue_30_days"`
	ActiveContracts int64           `json:"active_contracts"`
	TopModels       []ModelRevenue  `json:"top_models"`
	OverdueAlerts   []OverdueAlert  `json:"overdue_alerts"`
}

type revenueRow struct {
	StartDate time.Time        `gorm:"column:start_date"`
	EndDate   time.Time        `gorm:"column:end_date"`
	DailyRate decimal.Decimal  `gorm:"column:daily_rate"`
	ModelName string           `gorm:"column:model_name"`
	Penalty   *decimal.Decimal `gorm:"column:penalty"`
}

const topModelCount = 5

func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -30)

	rows, err := s.revenueRows(ctx, since)
	if err != nil {
		return nil, err
	}

	// Line revenue is dailyRate x inclusive contract duration; the arithmetic
	// stays in decimal so the totals are exact on every SQL dialect.
	revenue := decimal.Zero
	perModel := map[string]decimal.Decimal{}
	for _, r := range rows {
		days := int64(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
		amount := r.DailyRate.Mul(decimal.NewFromInt(days))
		if r.Penalty != nil {
			amount = amount.Add(*r.Penalty)
		}
		revenue = revenue.Add(amount)
		perModel[r.ModelName] = perModel[r.ModelName].Add(amount)
	}

	active, err := s.activeContracts(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.overdueAlerts(ctx, now)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Revenue30Days:   revenue.Round(2),
		ActiveContracts: active,
		TopModels:       topModels(perModel),
		OverdueAlerts:   alerts,
	}, nil
}

func (s *Service) revenueRows(ctx context.Context, since time.Time) ([]revenueRow, error) {
	var rows []revenueRow
	q := `
SELECT
  c.start_date,
  c.end_date,
  u.daily_rate,
  m.name AS model_name,
  cl.penalty
FROM contract_lines cl
JOIN contracts c ON c.id = cl.contract_id
JOIN equipment_units u ON u.id = cl.unit_id
JOIN equipment_models m ON m.id = u.model_id
WHERE c.start_date >= ?
`
	tx := s.db.WithContext(ctx).Raw(q, since).Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return rows, nil
}

func (s *Service) activeContracts(ctx context.Context) (int64, error) {
	var count int64
	q := `
SELECT COUNT(DISTINCT contract_id)
FROM contract_lines
WHERE actual_return_date IS NULL
`
	tx := s.db.WithContext(ctx).Raw(q).Scan(&count)
	return count, tx.Error
}

func (s *Service) overdueAlerts(ctx context.Context, now time.Time) ([]OverdueAlert, error) {
	type row struct {
		LineID            int64     `gorm:"column:line_id"`
		Serial            string    `gorm:"column:serial"`
		FirstName         string    `gorm:"column:first_name"`
		LastName          string    `gorm:"column:last_name"`
		PlannedReturnDate time.Time `gorm:"column:planned_return_date"`
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var rows []row
	q := `
SELECT
  cl.id AS line_id,
  u.serial,
  p.first_name,
  p.last_name,
  cl.planned_return_date
FROM contract_lines cl
JOIN equipment_units u ON u.id = cl.unit_id
JOIN contracts c ON c.id = cl.contract_id
JOIN clients p ON p.id = c.client_id
WHERE cl.actual_return_date IS NULL
  AND cl.planned_return_date < ?
ORDER BY cl.planned_return_date
`
	tx := s.db.WithContext(ctx).Raw(q, today).Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]OverdueAlert, 0, len(rows))
	for _, r := range rows {
		out = append(out, OverdueAlert{
			LineID:            r.LineID,
			Serial:            r.Serial,
			ClientName:        r.FirstName + " " + r.LastName,
			PlannedReturnDate: r.PlannedReturnDate,
			DaysLate:          int(today.Sub(r.PlannedReturnDate).Hours() / 24),
		})
	}
	return out, nil
}

func topModels(perModel map[string]decimal.Decimal) []ModelRevenue {
	out := make([]ModelRevenue, 0, len(perModel))
	for name, rev := range perModel {
		out = append(out, ModelRevenue{Model: name, Revenue: rev.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Model < out[j].Model
	})
	if len(out) > topModelCount {
		out = out[:topModelCount]
	}
	return out
}
