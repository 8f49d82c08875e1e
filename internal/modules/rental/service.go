package rental

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"locamat/internal/domain"
)

// Service runs the reservation and restitution transactions. Both operations
// take row locks in ascending id order inside a single gorm transaction, so
// two overlapping requests serialize instead of deadlocking, and no partial
// reservation or return can ever be observed.
type Service struct {
	db            *gorm.DB
	penaltyPerDay decimal.Decimal
}

func NewService(db *gorm.DB, penaltyPerDay decimal.Decimal) *Service {
	return &Service{db: db, penaltyPerDay: penaltyPerDay}
}

type ReservationResult struct {
	Contract *domain.Contract       `json:"contract"`
	Units    []domain.EquipmentUnit `json:"units"`
	Price    PriceBreakdown         `json:"price"`
}

// Reserve rents out the requested units to a client for [startDate, endDate]
// (inclusive). It validates the input, then atomically: locks the unit rows,
// checks availability, prices the rental, creates the contract and its lines
// and flips the units to rented. Any failure rolls the whole thing back.
func (s *Service) Reserve(ctx context.Context, clientID int64, unitIDs []int64, startDate, endDate time.Time) (*ReservationResult, error) {
	if len(unitIDs) == 0 {
		return nil, &ValidationError{Msg: "no units selected"}
	}

	start := dateOnly(startDate)
	end := dateOnly(endDate)
	if end.Before(start) {
		return nil, &ValidationError{Msg: "invalid date range"}
	}
	duration := daysBetween(start, end) + 1
	if duration < 1 {
		return nil, &ValidationError{Msg: "rental must last at least one day"}
	}

	ids := uniqueSorted(unitIDs)

	var res ReservationResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client domain.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "client", IDs: []int64{clientID}}
			}
			return err
		}

		units, err := lockUnits(tx, ids)
		if err != nil {
			return err
		}
		if len(units) != len(ids) {
			return &NotFoundError{Resource: "equipment", IDs: missingIDs(ids, unitIDsOf(units))}
		}

		var conflicting []int64
		for _, u := range units {
			if u.Status != domain.UnitAvailable {
				conflicting = append(conflicting, u.ID)
			}
		}
		if len(conflicting) > 0 {
			return &ConflictError{Reason: "equipment unavailable", IDs: conflicting}
		}

		days := decimal.NewFromInt(int64(duration))
		baseTotal := decimal.Zero
		for _, u := range units {
			baseTotal = baseTotal.Add(u.DailyRate.Mul(days))
		}

		risky, err := isClientRisky(tx, clientID)
		if err != nil {
			return err
		}
		vip := client.VIP != nil && *client.VIP
		res.Price = Price(baseTotal, duration, vip, risky)

		contract := domain.Contract{ClientID: clientID, StartDate: start, EndDate: end}
		if err := tx.Create(&contract).Error; err != nil {
			return err
		}

		lines := make([]domain.ContractLine, 0, len(units))
		for _, u := range units {
			lines = append(lines, domain.ContractLine{
				ContractID:        contract.ID,
				UnitID:            u.ID,
				PlannedReturnDate: end,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}

		for i := range units {
			if err := tx.Model(&domain.EquipmentUnit{}).
				Where("id = ?", units[i].ID).
				Update("status", domain.UnitRented).Error; err != nil {
				return err
			}
			units[i].Status = domain.UnitRented
		}

		contract.Lines = lines
		res.Contract = &contract
		res.Units = units
		return nil
	})
	if err != nil {
		return nil, translateStorageError(err)
	}
	return &res, nil
}

// Restitute returns the given contract lines on actualReturnDate: it locks the
// lines and their units, computes lateness and penalty per line and releases
// the units back to available. The batch is all-or-nothing; a line that was
// already returned aborts the whole call.
func (s *Service) Restitute(ctx context.Context, lineIDs []int64, actualReturnDate time.Time) ([]domain.ContractLine, error) {
	if len(lineIDs) == 0 {
		return nil, &ValidationError{Msg: "no lines selected"}
	}
	if actualReturnDate.IsZero() {
		return nil, &ValidationError{Msg: "missing return date"}
	}
	returned := dateOnly(actualReturnDate)

	ids := uniqueSorted(lineIDs)

	var out []domain.ContractLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []domain.ContractLine
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Order("id").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) != len(ids) {
			return &NotFoundError{Resource: "lines", IDs: missingIDs(ids, lineIDsOf(lines))}
		}

		var alreadyReturned []int64
		for _, l := range lines {
			if l.Returned() {
				alreadyReturned = append(alreadyReturned, l.ID)
			}
		}
		if len(alreadyReturned) > 0 {
			return &ConflictError{Reason: "already returned", IDs: alreadyReturned}
		}

		unitIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			unitIDs = append(unitIDs, l.UnitID)
		}
		if _, err := lockUnits(tx, uniqueSorted(unitIDs)); err != nil {
			return err
		}

		for i := range lines {
			late := daysBetween(lines[i].PlannedReturnDate, returned)
			if late < 0 {
				late = 0
			}
			penalty := s.penaltyPerDay.Mul(decimal.NewFromInt(int64(late))).Round(2)

			if err := tx.Model(&domain.ContractLine{}).
				Where("id = ?", lines[i].ID).
				Updates(map[string]any{
					"actual_return_date": returned,
					"late_days":          late,
					"penalty":            penalty,
				}).Error; err != nil {
				return err
			}

			d := returned
			lines[i].ActualReturnDate = &d
			lines[i].LateDays = &late
			lines[i].Penalty = &penalty
		}

		for _, id := range uniqueSorted(unitIDs) {
			if err := tx.Model(&domain.EquipmentUnit{}).
				Where("id = ?", id).
				Update("status", domain.UnitAvailable).Error; err != nil {
				return err
			}
		}

		out = lines
		return nil
	})
	if err != nil {
		return nil, translateStorageError(err)
	}
	return out, nil
}

// lockUnits takes SELECT ... FOR UPDATE locks on the unit rows, in ascending
// id order. ids must already be sorted and de-duplicated.
func lockUnits(tx *gorm.DB, ids []int64) ([]domain.EquipmentUnit, error) {
	var units []domain.EquipmentUnit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

// translateStorageError keeps the typed rental errors as they are and maps
// lock timeouts and deadlocks, which the store reports after rolling back, to
// a retryable conflict. Anything else propagates opaquely.
func translateStorageError(err error) error {
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) {
		return err
	}
	if isLockTimeout(err) {
		return &ConflictError{Reason: "lock timeout"}
	}
	return err
}

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 55P03 lock_not_available, 40P01 deadlock_detected
		return pgErr.Code == "55P03" || pgErr.Code == "40P01"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "busy")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(wanted, got []int64) []int64 {
	present := make(map[int64]struct{}, len(got))
	for _, id := range got {
		present[id] = struct{}{}
	}
	var missing []int64
	for _, id := range wanted {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func unitIDsOf(units []domain.EquipmentUnit) []int64 {
	out := make([]int64, 0, len(units))
	for _, u := range units {
		out = append(out, u.ID)
	}
	return out
}

func lineIDsOf(lines []domain.ContractLine) []int64 {
	out := make([]int64, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ID)
	}
	return out
}
