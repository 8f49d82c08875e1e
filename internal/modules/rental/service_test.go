package rental

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"

	"locamat/internal/domain"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:rental_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Category{}, &domain.Brand{}, &domain.EquipmentModel{},
		&domain.EquipmentUnit{}, &domain.Client{},
		&domain.Contract{}, &domain.ContractLine{},
	); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(db, d("5.00")), db
}

func seedModel(t *testing.T, db *gorm.DB) domain.EquipmentModel {
	t.Helper()
	cat := domain.Category{Label: "Excavation"}
	require.NoError(t, db.Create(&cat).Error)
	brand := domain.Brand{Label: "Krupp"}
	require.NoError(t, db.Create(&brand).Error)
	model := domain.EquipmentModel{Name: "K160", CategoryID: cat.ID, BrandID: brand.ID}
	require.NoError(t, db.Create(&model).Error)
	return model
}

func seedUnit(t *testing.T, db *gorm.DB, modelID int64, serial, rate string, status domain.UnitStatus) domain.EquipmentUnit {
	t.Helper()
	u := domain.EquipmentUnit{Serial: serial, ModelID: modelID, DailyRate: d(rate), Status: status}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedClient(t *testing.T, db *gorm.DB, email string, vip *bool) domain.Client {
	t.Helper()
	c := domain.Client{
		FirstName: "Ada", LastName: "Martin",
		Address: "1 rue des Forges", PostalCode: "75011",
		Phone: "0600000000", Email: email, VIP: vip,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func unitStatus(t *testing.T, db *gorm.DB, id int64) domain.UnitStatus {
	t.Helper()
	var u domain.EquipmentUnit
	require.NoError(t, db.First(&u, id).Error)
	return u.Status
}

func boolPtr(b bool) *bool { return &b }

func TestReserveCreatesContractLinesAndRentsUnits(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u1 := seedUnit(t, db, model.ID, "SN-1", "100.00", domain.UnitAvailable)
	u2 := seedUnit(t, db, model.ID, "SN-2", "100.00", domain.UnitAvailable)
	u3 := seedUnit(t, db, model.ID, "SN-3", "100.00", domain.UnitAvailable)

	start := date(2024, 3, 1)
	end := date(2024, 3, 3) // 3 days inclusive

	res, err := svc.Reserve(context.Background(), client.ID, []int64{u3.ID, u1.ID, u2.ID}, start, end)
	require.NoError(t, err)

	require.NotNil(t, res.Contract)
	assert.NotZero(t, res.Contract.ID)
	assert.Equal(t, client.ID, res.Contract.ClientID)
	require.Len(t, res.Contract.Lines, 3)
	for _, l := range res.Contract.Lines {
		assert.True(t, l.PlannedReturnDate.Equal(end))
		assert.Nil(t, l.ActualReturnDate)
		assert.Nil(t, l.Penalty)
	}

	// 3 units x 100/day x 3 days, no discounts
	assert.True(t, res.Price.BaseTotal.Equal(d("900")), "base %s", res.Price.BaseTotal)
	assert.True(t, res.Price.Total.Equal(d("900.00")), "total %s", res.Price.Total)

	for _, id := range []int64{u1.ID, u2.ID, u3.ID} {
		assert.Equal(t, domain.UnitRented, unitStatus(t, db, id))
	}
}

func TestReserveVIPLongRentalPricing(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "vip@example.com", boolPtr(true))
	u := seedUnit(t, db, model.ID, "SN-1", "50.00", domain.UnitAvailable)

	// 10 inclusive days: duration discount + VIP discount
	res, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 3, 1), date(2024, 3, 10))
	require.NoError(t, err)

	assert.True(t, res.Price.BaseTotal.Equal(d("500")), "base %s", res.Price.BaseTotal)
	assert.True(t, res.Price.DurationDiscount.Equal(d("0.10")))
	assert.True(t, res.Price.VIPDiscount.Equal(d("0.15")))
	assert.True(t, res.Price.Total.Equal(d("382.50")), "total %s", res.Price.Total)
}

func TestReserveValidation(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), client.ID, nil, date(2024, 3, 1), date(2024, 3, 2))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 3, 2), date(2024, 3, 1))
	require.ErrorAs(t, err, &ve)

	// validation happens before anything touches the store
	assert.Equal(t, domain.UnitAvailable, unitStatus(t, db, u.ID))
}

func TestReserveUnknownClient(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), 404, []int64{u.ID}, date(2024, 3, 1), date(2024, 3, 2))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "client", nf.Resource)
	assert.Equal(t, domain.UnitAvailable, unitStatus(t, db, u.ID))
}

func TestReserveUnknownUnitListsExactlyTheMissingID(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID, 9999}, date(2024, 3, 1), date(2024, 3, 2))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "equipment", nf.Resource)
	assert.Equal(t, []int64{9999}, nf.IDs)

	// nothing was mutated
	assert.Equal(t, domain.UnitAvailable, unitStatus(t, db, u.ID))
	var contracts int64
	require.NoError(t, db.Model(&domain.Contract{}).Count(&contracts).Error)
	assert.Zero(t, contracts)
}

func TestReserveConflictLeavesEveryUnitUntouched(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	free := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)
	rented := seedUnit(t, db, model.ID, "SN-2", "10.00", domain.UnitRented)
	maint := seedUnit(t, db, model.ID, "SN-3", "10.00", domain.UnitMaintenance)

	_, err := svc.Reserve(context.Background(), client.ID, []int64{free.ID, rented.ID, maint.ID}, date(2024, 3, 1), date(2024, 3, 2))
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "equipment unavailable", ce.Reason)
	assert.ElementsMatch(t, []int64{rented.ID, maint.ID}, ce.IDs)

	// the available unit must not have been rented either
	assert.Equal(t, domain.UnitAvailable, unitStatus(t, db, free.ID))
	assert.Equal(t, domain.UnitRented, unitStatus(t, db, rented.ID))
	assert.Equal(t, domain.UnitMaintenance, unitStatus(t, db, maint.ID))

	var contracts int64
	require.NoError(t, db.Model(&domain.Contract{}).Count(&contracts).Error)
	assert.Zero(t, contracts)
}

func TestReserveDoubleBookingSequential(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	a := seedClient(t, db, "a@example.com", nil)
	b := seedClient(t, db, "b@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), a.ID, []int64{u.ID}, date(2024, 3, 1), date(2024, 3, 2))
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), b.ID, []int64{u.ID}, date(2024, 3, 1), date(2024, 3, 2))
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []int64{u.ID}, ce.IDs)
}

func TestReserveConcurrentOverlapNeverDoubleBooks(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	a := seedClient(t, db, "a@example.com", nil)
	b := seedClient(t, db, "b@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	clients := []int64{a.ID, b.ID}
	errs := make([]error, len(clients))

	var wg sync.WaitGroup
	for i, clientID := range clients {
		wg.Add(1)
		go func(i int, clientID int64) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), clientID, []int64{u.ID}, date(2024, 3, 1), date(2024, 3, 5))
		}(i, clientID)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		// every loser must see a typed conflict (unavailable or lock timeout)
		var ce *ConflictError
		require.ErrorAs(t, err, &ce, "unexpected error: %v", err)
	}
	assert.LessOrEqual(t, successes, 1)

	// the unit must never be referenced by two open lines
	var openLines int64
	require.NoError(t, db.Model(&domain.ContractLine{}).
		Where("unit_id = ? AND actual_return_date IS NULL", u.ID).
		Count(&openLines).Error)
	assert.Equal(t, int64(successes), openLines)
}

func TestRiskSurchargeAppliedFromLatestContract(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "late@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "100.00", domain.UnitAvailable)

	// rent and return three days late: client becomes risky
	_, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 1, 1), date(2024, 1, 10))
	require.NoError(t, err)
	var line domain.ContractLine
	require.NoError(t, db.Where("unit_id = ?", u.ID).First(&line).Error)
	_, err = svc.Restitute(context.Background(), []int64{line.ID}, date(2024, 1, 13))
	require.NoError(t, err)

	res, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 2, 1), date(2024, 2, 3))
	require.NoError(t, err)
	assert.True(t, res.Price.RiskSurcharge.Equal(d("0.05")), "risk %s", res.Price.RiskSurcharge)
	// 100 * 3 days * 1.05
	assert.True(t, res.Price.Total.Equal(d("315.00")), "total %s", res.Price.Total)
}

func TestRiskIgnoresOlderContracts(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "reformed@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "100.00", domain.UnitAvailable)

	// old contract, returned late
	_, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 1, 1), date(2024, 1, 5))
	require.NoError(t, err)
	var first domain.ContractLine
	require.NoError(t, db.Order("id").First(&first).Error)
	_, err = svc.Restitute(context.Background(), []int64{first.ID}, date(2024, 1, 8))
	require.NoError(t, err)

	// newer contract, returned on time
	_, err = svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 2, 1), date(2024, 2, 5))
	require.NoError(t, err)
	var second domain.ContractLine
	require.NoError(t, db.Order("id DESC").First(&second).Error)
	_, err = svc.Restitute(context.Background(), []int64{second.ID}, date(2024, 2, 5))
	require.NoError(t, err)

	// only the most recent contract is consulted: no surcharge
	res, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 3, 1), date(2024, 3, 3))
	require.NoError(t, err)
	assert.True(t, res.Price.RiskSurcharge.IsZero(), "risk %s", res.Price.RiskSurcharge)
}

func TestRestituteComputesLatenessAndReleasesUnit(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	// planned return 2024-01-10, actual 2024-01-13 -> 3 days late, 15.00 penalty
	_, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 1, 8), date(2024, 1, 10))
	require.NoError(t, err)

	var line domain.ContractLine
	require.NoError(t, db.Where("unit_id = ?", u.ID).First(&line).Error)

	lines, err := svc.Restitute(context.Background(), []int64{line.ID}, date(2024, 1, 13))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	require.NotNil(t, lines[0].LateDays)
	assert.Equal(t, 3, *lines[0].LateDays)
	require.NotNil(t, lines[0].Penalty)
	assert.True(t, lines[0].Penalty.Equal(d("15.00")), "penalty %s", lines[0].Penalty)
	require.NotNil(t, lines[0].ActualReturnDate)
	assert.True(t, lines[0].ActualReturnDate.Equal(date(2024, 1, 13)))

	assert.Equal(t, domain.UnitAvailable, unitStatus(t, db, u.ID))
}

func TestRestituteOnTimeHasZeroPenalty(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 1, 8), date(2024, 1, 10))
	require.NoError(t, err)
	var line domain.ContractLine
	require.NoError(t, db.Where("unit_id = ?", u.ID).First(&line).Error)

	// early return is not negative lateness
	lines, err := svc.Restitute(context.Background(), []int64{line.ID}, date(2024, 1, 9))
	require.NoError(t, err)
	assert.Equal(t, 0, *lines[0].LateDays)
	assert.True(t, lines[0].Penalty.IsZero(), "penalty %s", lines[0].Penalty)
}

func TestRestituteValidation(t *testing.T) {
	svc, _ := setupTestService(t)

	var ve *ValidationError
	_, err := svc.Restitute(context.Background(), nil, date(2024, 1, 1))
	require.ErrorAs(t, err, &ve)

	_, err = svc.Restitute(context.Background(), []int64{1}, time.Time{})
	require.ErrorAs(t, err, &ve)
}

func TestRestituteUnknownLines(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Restitute(context.Background(), []int64{41, 42}, date(2024, 1, 1))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "lines", nf.Resource)
	assert.ElementsMatch(t, []int64{41, 42}, nf.IDs)
}

func TestRestituteAlreadyReturnedAbortsWholeBatch(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u1 := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)
	u2 := seedUnit(t, db, model.ID, "SN-2", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), client.ID, []int64{u1.ID, u2.ID}, date(2024, 1, 1), date(2024, 1, 5))
	require.NoError(t, err)

	var l1, l2 domain.ContractLine
	require.NoError(t, db.Where("unit_id = ?", u1.ID).First(&l1).Error)
	require.NoError(t, db.Where("unit_id = ?", u2.ID).First(&l2).Error)

	_, err = svc.Restitute(context.Background(), []int64{l1.ID}, date(2024, 1, 5))
	require.NoError(t, err)

	// batch containing the returned line fails entirely
	_, err = svc.Restitute(context.Background(), []int64{l1.ID, l2.ID}, date(2024, 1, 6))
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "already returned", ce.Reason)
	assert.Equal(t, []int64{l1.ID}, ce.IDs)

	// the other line is untouched and its unit still rented
	var fresh domain.ContractLine
	require.NoError(t, db.First(&fresh, l2.ID).Error)
	assert.Nil(t, fresh.ActualReturnDate)
	assert.Equal(t, domain.UnitRented, unitStatus(t, db, u2.ID))
}

func TestRestituteIsNotIdempotent(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)

	_, err := svc.Reserve(context.Background(), client.ID, []int64{u.ID}, date(2024, 1, 1), date(2024, 1, 5))
	require.NoError(t, err)
	var line domain.ContractLine
	require.NoError(t, db.Where("unit_id = ?", u.ID).First(&line).Error)

	_, err = svc.Restitute(context.Background(), []int64{line.ID}, date(2024, 1, 5))
	require.NoError(t, err)

	// the second call must fail and change nothing
	_, err = svc.Restitute(context.Background(), []int64{line.ID}, date(2024, 1, 9))
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	var fresh domain.ContractLine
	require.NoError(t, db.First(&fresh, line.ID).Error)
	assert.True(t, fresh.ActualReturnDate.Equal(date(2024, 1, 5)))
	assert.Equal(t, 0, *fresh.LateDays)
}

func TestOpenLinesAndContractSummaries(t *testing.T) {
	svc, db := setupTestService(t)
	model := seedModel(t, db)
	client := seedClient(t, db, "ada@example.com", nil)
	u1 := seedUnit(t, db, model.ID, "SN-1", "10.00", domain.UnitAvailable)
	u2 := seedUnit(t, db, model.ID, "SN-2", "10.00", domain.UnitAvailable)

	yesterday := dateOnly(time.Now()).AddDate(0, 0, -1)
	lastWeek := yesterday.AddDate(0, 0, -6)

	// overdue contract: planned return was yesterday, nothing returned
	_, err := svc.Reserve(context.Background(), client.ID, []int64{u1.ID}, lastWeek, yesterday)
	require.NoError(t, err)

	// completed contract with a penalty
	_, err = svc.Reserve(context.Background(), client.ID, []int64{u2.ID}, lastWeek, yesterday)
	require.NoError(t, err)
	var l2 domain.ContractLine
	require.NoError(t, db.Where("unit_id = ?", u2.ID).First(&l2).Error)
	_, err = svc.Restitute(context.Background(), []int64{l2.ID}, yesterday.AddDate(0, 0, 2))
	require.NoError(t, err)

	open, err := svc.OpenLines(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, u1.ID, open[0].UnitID)
	require.NotNil(t, open[0].Unit)
	assert.Equal(t, "SN-1", open[0].Unit.Serial)
	require.NotNil(t, open[0].Contract)
	require.NotNil(t, open[0].Contract.Client)

	summaries, err := svc.ContractSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// newest first: the completed one comes before the overdue one
	assert.Equal(t, ContractCompleted, summaries[0].Status)
	assert.True(t, summaries[0].TotalPenalties.Equal(d("10.00")), "penalties %s", summaries[0].TotalPenalties)
	assert.Equal(t, ContractOverdue, summaries[1].Status)
	assert.Equal(t, 1, summaries[1].OpenLines)

	contracts, err := svc.ContractsByClient(context.Background(), client.ID)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Greater(t, contracts[0].ID, contracts[1].ID)
}
