package rental

import (
	"errors"

	"gorm.io/gorm"

	"locamat/internal/domain"
)

// isClientRisky classifies a client from their return history: a client with
// no contracts is not risky; otherwise only the most recent contract counts,
// and it marks the client risky if any of its lines came back late. Plain
// read, no locks.
func isClientRisky(tx *gorm.DB, clientID int64) (bool, error) {
	var latest domain.Contract
	err := tx.Where("client_id = ?", clientID).Order("id DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var lines []domain.ContractLine
	if err := tx.Where("contract_id = ?", latest.ID).Find(&lines).Error; err != nil {
		return false, err
	}

	for _, l := range lines {
		if l.ActualReturnDate != nil && l.ActualReturnDate.After(l.PlannedReturnDate) {
			return true, nil
		}
	}
	return false, nil
}
