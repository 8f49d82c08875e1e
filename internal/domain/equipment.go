package domain

import "github.com/shopspring/decimal"

type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitRented      UnitStatus = "rented"
	UnitMaintenance UnitStatus = "maintenance"
	UnitScrapped    UnitStatus = "scrapped"
)

// EquipmentUnit is one physical, serial-numbered machine. Status is owned by
// the rental transactions: available <-> rented only; maintenance and scrapped
// are set by external provisioning and are never rentable.
type EquipmentUnit struct {
	ID        int64           `json:"id" gorm:"primaryKey"`
	Serial    string          `json:"serial" gorm:"size:50;not null;uniqueIndex"`
	ModelID   int64           `json:"model_id" gorm:"not null;index"`
	DailyRate decimal.Decimal `json:"daily_rate" gorm:"type:numeric(10,2);not null"`
	Status    UnitStatus      `json:"status" gorm:"size:20;not null;default:available"`

	Model *EquipmentModel `json:"model,omitempty" gorm:"foreignKey:ModelID"`
}

func (EquipmentUnit) TableName() string { return "equipment_units" }
