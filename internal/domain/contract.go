package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract is created exactly once per successful reservation and never
// mutated afterwards. Dates are date-only values at UTC midnight.
type Contract struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ClientID  int64     `json:"client_id" gorm:"not null;index"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Client *Client        `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Lines  []ContractLine `json:"lines,omitempty" gorm:"foreignKey:ContractID"`
}

func (Contract) TableName() string { return "contracts" }

// ContractLine ties one unit to a contract. ActualReturnDate, LateDays and
// Penalty stay null until the line is returned, then never change again.
type ContractLine struct {
	ID                int64            `json:"id" gorm:"primaryKey"`
	ContractID        int64            `json:"contract_id" gorm:"not null;index"`
	UnitID            int64            `json:"unit_id" gorm:"not null;index"`
	PlannedReturnDate time.Time        `json:"planned_return_date" gorm:"not null"`
	ActualReturnDate  *time.Time       `json:"actual_return_date"`
	LateDays          *int             `json:"late_days"`
	Penalty           *decimal.Decimal `json:"penalty" gorm:"type:numeric(10,2)"`

	Contract *Contract      `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	Unit     *EquipmentUnit `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
}

func (ContractLine) TableName() string { return "contract_lines" }

// Returned reports whether the line has been restituted.
func (l ContractLine) Returned() bool { return l.ActualReturnDate != nil }
