package domain

type Category struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Label string `json:"label" gorm:"size:50;not null;uniqueIndex"`
}

func (Category) TableName() string { return "categories" }

type Brand struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Label string `json:"label" gorm:"size:50;not null;uniqueIndex"`
}

func (Brand) TableName() string { return "brands" }

// EquipmentModel is a catalog entry (e.g. "K160 excavator"); physical units
// reference it and carry the rentable state.
type EquipmentModel struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"size:100;not null"`
	CategoryID int64  `json:"category_id" gorm:"not null;index"`
	BrandID    int64  `json:"brand_id" gorm:"not null;index"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Brand    *Brand    `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
}

func (EquipmentModel) TableName() string { return "equipment_models" }
