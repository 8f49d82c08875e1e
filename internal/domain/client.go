package domain

// Client is a rental customer. The core never mutates clients; the VIP flag
// stays nullable because sales only classifies a client after a first review.
type Client struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	FirstName  string `json:"first_name" gorm:"size:50;not null"`
	LastName   string `json:"last_name" gorm:"size:50;not null"`
	Address    string `json:"address" gorm:"size:100;not null"`
	PostalCode string `json:"postal_code" gorm:"size:10;not null"`
	Phone      string `json:"phone" gorm:"size:20;not null"`
	Email      string `json:"email" gorm:"size:100;not null;uniqueIndex"`
	VIP        *bool  `json:"vip"`
}

func (Client) TableName() string { return "clients" }
