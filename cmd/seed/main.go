package main

import (
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"locamat/internal/config"
	"locamat/internal/database"
	"locamat/internal/domain"
)

// Seeds a demo catalog, a couple of clients and a staff login. Safe to run
// repeatedly: rows are matched on their natural keys.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	if err := seed(db); err != nil {
		log.Fatal(err)
	}
	log.Println("seed complete")
}

func seed(db *gorm.DB) error {
	staffHash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	staff := domain.StaffUser{Email: "desk@locamat.local", PasswordHash: string(staffHash), Name: "Desk Agent"}
	if err := db.Where("email = ?", staff.Email).FirstOrCreate(&staff).Error; err != nil {
		return err
	}

	categories := map[string]*domain.Category{}
	for _, label := range []string{"Excavation", "Lifting", "Compaction"} {
		c := domain.Category{Label: label}
		if err := db.Where("label = ?", label).FirstOrCreate(&c).Error; err != nil {
			return err
		}
		categories[label] = &c
	}

	brands := map[string]*domain.Brand{}
	for _, label := range []string{"Krupp", "Bomag", "Manitou"} {
		b := domain.Brand{Label: label}
		if err := db.Where("label = ?", label).FirstOrCreate(&b).Error; err != nil {
			return err
		}
		brands[label] = &b
	}

	models := []struct {
		name     string
		category string
		brand    string
	}{
		{"K160 excavator", "Excavation", "Krupp"},
		{"BW120 roller", "Compaction", "Bomag"},
		{"MT625 telehandler", "Lifting", "Manitou"},
	}
	modelIDs := map[string]int64{}
	for _, m := range models {
		em := domain.EquipmentModel{
			Name:       m.name,
			CategoryID: categories[m.category].ID,
			BrandID:    brands[m.brand].ID,
		}
		if err := db.Where("name = ?", m.name).FirstOrCreate(&em).Error; err != nil {
			return err
		}
		modelIDs[m.name] = em.ID
	}

	units := []struct {
		serial string
		model  string
		rate   string
	}{
		{"EXC-001", "K160 excavator", "250.00"},
		{"EXC-002", "K160 excavator", "250.00"},
		{"ROL-001", "BW120 roller", "120.00"},
		{"TEL-001", "MT625 telehandler", "180.00"},
		{"TEL-002", "MT625 telehandler", "180.00"},
	}
	for _, u := range units {
		unit := domain.EquipmentUnit{
			Serial:    u.serial,
			ModelID:   modelIDs[u.model],
			DailyRate: decimal.RequireFromString(u.rate),
			Status:    domain.UnitAvailable,
		}
		if err := db.Where("serial = ?", u.serial).FirstOrCreate(&unit).Error; err != nil {
			return err
		}
	}

	vip := true
	clients := []domain.Client{
		{FirstName: "Ada", LastName: "Martin", Address: "1 rue des Forges", PostalCode: "75011", Phone: "0600000001", Email: "ada.martin@example.com", VIP: &vip},
		{FirstName: "Jules", LastName: "Bernard", Address: "8 avenue Foch", PostalCode: "69003", Phone: "0600000002", Email: "jules.bernard@example.com"},
	}
	for i := range clients {
		if err := db.Where("email = ?", clients[i].Email).FirstOrCreate(&clients[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
