package main

import (
	"errors"
	"time"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/config"
	"go-inventory-api/pkg/database"
	"go-inventory-api/pkg/logger"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     model.Role
}

var defaultUsers = []seedUser{
	{"Administrador Sistema", "admin@inventario.com", "admin123456", model.RoleAdmin},
	{"Cliente de Prueba", "cliente@test.com", "cliente123456", model.RoleClient},
}

type seedProduct struct {
	lotCode     string
	name        string
	price       int64
	quantity    int
	description string
}

var defaultProducts = []seedProduct{
	{"LOT-001", "Laptop Dell Inspiron 15", 2500000, 15, "Laptop Dell Inspiron 15 con procesador Intel i5, 8GB RAM, 256GB SSD"},
	{"LOT-002", "Mouse Inalámbrico Logitech", 200000, 50, "Mouse inalámbrico Logitech MX Master 3 con precisión avanzada"},
	{"LOT-003", "Teclado Mecánico RGB", 89999, 25, "Teclado mecánico gaming con retroiluminación RGB y switches Cherry MX"},
	{"LOT-004", "Monitor 24\" Full HD", 799000, 12, "Monitor LED 24 pulgadas Full HD 1920x1080 con entrada HDMI"},
	{"LOT-005", "Auriculares Bluetooth", 150000, 30, "Auriculares inalámbricos Bluetooth con cancelación de ruido"},
}

func main() {
	// 1. Load Env
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.AppEnv)

	// 2. Setup Database
	db, err := database.Open(database.Options{Driver: cfg.DBDriver, DSN: cfg.DSN()})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// 3. Seed
	if err := seedUsers(repository.NewUserRepo(db)); err != nil {
		log.WithError(err).Fatal("Failed to seed users")
	}
	if err := seedProducts(repository.NewProductRepo(db)); err != nil {
		log.WithError(err).Fatal("Failed to seed products")
	}
	log.Info("Seed completed")
}

// seedUsers creates the default accounts if they don't exist
func seedUsers(userRepo repository.UserRepository) error {
	for _, su := range defaultUsers {
		_, err := userRepo.FindByEmail(su.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user := &model.User{
			Name:     su.name,
			Email:    su.email,
			Role:     su.role,
			IsActive: true,
		}
		user.CreatedBy = "system"
		user.UpdatedBy = "system"
		if err := user.SetPassword(su.password); err != nil {
			return err
		}
		if err := userRepo.Create(user); err != nil {
			return err
		}
		log.WithFields(log.Fields{"email": su.email, "role": su.role}).Info("User created")
	}
	return nil
}

func seedProducts(productRepo repository.ProductRepository) error {
	for _, sp := range defaultProducts {
		_, err := productRepo.FindByLotCode(sp.lotCode)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		product := &model.Product{
			LotCode:           sp.lotCode,
			Name:              sp.name,
			Price:             decimal.NewFromInt(sp.price),
			AvailableQuantity: sp.quantity,
			IngestedAt:        time.Now(),
			Description:       sp.description,
			Status:            model.ProductActive,
		}
		product.CreatedBy = "system"
		product.UpdatedBy = "system"
		if err := productRepo.Create(product); err != nil {
			return err
		}
		log.WithField("lot_code", sp.lotCode).Info("Product created")
	}
	return nil
}
