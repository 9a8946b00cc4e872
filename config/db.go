package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-management/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PasswordHashFunc hashes seed account passwords with the configured scheme.
type PasswordHashFunc func(password string) (string, error)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// ResolveMySQLDSN reads MYSQL_URL / DATABASE_URL, falling back to DB_* variables.
func ResolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// NewGormLogger routes gorm's SQL log through zap.
func NewGormLogger(log *zap.Logger, level logger.LogLevel) logger.Interface {
	return logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// ConnectDatabase opens MySQL. It does not migrate; see Migrate.
func ConnectDatabase(log *zap.Logger) (*gorm.DB, error) {
	dsn, err := ResolveMySQLDSN()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: NewGormLogger(log, logger.Warn)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates the schema in parent->child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CustomerType{},
		&models.User{},
		&models.RoomType{},
		&models.Room{},
		&models.RoomRegulation{},
		&models.ExtraChargeRegulation{},
		&models.CustomerRegulation{},
		&models.RoomReservationForm{},
		&models.Bill{},
		&models.RoomRentalForm{},
		&models.Comment{},
	)
}

// SeedDatabase inserts reference data and the staff accounts. It only
// creates rows that are missing, so it is safe to run on every start.
func SeedDatabase(db *gorm.DB, hash PasswordHashFunc, staffPassword string, log *zap.Logger) error {
	// ---------------- Customer types + coefficients ----------------
	domestic, err := firstOrCreate(db, &models.CustomerType{Type: models.CustomerTypeDomestic}, "type = ?", models.CustomerTypeDomestic)
	if err != nil {
		return fmt.Errorf("seed customer types: %w", err)
	}
	foreign, err := firstOrCreate(db, &models.CustomerType{Type: models.CustomerTypeForeign}, "type = ?", models.CustomerTypeForeign)
	if err != nil {
		return fmt.Errorf("seed customer types: %w", err)
	}

	// ---------------- Staff ----------------
	admin, err := seedStaff(db, hash, models.User{
		Name:               "Administrator",
		Username:           "admin",
		Email:              "admin@hotel.local",
		Phone:              "0000000001",
		Gender:             "male",
		IdentificationCard: "000000000001",
		Role:               models.RoleAdmin,
		CustomerTypeID:     domestic.ID,
	}, staffPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := seedStaff(db, hash, models.User{
		Name:               "Front Desk",
		Username:           "reception",
		Email:              "reception@hotel.local",
		Phone:              "0000000002",
		Gender:             "female",
		IdentificationCard: "000000000002",
		Role:               models.RoleReceptionist,
		CustomerTypeID:     domestic.ID,
	}, staffPassword); err != nil {
		return fmt.Errorf("seed receptionist: %w", err)
	}

	coefficients := map[uint]float64{domestic.ID: 1.0, foreign.ID: 1.5}
	for typeID, coefficient := range coefficients {
		reg := &models.CustomerRegulation{Coefficient: coefficient, UserID: admin.ID, CustomerTypeID: typeID}
		if _, err := firstOrCreate(db, reg, "customer_type_id = ?", typeID); err != nil {
			return fmt.Errorf("seed customer regulations: %w", err)
		}
	}

	// ---------------- Room types + regulations ----------------
	roomTypes := []struct {
		name  string
		price float64
	}{
		{"Single Bedroom", 500000},
		{"Twin Bedroom", 750000},
		{"Double Bedroom", 900000},
	}
	for i, rt := range roomTypes {
		roomType, err := firstOrCreate(db, &models.RoomType{Name: rt.name}, "name = ?", rt.name)
		if err != nil {
			return fmt.Errorf("seed room types: %w", err)
		}

		reg, err := firstOrCreate(db,
			&models.RoomRegulation{NumberOfGuests: 3, UserID: admin.ID, RoomTypeID: roomType.ID},
			"room_type_id = ?", roomType.ID)
		if err != nil {
			return fmt.Errorf("seed room regulations: %w", err)
		}
		if _, err := firstOrCreate(db,
			&models.ExtraChargeRegulation{Rate: 0.25, UserID: admin.ID, RoomRegulationID: reg.ID},
			"room_regulation_id = ?", reg.ID); err != nil {
			return fmt.Errorf("seed extra charge regulations: %w", err)
		}

		var roomCount int64
		db.Model(&models.Room{}).Where("room_type_id = ?", roomType.ID).Count(&roomCount)
		if roomCount == 0 {
			rooms := []models.Room{
				{Name: fmt.Sprintf("Room %d01", i+1), Price: rt.price, UserID: admin.ID, RoomTypeID: roomType.ID},
				{Name: fmt.Sprintf("Room %d02", i+1), Price: rt.price, UserID: admin.ID, RoomTypeID: roomType.ID},
			}
			if err := db.Create(&rooms).Error; err != nil {
				return fmt.Errorf("seed rooms: %w", err)
			}
		}
	}

	log.Info("database seeded")
	return nil
}

func firstOrCreate[T any](db *gorm.DB, value *T, query string, args ...any) (*T, error) {
	var existing T
	err := db.Where(query, args...).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := db.Create(value).Error; err != nil {
		return nil, err
	}
	return value, nil
}

func seedStaff(db *gorm.DB, hash PasswordHashFunc, u models.User, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("username = ?", u.Username).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := hash(password)
	if err != nil {
		return nil, err
	}
	u.Password = hashed
	if err := db.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
