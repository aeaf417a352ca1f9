package repository

import (
	"time"

	"fandreams/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateRole(userID uint, role string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now()}).Error
}

type CreatorProfileRepository struct {
	db *gorm.DB
}

func NewCreatorProfileRepository(db *gorm.DB) *CreatorProfileRepository {
	return &CreatorProfileRepository{db: db}
}

func (r *CreatorProfileRepository) GetByUserID(userID uint) (*models.CreatorProfile, error) {
	var p models.CreatorProfile
	if err := r.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CreatorProfileRepository) GetOrCreate(userID uint) (*models.CreatorProfile, error) {
	p := models.CreatorProfile{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err == nil && p.ID != 0 {
		return &p, nil
	}
	return r.GetByUserID(userID)
}

// AddEarnings bumps lifetime fiat earnings with an in-database increment.
func (r *CreatorProfileRepository) AddEarnings(userID uint, fiat float64) error {
	return r.db.Model(&models.CreatorProfile{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_earnings": gorm.Expr("total_earnings + ?", fiat),
			"updated_at":     time.Now(),
		}).Error
}

func (r *CreatorProfileRepository) IncrementSubscribers(userID uint, delta int) error {
	return r.db.Model(&models.CreatorProfile{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_subscribers": gorm.Expr("total_subscribers + ?", delta),
			"updated_at":        time.Now(),
		}).Error
}
