package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User is an ERP account. Inactive users cannot log in.
type User struct {
	BaseModel
	Username     string    `json:"username" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	Roles        []Role    `json:"roles" gorm:"many2many:user_roles"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RoleNames returns the names of the user's roles
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Policies returns the policies granted by all roles, without duplicates
func (u *User) Policies() []Policy {
	seen := make(map[string]bool)
	policies := make([]Policy, 0)
	for _, r := range u.Roles {
		for _, p := range r.Policies {
			key := p.Tag + "\x00" + p.Permission
			if seen[key] {
				continue
			}
			seen[key] = true
			policies = append(policies, p)
		}
	}
	return policies
}

// Role groups policies
type Role struct {
	BaseModel
	Name     string   `json:"name" gorm:"unique;not null"`
	Policies []Policy `json:"policies" gorm:"many2many:role_policies"`
}

// Policy grants a permission on a tagged area of the ERP
type Policy struct {
	BaseModel
	Tag        string `json:"tag" gorm:"not null;uniqueIndex:idx_policy"`
	Permission string `json:"permission" gorm:"not null;uniqueIndex:idx_policy"`
}

// RevokedToken records the jti of a token invalidated by logout
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;type:varchar(26)"`
	Username  string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Record is a seeded JSON document served at Path. Collections hold a
// JSON array, singletons an object.
type Record struct {
	BaseModel
	Path string `json:"path" gorm:"unique;not null"`
	Body string `json:"body" gorm:"type:text;not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&Policy{}, &Role{}, &User{}, &RevokedToken{}, &Record{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}

// FindUserByUsername loads a user with roles and policies
func FindUserByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	err := db.Preload("Roles.Policies").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IsTokenRevoked reports whether jti was revoked by a logout
func IsTokenRevoked(db *gorm.DB, jti string) (bool, error) {
	var count int64
	if err := db.Model(&RevokedToken{}).Where("token_id = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpiredRevocations deletes revocations of tokens that have expired
func PurgeExpiredRevocations(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at < ?", now).Delete(&RevokedToken{})
	return res.RowsAffected, res.Error
}

// FindRecord loads the document served at path
func FindRecord(db *gorm.DB, path string) (*Record, error) {
	var rec Record
	if err := db.Where("path = ?", path).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
