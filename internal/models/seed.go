package models

import (
	"embed"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures/records.json
var fixtures embed.FS

// SeedUser is an account created by Seed
type SeedUser struct {
	Username string
	Password string
	Active   bool
	Role     string
}

// DefaultUsers are the accounts every mock database starts with
var DefaultUsers = []SeedUser{
	{Username: "admin", Password: "admin123", Active: true, Role: "ADMIN"},
	{Username: "pepe", Password: "secret1234", Active: false, Role: "OPERARIO"},
}

var rolePolicies = map[string][]Policy{
	"ADMIN": {
		{Tag: "produccion", Permission: "read"},
		{Tag: "produccion", Permission: "write"},
		{Tag: "inventario", Permission: "read"},
		{Tag: "inventario", Permission: "write"},
		{Tag: "reportes", Permission: "read"},
		{Tag: "administracion", Permission: "write"},
	},
	"OPERARIO": {
		{Tag: "produccion", Permission: "read"},
	},
}

// Seed creates the default roles, users and records. Existing rows are
// left untouched so it can run on every start.
func Seed(db *gorm.DB, hash func(string) (string, error)) error {
	return db.Transaction(func(tx *gorm.DB) error {
		roles := make(map[string]*Role, len(rolePolicies))
		for name, policies := range rolePolicies {
			role, err := seedRole(tx, name, policies)
			if err != nil {
				return err
			}
			roles[name] = role
		}

		for _, su := range DefaultUsers {
			if err := seedUser(tx, su, roles[su.Role], hash); err != nil {
				return err
			}
		}

		return seedRecords(tx)
	})
}

func seedRole(tx *gorm.DB, name string, policies []Policy) (*Role, error) {
	role := Role{Name: name}
	if err := tx.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to seed role %s: %w", name, err)
	}

	attached := make([]Policy, 0, len(policies))
	for _, p := range policies {
		policy := Policy{Tag: p.Tag, Permission: p.Permission}
		if err := tx.Where(Policy{Tag: p.Tag, Permission: p.Permission}).FirstOrCreate(&policy).Error; err != nil {
			return nil, fmt.Errorf("failed to seed policy %s:%s: %w", p.Tag, p.Permission, err)
		}
		attached = append(attached, policy)
	}

	if err := tx.Model(&role).Association("Policies").Replace(attached); err != nil {
		return nil, fmt.Errorf("failed to attach policies to %s: %w", name, err)
	}
	return &role, nil
}

func seedUser(tx *gorm.DB, su SeedUser, role *Role, hash func(string) (string, error)) error {
	var count int64
	if err := tx.Model(&User{}).Where("username = ?", su.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := hash(su.Password)
	if err != nil {
		return err
	}

	user := User{Username: su.Username, PasswordHash: passwordHash, Active: su.Active}
	if role != nil {
		user.Roles = []Role{*role}
	}
	// gorm writes the column default for a false Active, so inactive users are updated after create
	if err := tx.Omit("Roles.*").Create(&user).Error; err != nil {
		return fmt.Errorf("failed to seed user %s: %w", su.Username, err)
	}
	if !su.Active {
		if err := tx.Model(&user).Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate %s: %w", su.Username, err)
		}
	}
	return nil
}

func seedRecords(tx *gorm.DB) error {
	data, err := fixtures.ReadFile("fixtures/records.json")
	if err != nil {
		return err
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("invalid fixtures: %w", err)
	}

	for path, body := range docs {
		rec := Record{Path: path, Body: string(body)}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to seed %s: %w", path, err)
		}
	}
	return nil
}
