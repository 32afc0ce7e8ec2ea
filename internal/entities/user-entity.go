// Файл: internal/entities/user-entity.go
package entities

import "cmms-system/pkg/types"

type User struct {
	ID           uint64 `json:"id" db:"id"`
	Fio          string `json:"fio" db:"fio"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
	IsActive     bool   `json:"is_active" db:"is_active"`

	types.BaseEntity
}
