package models

import (
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`
	Role         string `gorm:"default:student"` // student, teacher, admin
	Avatar       string
	Bio          string
	Approved     bool `gorm:"default:false"`
	Reputation   int  `gorm:"default:0"` // derived cache, see likes controller
}

// CanPost reports whether the user may create discussions and comments.
// Teachers must be approved by an administrator first.
func (u *User) CanPost() bool {
	if u.Role == RoleTeacher {
		return u.Approved
	}
	return true
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
