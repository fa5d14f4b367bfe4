package models

import "time"

// UserRole controls access to the admin API
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is a marketplace account. Passwords are stored as bcrypt hashes and
// never serialized.
type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string     `gorm:"type:varchar(30)" json:"phone,omitempty"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	LastLogin    *time.Time `gorm:"type:datetime" json:"last_login,omitempty"`
	CreatedAt    time.Time  `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may access moderation endpoints
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
