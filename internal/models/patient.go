package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Patient is a registered portal user.
type Patient struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone          string     `json:"phone,omitempty"`
	DateOfBirth    *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Address        string     `json:"address,omitempty"`
	MedicalHistory string     `json:"medical_history,omitempty"`
	Password       string     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SetPassword stores the bcrypt hash of password.
func (p *Patient) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Password = string(hashed)
	return nil
}

func (p *Patient) CheckPassword(password string) bool {
	return VerifyPassword(p.Password, password)
}
