package models

import (
	"strings"
	"time"
)

const (
	RoleStudent   = "STUDENT"
	RoleOrganizer = "ORGANIZER"

	OrganizerPending  = "PENDING"
	OrganizerApproved = "APPROVED"
	OrganizerRejected = "REJECTED"
)

type User struct {
	ID              int64      `bson:"id" json:"id"`
	Name            string     `bson:"name" json:"name" validate:"required"`
	Surname         string     `bson:"surname" json:"surname" validate:"required"`
	Age             int        `bson:"age" json:"age" validate:"required,gt=0"`
	Gender          string     `bson:"gender" json:"gender" validate:"required"`
	Email           string     `bson:"email" json:"email" validate:"required,email"`
	Phone           string     `bson:"phone" json:"phone" validate:"required,len=10,numeric"`
	RegNumber       string     `bson:"regNumber" json:"regNumber" validate:"required"`
	Password        string     `bson:"password" json:"password,omitempty" validate:"required"`
	Role            string     `bson:"role" json:"role" validate:"required,oneof=STUDENT ORGANIZER"`
	OrganizerStatus string     `bson:"organizerStatus,omitempty" json:"organizerStatus,omitempty"`
	LastSeen        *time.Time `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`

	Department string `bson:"department,omitempty" json:"department,omitempty"`
	BloodGroup string `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	Address    string `bson:"address,omitempty" json:"address,omitempty"`
	Branch     string `bson:"branch,omitempty" json:"branch,omitempty"`
	Pincode    string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// FullName joins name and surname, falling back to the registration number.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.Name + " " + u.Surname)
	if full == "" {
		return u.RegNumber
	}
	return full
}

// RoleLetter is the single-letter role printed on a ticket.
func (u *User) RoleLetter() string {
	if u.Role == RoleOrganizer {
		return "O"
	}
	return "S"
}

// Public returns a copy without the password hash.
func (u User) Public() User {
	u.Password = ""
	return u
}

// Touch records activity for the active-user statistics.
func (u *User) Touch(now time.Time) {
	t := now.UTC()
	u.LastSeen = &t
}

type Admin struct {
	Username string `bson:"username" json:"username"`
	Password string `bson:"password" json:"-"`
}

type ProfileUpdate struct {
	Department string `json:"department"`
	BloodGroup string `json:"bloodGroup"`
	Address    string `json:"address"`
	Branch     string `json:"branch"`
	Pincode    string `json:"pincode"`
}

// Apply copies the non-empty fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Department != "" {
		u.Department = p.Department
	}
	if p.BloodGroup != "" {
		u.BloodGroup = p.BloodGroup
	}
	if p.Address != "" {
		u.Address = p.Address
	}
	if p.Branch != "" {
		u.Branch = p.Branch
	}
	if p.Pincode != "" {
		u.Pincode = p.Pincode
	}
}
