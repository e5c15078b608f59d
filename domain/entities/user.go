package entities

import (
	"time"
)

// UserType distinguishes students from administrators
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeAdmin   UserType = "admin"
)

// User is a verified student identity. Every user owns exactly one Wallet.
type User struct {
	ID              int64     `db:"id" json:"id"`
	RegNumber       string    `db:"reg_number" json:"reg_number"`
	NIN             string    `db:"nin" json:"nin"`
	Surname         string    `db:"surname" json:"surname"`
	FirstName       string    `db:"first_name" json:"first_name"`
	MiddleName      string    `db:"middle_name" json:"middle_name,omitempty"`
	DateOfBirth     string    `db:"date_of_birth" json:"date_of_birth"`
	Gender          string    `db:"gender" json:"gender"`
	StateOfOrigin   string    `db:"state_of_origin" json:"state_of_origin"`
	LGAOfOrigin     string    `db:"lga_of_origin" json:"lga_of_origin"`
	AdmissionYear   string    `db:"admission_year" json:"admission_year"`
	Institution     string    `db:"institution" json:"institution"`
	InstitutionCode string    `db:"institution_code" json:"institution_code"`
	Course          string    `db:"course" json:"course"`
	CourseCode      string    `db:"course_code" json:"course_code"`
	AdmissionType   string    `db:"admission_type" json:"admission_type"`
	ProfilePicture  *string   `db:"profile_picture" json:"profile_picture,omitempty"`
	RequestID       string    `db:"request_id" json:"request_id"`
	UserType        UserType  `db:"user_type" json:"user_type"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name of the user
func (u *User) FullName() string {
	if u.MiddleName == "" {
		return u.FirstName + " " + u.Surname
	}
	return u.FirstName + " " + u.MiddleName + " " + u.Surname
}

// NewUserFromProfile builds an unsaved student user from a verified profile
func NewUserFromProfile(profile *StudentProfile) *User {
	return &User{
		RegNumber:       profile.RegNumber,
		NIN:             profile.NIN,
		Surname:         profile.Surname,
		FirstName:       profile.FirstName,
		MiddleName:      profile.MiddleName,
		DateOfBirth:     profile.DateOfBirth,
		Gender:          profile.Gender,
		StateOfOrigin:   profile.StateOfOrigin,
		LGAOfOrigin:     profile.LGAOfOrigin,
		AdmissionYear:   profile.AdmissionYear,
		Institution:     profile.Institution,
		InstitutionCode: profile.InstitutionCode,
		Course:          profile.Course,
		CourseCode:      profile.CourseCode,
		AdmissionType:   profile.AdmissionType,
		ProfilePicture:  profile.ProfilePicture,
		RequestID:       profile.RequestID,
		UserType:        UserTypeStudent,
	}
}
