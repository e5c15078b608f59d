package entities

import "time"

// StudentProfile is the identity record returned by the national
// verification provider after a successful exam-record check.
type StudentProfile struct {
	RegNumber       string  `json:"RegNumber"`
	NIN             string  `json:"NIN"`
	Surname         string  `json:"Surname"`
	FirstName       string  `json:"FirstName"`
	MiddleName      string  `json:"Middlename"`
	DateOfBirth     string  `json:"DateofBirth"`
	Gender          string  `json:"Gender"`
	StateOfOrigin   string  `json:"StateofOrigin"`
	LGAOfOrigin     string  `json:"LGAofOrigin"`
	AdmissionYear   string  `json:"AdmissionYear"`
	Institution     string  `json:"Institution"`
	InstitutionCode string  `json:"InstitutionCode"`
	Course          string  `json:"Course"`
	CourseCode      string  `json:"CourseCode"`
	AdmissionType   string  `json:"AdmissionType"`
	ProfilePicture  *string `json:"ProfilePicture"`
	RequestID       string  `json:"RequestID"`
}

// Institution is a tertiary institution known to the verification provider
type Institution struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	MDACode    *string    `json:"mdacode,omitempty"`
	Level      *string    `json:"level,omitempty"`
	Type       string     `json:"type"`
	ShortName  *string    `json:"short_name,omitempty"`
	ProviderID string     `json:"provider_id"`
	Status     string     `json:"status"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}
