package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Purpose string

const (
	PurposeStudy   Purpose = "STUDY"
	PurposeWork    Purpose = "WORK"
	PurposeTourism Purpose = "TOURISM"
)

type Language string

const (
	LanguageEN Language = "EN"
	LanguageFR Language = "FR"
)

// Priority doubles as the funds-adequacy level of a profile.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeStudy, PurposeWork, PurposeTourism:
		return true
	}
	return false
}

func (l Language) Valid() bool {
	return l == LanguageEN || l == LanguageFR
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the applicant input for one planning request.
type Profile struct {
	OriginCountry        string   `json:"origin_country"`
	DestinationCountry   string   `json:"destination_country"`
	Purpose              Purpose  `json:"purpose"`
	PlannedDepartureDate Date     `json:"planned_departure_date"`
	DurationMonths       int      `json:"duration_months"`
	PassportExpiryDate   Date     `json:"passport_expiry_date"`
	HasSponsor           bool     `json:"has_sponsor"`
	ProofOfFundsLevel    Priority `json:"proof_of_funds_level"`
	Language             Language `json:"language"`
	Notes                *string  `json:"notes,omitempty"`
}

// FieldError names one rejected profile field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProfileError carries every field problem found by NewProfile.
type ProfileError struct {
	Fields []FieldError
}

func (e *ProfileError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidProfile, strings.Join(parts, "; "))
}

func (e *ProfileError) Unwrap() error { return ErrInvalidProfile }

// NewProfile normalizes enum casing and surrounding whitespace, then
// validates the result. The returned profile is treated as immutable.
func NewProfile(p Profile) (Profile, error) {
	p.OriginCountry = strings.TrimSpace(p.OriginCountry)
	p.DestinationCountry = strings.TrimSpace(p.DestinationCountry)
	p.Purpose = Purpose(strings.ToUpper(strings.TrimSpace(string(p.Purpose))))
	p.ProofOfFundsLevel = Priority(strings.ToUpper(strings.TrimSpace(string(p.ProofOfFundsLevel))))
	p.Language = Language(strings.ToUpper(strings.TrimSpace(string(p.Language))))
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) Validate() error {
	var fields []FieldError
	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}
	if p.OriginCountry == "" {
		add("origin_country", "is required")
	}
	if p.DestinationCountry == "" {
		add("destination_country", "is required")
	}
	if !p.Purpose.Valid() {
		add("purpose", "must be one of STUDY, WORK, TOURISM")
	}
	if p.PlannedDepartureDate.IsZero() {
		add("planned_departure_date", "is required")
	}
	if p.DurationMonths <= 0 {
		add("duration_months", "must be positive")
	}
	if p.PassportExpiryDate.IsZero() {
		add("passport_expiry_date", "is required")
	}
	if !p.ProofOfFundsLevel.Valid() {
		add("proof_of_funds_level", "must be one of LOW, MEDIUM, HIGH")
	}
	if !p.Language.Valid() {
		add("language", "must be one of EN, FR")
	}
	if len(fields) > 0 {
		return &ProfileError{Fields: fields}
	}
	return nil
}
