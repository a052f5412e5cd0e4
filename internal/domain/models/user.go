// internal/domain/models/user.go
package models

import (
	"time"
)

// User is the local profile of an identity managed by the external identity
// provider. ID is the provider's subject identifier.
//
// NOTE:
//   - Tags are not embedded on User. Use the tags collection.
//   - Profiles are created either through onboarding or lazily on the first
//     material a user saves (with placeholder Major/AcademicYear).
type User struct {
	ID           string `bson:"_id" json:"id"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	Major        string `bson:"major" json:"major"`
	AcademicYear string `bson:"academic_year" json:"academicYear"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Allowed profile values.
var (
	Majors        = []string{"cs", "biology", "business", "engineering", "other"}
	AcademicYears = []string{"freshman", "sophomore", "junior", "senior", "graduate"}
)

// Placeholders used when a profile is provisioned without onboarding.
const (
	PlaceholderMajor        = "undeclared"
	PlaceholderAcademicYear = "unspecified"
)

// IsPlaceholder reports whether u was provisioned without onboarding.
func (u User) IsPlaceholder() bool {
	return u.Major == PlaceholderMajor || u.AcademicYear == PlaceholderAcademicYear
}

// DefaultTags are seeded for every new profile.
var DefaultTags = []string{"Homework", "Exam", "Notes", "Research"}
