package inputval

import (
	"net/url"
	"strings"

	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func registerCustomRules(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsValidHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation("materialtype", func(fl validator.FieldLevel) bool {
		return models.IsValidMaterialType(fl.Field().String())
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return models.IsValidPriority(fl.Field().String())
	})
	_ = v.RegisterValidation("eventtype", func(fl validator.FieldLevel) bool {
		return models.IsValidEventType(fl.Field().String())
	})
	_ = v.RegisterValidation("major", func(fl validator.FieldLevel) bool {
		return IsValidMajor(fl.Field().String())
	})
	_ = v.RegisterValidation("academicyear", func(fl validator.FieldLevel) bool {
		return IsValidAcademicYear(fl.Field().String())
	})
}

// IsValidHTTPURL reports whether s (trimmed) is an absolute http(s) URL with a host.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && !strings.ContainsAny(u.Host, " \t")
}

// IsValidObjectID reports whether s (trimmed) is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidMajor reports whether s is an allowed profile major.
func IsValidMajor(s string) bool {
	return containsFold(models.Majors, s)
}

// IsValidAcademicYear reports whether s is an allowed academic year.
func IsValidAcademicYear(s string) bool {
	return containsFold(models.AcademicYears, s)
}

func majorsList() []string        { return models.Majors }
func academicYearsList() []string { return models.AcademicYears }

func containsFold(list []string, s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
