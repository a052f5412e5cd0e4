// Package profiles creates local user profiles for identities issued by the
// external identity provider.
//
// A profile is created either explicitly (onboarding) or lazily the first time
// a signed-in user saves a material. Both paths seed the default tags.
package profiles

import (
	"context"
	"errors"
	"strings"

	userstore "github.com/dalemusser/studypal/internal/app/store/users"
	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// UserStore is the subset of the user store the provisioner needs.
// Implementations return userstore.ErrNotFound and userstore.ErrExists.
type UserStore interface {
	Get(ctx context.Context, id string) (models.User, error)
	Insert(ctx context.Context, u models.User) (models.User, error)
	UpdateAcademics(ctx context.Context, id, major, year string) error
}

// TagSeeder creates any missing tags for a user.
type TagSeeder interface {
	Seed(ctx context.Context, userID string, names []string) error
}

type Provisioner struct {
	Users UserStore
	Tags  TagSeeder
	Log   *zap.Logger
}

// Ensure creates a placeholder profile for ident if none exists.
// created reports whether this call created it.
func (p *Provisioner) Ensure(ctx context.Context, ident Identity) (created bool, err error) {
	_, err = p.Users.Get(ctx, ident.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return false, err
	}

	_, err = p.create(ctx, ident, models.PlaceholderMajor, models.PlaceholderAcademicYear)
	if errors.Is(err, userstore.ErrExists) {
		// a concurrent request won
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.Log.Info("provisioned profile", zap.String("user_id", ident.ID))
	return true, nil
}

// Onboard creates a profile with the chosen major and academic year. A
// placeholder profile left by Ensure is completed instead; any other
// existing profile is a conflict.
func (p *Provisioner) Onboard(ctx context.Context, ident Identity, major, year string) (models.User, error) {
	u, err := p.create(ctx, ident, major, year)
	if errors.Is(err, userstore.ErrExists) {
		return p.complete(ctx, ident.ID, major, year)
	}
	if err != nil {
		return models.User{}, apierr.Dependency("create profile", err)
	}
	return u, nil
}

func (p *Provisioner) complete(ctx context.Context, id, major, year string) (models.User, error) {
	u, err := p.Users.Get(ctx, id)
	if err != nil {
		return models.User{}, apierr.Dependency("load profile", err)
	}
	if !u.IsPlaceholder() {
		return models.User{}, apierr.Conflict("A profile already exists for this account.")
	}

	u.Major = strings.ToLower(strings.TrimSpace(major))
	u.AcademicYear = strings.ToLower(strings.TrimSpace(year))
	if err := p.Users.UpdateAcademics(ctx, id, u.Major, u.AcademicYear); err != nil {
		return models.User{}, apierr.Dependency("update profile", err)
	}
	p.Log.Info("completed placeholder profile", zap.String("user_id", id))
	return u, nil
}

func (p *Provisioner) create(ctx context.Context, ident Identity, major, year string) (models.User, error) {
	u, err := p.Users.Insert(ctx, models.User{
		ID:           ident.ID,
		Name:         displayName(ident),
		Email:        ident.Email,
		Major:        strings.ToLower(strings.TrimSpace(major)),
		AcademicYear: strings.ToLower(strings.TrimSpace(year)),
	})
	if err != nil {
		return models.User{}, err
	}
	if err := p.Tags.Seed(ctx, u.ID, models.DefaultTags); err != nil {
		// the profile exists; tags can be created later by hand
		p.Log.Warn("seed default tags failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

// displayName falls back to the email's local part, then to "Student".
func displayName(ident Identity) string {
	if n := strings.TrimSpace(ident.Name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(ident.Email, "@"); ok && local != "" {
		return local
	}
	return "Student"
}
