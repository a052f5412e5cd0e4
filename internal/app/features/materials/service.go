// internal/app/features/materials/service.go
package materials

import (
	"context"
	"errors"
	"time"

	materialstore "github.com/dalemusser/studypal/internal/app/store/materials"
	"github.com/dalemusser/studypal/internal/app/store/queries/materialfilter"
	"github.com/dalemusser/studypal/internal/app/system/activity"
	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/metrics"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the material persistence the service needs. Implementations
// return materialstore.ErrDuplicate and materialstore.ErrNotFound.
type Store interface {
	Create(ctx context.Context, m models.Material) (models.Material, error)
	ExistsDuplicate(ctx context.Context, ownerID, title, fileID string) (bool, error)
	List(ctx context.Context, ownerID string, f materialfilter.Filter) ([]models.Material, error)
	Get(ctx context.Context, ownerID string, id primitive.ObjectID) (models.Material, error)
	Delete(ctx context.Context, ownerID string, id primitive.ObjectID) error
}

// TagCounter keeps the advisory per-tag material counts.
type TagCounter interface {
	Adjust(ctx context.Context, userID string, names []string, delta int64) error
}

// Service implements the material operations independent of HTTP.
type Service struct {
	Materials Store
	Tags      TagCounter
	Profiles  *profiles.Provisioner
	Blobs     blobstore.Store
	Activity  activity.Publisher
	Metrics   *metrics.Metrics
	Log       *zap.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates in and stores it for ident.
//
// Errors are *apierr.Error: validation (400), conflict (409) or dependency.
// A pdf must reference an uploaded blob; its stored size is the blob's.
// Profile provisioning, tag counts and the activity event are side effects;
// their failures are logged and never fail the request.
func (s *Service) Create(ctx context.Context, ident profiles.Identity, in Input) (models.Material, error) {
	m, err := Validate(in, ident.ID, s.now())
	if err != nil {
		return models.Material{}, err
	}
	if m.HasFile() {
		if m, err = s.attachFile(ctx, m); err != nil {
			return models.Material{}, err
		}
	}

	dup, err := s.Materials.ExistsDuplicate(ctx, ident.ID, m.Title, m.FileID())
	if err != nil {
		return models.Material{}, apierr.Dependency("check duplicate material", err)
	}
	if dup {
		return models.Material{}, apierr.Conflict("A material with this title or file already exists.")
	}

	created, err := s.Materials.Create(ctx, m)
	if errors.Is(err, materialstore.ErrDuplicate) {
		return models.Material{}, apierr.Conflict("A material with this title or file already exists.")
	}
	if err != nil {
		return models.Material{}, apierr.Dependency("insert material", err)
	}

	log := s.Log.With(zap.String("user_id", ident.ID), zap.String("material_id", created.ID.Hex()))

	if s.Profiles != nil {
		if _, err := s.Profiles.Ensure(ctx, ident); err != nil {
			log.Warn("provision profile failed", zap.Error(err))
		}
	}
	if err := s.Tags.Adjust(ctx, ident.ID, created.Tags, 1); err != nil {
		log.Warn("increment tag counts failed", zap.Strings("tags", created.Tags), zap.Error(err))
	}
	s.publish(ctx, log, activity.MaterialCreated, created)
	s.Metrics.MaterialCreated(created.Type())

	return created, nil
}

// List returns ownerID's materials matching f. The result is never nil.
func (s *Service) List(ctx context.Context, ownerID string, f materialfilter.Filter) ([]models.Material, error) {
	list, err := s.Materials.List(ctx, ownerID, f)
	if err != nil {
		return nil, apierr.Dependency("list materials", err)
	}
	if list == nil {
		list = []models.Material{}
	}
	return list, nil
}

// Get returns one of ownerID's materials. Another owner's material is
// reported as not found.
func (s *Service) Get(ctx context.Context, ownerID string, id primitive.ObjectID) (models.Material, error) {
	m, err := s.Materials.Get(ctx, ownerID, id)
	if errors.Is(err, materialstore.ErrNotFound) {
		return models.Material{}, apierr.NotFound("Material not found.")
	}
	if err != nil {
		return models.Material{}, apierr.Dependency("get material", err)
	}
	return m, nil
}

// Delete removes one of ownerID's materials. The blob behind a pdf is deleted
// first on a best-effort basis: a failure is logged and the record is still
// removed.
func (s *Service) Delete(ctx context.Context, ownerID string, id primitive.ObjectID) error {
	m, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	log := s.Log.With(zap.String("user_id", ownerID), zap.String("material_id", id.Hex()))

	if m.HasFile() {
		if err := s.Blobs.Delete(ctx, m.FileID()); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			log.Warn("blob delete failed; removing record anyway", zap.String("file_id", m.FileID()), zap.Error(err))
		}
	}

	err = s.Materials.Delete(ctx, ownerID, id)
	if errors.Is(err, materialstore.ErrNotFound) {
		return apierr.NotFound("Material not found.")
	}
	if err != nil {
		return apierr.Dependency("delete material", err)
	}

	if err := s.Tags.Adjust(ctx, ownerID, m.Tags, -1); err != nil {
		log.Warn("decrement tag counts failed", zap.Strings("tags", m.Tags), zap.Error(err))
	}
	s.publish(ctx, log, activity.MaterialDeleted, m)
	s.Metrics.MaterialDeleted(m.Type())
	return nil
}

// attachFile replaces the client-reported size of m's file with the size of
// the stored blob.
func (s *Service) attachFile(ctx context.Context, m models.Material) (models.Material, error) {
	sctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.Log, "stat material file")
	defer cancel()

	info, err := s.Blobs.Stat(sctx, m.FileID())
	if errors.Is(err, blobstore.ErrNotFound) {
		return m, apierr.Validation("fileId", "File not found. Upload it before adding the material.")
	}
	if err != nil {
		return m, apierr.Dependency("stat material file", err)
	}
	m.Body = models.PDFBody{FileID: m.FileID(), FileSize: info.Size}
	return m, nil
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, typ string, m models.Material) {
	if s.Activity == nil {
		return
	}
	pctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), log, "publish material activity")
	defer cancel()

	err := s.Activity.Publish(pctx, activity.Event{
		Type:         typ,
		OwnerID:      m.OwnerID,
		MaterialID:   m.ID.Hex(),
		MaterialType: m.Type(),
		Title:        m.Title,
		At:           s.now(),
	})
	s.Metrics.ActivityPublished(err)
	if err != nil {
		log.Warn("publish material activity failed", zap.String("type", typ), zap.Error(err))
	}
}
