// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/studypal/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("materials", materialsSchema())
	ensure("tags", tagsSchema())
	ensure("events", eventsSchema())
	ensure("notifications", notificationsSchema())

	ensure("groups", groupsSchema())
	ensure("group_memberships", groupMembershipsSchema())
	ensure("group_messages", groupMessagesSchema())
	ensure("group_files", groupFilesSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer  = bson.M{"bsonType": bson.A{"int", "long"}}
	date     = bson.M{"bsonType": "date"}
)

func enum(values []string) bson.M {
	a := bson.A{}
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "name", "major", "academic_year"},
			"properties": bson.M{
				"_id":           nonBlank,
				"name":          nonBlank,
				"email":         bson.M{"bsonType": "string"},
				"major":         nonBlank,
				"academic_year": nonBlank,
			},
		},
	}
}

// materialsSchema requires the payload field that matches the stored type,
// mirroring the body variants of models.Material.
func materialsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"owner_id", "title", "title_ci", "type", "priority", "tags", "created_at"},
			"properties": bson.M{
				"owner_id":      nonBlank,
				"title":         nonBlank,
				"title_ci":      nonBlank,
				"type":          enum(models.MaterialTypes),
				"content":       bson.M{"bsonType": "string"},
				"url":           bson.M{"bsonType": "string"},
				"file_id":       bson.M{"bsonType": "string"},
				"file_size":     integer,
				"tags":          bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"priority":      enum(models.Priorities),
				"priority_rank": integer,
				"created_at":    date,
			},
			"oneOf": bson.A{
				bson.M{"properties": bson.M{"type": bson.M{"enum": bson.A{models.MaterialTypeNote}}}, "required": bson.A{"content"}},
				bson.M{"properties": bson.M{"type": bson.M{"enum": bson.A{models.MaterialTypePDF}}}, "required": bson.A{"file_id"}},
				bson.M{"properties": bson.M{"type": bson.M{"enum": bson.A{models.MaterialTypeLink}}}, "required": bson.A{"url"}},
			},
		},
	}
}

func tagsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "name", "count"},
			"properties": bson.M{
				"user_id": nonBlank,
				"name":    nonBlank,
				"color":   bson.M{"bsonType": "string"},
				"count":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "title", "start_date", "type", "priority"},
			"properties": bson.M{
				"user_id":     nonBlank,
				"title":       nonBlank,
				"start_date":  date,
				"end_date":    date,
				"type":        enum(models.EventTypes),
				"priority":    enum(models.Priorities),
				"is_online":   bson.M{"bsonType": "bool"},
				"meeting_url": bson.M{"bsonType": "string"},
				"reminders":   bson.M{"bsonType": "array", "items": integer},
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "type", "title", "scheduled_for", "read"},
			"properties": bson.M{
				"user_id":       nonBlank,
				"type":          enum([]string{models.NotificationEventReminder, models.NotificationGroupJoin}),
				"title":         nonBlank,
				"event_id":      bson.M{"bsonType": "objectId"},
				"group_id":      bson.M{"bsonType": "objectId"},
				"scheduled_for": date,
				"delivered_at":  date,
				"read":          bson.M{"bsonType": "bool"},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "owner_id", "is_private"},
			"properties": bson.M{
				"name":        nonBlank,
				"name_ci":     nonBlank,
				"description": bson.M{"bsonType": "string"},
				"owner_id":    nonBlank,
				"is_private":  bson.M{"bsonType": "bool"},
			},
		},
	}
}

func groupMembershipsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "user_id", "role"},
			"properties": bson.M{
				"group_id":   bson.M{"bsonType": "objectId"},
				"user_id":    nonBlank,
				"role":       enum([]string{models.GroupRoleOwner, models.GroupRoleMember}),
				"created_at": date,
			},
		},
	}
}

func groupMessagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "user_id", "content", "created_at"},
			"properties": bson.M{
				"group_id":   bson.M{"bsonType": "objectId"},
				"user_id":    nonBlank,
				"content":    nonBlank,
				"created_at": date,
			},
		},
	}
}

func groupFilesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "uploader_id", "name", "file_id"},
			"properties": bson.M{
				"group_id":    bson.M{"bsonType": "objectId"},
				"uploader_id": nonBlank,
				"name":        nonBlank,
				"file_id":     nonBlank,
				"file_size":   integer,
			},
		},
	}
}
