package groupfilestore_test

import (
	"errors"
	"testing"

	groupfilestore "github.com/dalemusser/studypal/internal/app/store/groupfiles"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/studypal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupfilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g1, g2 := primitive.NewObjectID(), primitive.NewObjectID()
	mine, err := store.Insert(ctx, models.GroupFile{GroupID: g1, UploaderID: "u1", Name: "notes.pdf", FileID: "u1/a.pdf", FileSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = store.Insert(ctx, models.GroupFile{GroupID: g1, UploaderID: "u2", Name: "slides.pdf", FileID: "u2/b.pdf"})
	_, _ = store.Insert(ctx, models.GroupFile{GroupID: g2, UploaderID: "u3", Name: "other.pdf", FileID: "u3/c.pdf"})

	list, err := store.List(ctx, g1)
	if err != nil || len(list) != 2 || list[0].Name != "slides.pdf" {
		t.Errorf("List = %+v, %v; want newest first", list, err)
	}

	n, err := store.CountSharedWith(ctx, []primitive.ObjectID{g1, g2}, "u1")
	if err != nil || n != 2 {
		t.Errorf("CountSharedWith = %d, %v; want 2", n, err)
	}

	if _, err := store.Get(ctx, g2, mine.ID); !errors.Is(err, groupfilestore.ErrNotFound) {
		t.Errorf("Get via wrong group err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, g1, mine.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := store.Delete(ctx, g1, mine.ID); !errors.Is(err, groupfilestore.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}
