// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studypal/internal/app/system/activity"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends the app talks to.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Blobs    blobstore.Store
	Bus      pubsub.Bus
	Activity activity.Publisher
}
