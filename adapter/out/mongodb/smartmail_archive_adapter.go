package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionRawMessages = "raw_messages"

// ArchiveAdapter implements out.MessageArchive using MongoDB. It keeps the
// original (possibly HTML) message body next to the structured Postgres row.
type ArchiveAdapter struct {
	collection *mongo.Collection
}

// NewArchiveAdapter creates the archive adapter.
func NewArchiveAdapter(db *mongo.Database) *ArchiveAdapter {
	return &ArchiveAdapter{collection: db.Collection(collectionRawMessages)}
}

// EnsureIndexes creates the lookup index for the collection.
func (a *ArchiveAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "archived_at", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type rawMessageDocument struct {
	MessageID  string    `bson:"message_id,omitempty"`
	Subject    string    `bson:"subject"`
	RawBody    string    `bson:"raw_body"`
	Source     string    `bson:"source"`
	ArchivedAt time.Time `bson:"archived_at"`
}

// Archive upserts the raw body keyed by message ID. Bodies without a message
// ID (webhook traffic) are inserted as standalone documents.
func (a *ArchiveAdapter) Archive(ctx context.Context, messageID, subject, rawBody, source string) error {
	doc := rawMessageDocument{
		MessageID:  messageID,
		Subject:    subject,
		RawBody:    rawBody,
		Source:     source,
		ArchivedAt: time.Now().UTC(),
	}

	if messageID == "" {
		_, err := a.collection.InsertOne(ctx, doc)
		return err
	}

	filter := bson.M{"message_id": messageID}
	update := bson.M{"$set": doc}
	_, err := a.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
