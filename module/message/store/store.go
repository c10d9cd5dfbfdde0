package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillswap/module/message/model"
	"skillswap/tools/errs"
)

type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{coll: db.Collection(model.MessageTableName)}
}

func (s *MessageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return errs.Wrap(err)
}

// Create persists one message and fills in its id and timestamps.
func (s *MessageStore) Create(ctx context.Context, m *model.Message) error {
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	res, err := s.coll.InsertOne(ctx, m)
	if err != nil {
		return errs.WrapMsg(err, "insert message", "chatId", m.ChatID)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return nil
}

// History returns the full two-party conversation, oldest first.
func (s *MessageStore) History(ctx context.Context, a, b primitive.ObjectID) ([]model.Message, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"$or": []bson.M{
			{"sender": a, "receiver": b},
			{"sender": b, "receiver": a},
		}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []model.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// MarkRead flags every message of the chat addressed to the reader as read.
func (s *MessageStore) MarkRead(ctx context.Context, chatID string, reader primitive.ObjectID) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"chatId": chatID, "receiver": reader, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now()}},
	)
	return errs.Wrap(err)
}
