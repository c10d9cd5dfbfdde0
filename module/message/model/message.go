package model

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MessageTableName = "messages"

// Message is a direct message between two users. Immutable once created.
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ChatID   string             `bson:"chatId" json:"chatId"` // canonical room id, user1_user2
	Sender   primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver primitive.ObjectID `bson:"receiver" json:"receiver"`
	Text     string             `bson:"text" json:"text"`
	IsRead   bool               `bson:"isRead" json:"isRead"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (*Message) TableName() string { return MessageTableName }

// ChatIDOf derives the canonical conversation id for two users: the ids are
// sorted lexicographically and joined, so both sides compute the same value.
func ChatIDOf(a, b string) string {
	p := []string{a, b}
	sort.Strings(p)
	return p[0] + "_" + p[1]
}
