package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const SessionTableName = "sessions"

// Session status values.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
)

// SessionMessage is a note embedded in the session document, distinct from
// the direct-message collection used by the realtime chat.
type SessionMessage struct {
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Session is a scheduled teach/learn exchange between two users.
type Session struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Teacher primitive.ObjectID `bson:"teacher" json:"teacher"`
	Learner primitive.ObjectID `bson:"learner" json:"learner"`
	Skill   string             `bson:"skill" json:"skill"`
	Status  string             `bson:"status" json:"status"`

	Date     string `bson:"date,omitempty" json:"date,omitempty"`
	Time     string `bson:"time,omitempty" json:"time,omitempty"`
	LiveLink string `bson:"liveLink,omitempty" json:"liveLink,omitempty"`

	Messages []SessionMessage `bson:"messages" json:"messages"`
	Rating   float64          `bson:"rating" json:"rating"`
	Feedback string           `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// populated participant snapshots, filled by the store on reads
	TeacherInfo *Participant `bson:"-" json:"teacherInfo,omitempty"`
	LearnerInfo *Participant `bson:"-" json:"learnerInfo,omitempty"`
}

// Participant is the display snapshot joined onto session reads.
type Participant struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
}

func (*Session) TableName() string { return SessionTableName }
