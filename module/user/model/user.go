package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const UserTableName = "users"

// Skill types.
const (
	SkillTeach = "teach"
	SkillLearn = "learn"
)

// Auth providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type Skill struct {
	Name  string `bson:"name" json:"name"`
	Type  string `bson:"type" json:"type"` // teach | learn
	Level string `bson:"level,omitempty" json:"level,omitempty"`
}

type Availability struct {
	Day  string `bson:"day" json:"day"`
	Time string `bson:"time" json:"time"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"` // bcrypt hash
	Photo    string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Provider string             `bson:"provider" json:"provider"`
	Role     string             `bson:"role" json:"role"`

	Skills       []Skill        `bson:"skills" json:"skills"`
	Availability []Availability `bson:"availability" json:"availability"`
	TrustScore   float64        `bson:"trustScore" json:"trustScore"`

	// the one field the realtime layer mutates directly
	IsOnline bool `bson:"isOnline" json:"isOnline"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (*User) TableName() string { return UserTableName }

// LearnSkillNames returns the lowercase names of skills the user wants to learn.
func (u *User) LearnSkillNames() []string {
	var out []string
	for _, s := range u.Skills {
		if s.Type == SkillLearn {
			out = append(out, strings.ToLower(s.Name))
		}
	}
	return out
}
