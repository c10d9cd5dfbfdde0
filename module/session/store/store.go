package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillswap/module/session/model"
	usermodel "skillswap/module/user/model"
	"skillswap/tools/errs"
)

var ErrSessionNotFound = errs.NewCodeError(404, "session not found")

type SessionStore struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{
		coll:  db.Collection(model.SessionTableName),
		users: db.Collection(usermodel.UserTableName),
	}
}

func (s *SessionStore) Create(ctx context.Context, sess *model.Session) error {
	now := time.Now()
	sess.CreatedAt, sess.UpdatedAt = now, now
	if sess.Status == "" {
		sess.Status = model.StatusPending
	}
	if sess.Messages == nil {
		sess.Messages = []model.SessionMessage{}
	}
	res, err := s.coll.InsertOne(ctx, sess)
	if err != nil {
		return errs.WrapMsg(err, "insert session", "skill", sess.Skill)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sess.ID = oid
	}
	return nil
}

func (s *SessionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Session, error) {
	var out model.Session
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &out, nil
}

// ForUser lists sessions where the user is teacher or learner, newest first,
// with participant snapshots populated.
func (s *SessionStore) ForUser(ctx context.Context, userID primitive.ObjectID) ([]model.Session, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"$or": []bson.M{{"teacher": userID}, {"learner": userID}}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []model.Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	for i := range out {
		if err := s.Populate(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Populate fills the teacher/learner display snapshots.
func (s *SessionStore) Populate(ctx context.Context, sess *model.Session) error {
	t, err := s.participant(ctx, sess.Teacher)
	if err != nil {
		return err
	}
	l, err := s.participant(ctx, sess.Learner)
	if err != nil {
		return err
	}
	sess.TeacherInfo, sess.LearnerInfo = t, l
	return nil
}

func (s *SessionStore) participant(ctx context.Context, id primitive.ObjectID) (*model.Participant, error) {
	var p model.Participant
	err := s.users.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"name": 1, "photo": 1, "email": 1}),
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil // participant deleted; leave snapshot empty
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &p, nil
}

// Accept marks the session accepted and records the live meeting link.
func (s *SessionStore) Accept(ctx context.Context, id primitive.ObjectID, liveLink string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    model.StatusAccepted,
		"liveLink":  liveLink,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Complete records the final status, rating and feedback.
func (s *SessionStore) Complete(ctx context.Context, id primitive.ObjectID, rating float64, feedback string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":    model.StatusCompleted,
		"rating":    rating,
		"feedback":  feedback,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendMessage pushes an embedded note onto the session.
func (s *SessionStore) AppendMessage(ctx context.Context, id primitive.ObjectID, m model.SessionMessage) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"messages": m},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}
