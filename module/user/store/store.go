package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillswap/module/user/model"
	"skillswap/tools/errs"
)

var ErrUserNotFound = errs.NewCodeError(404, "user not found")

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(model.UserTableName)}
}

// EnsureIndexes creates the unique email index.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errs.Wrap(err)
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Provider == "" {
		u.Provider = model.ProviderLocal
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.Skills == nil {
		u.Skills = []model.Skill{}
	}
	if u.Availability == nil {
		u.Availability = []model.Availability{}
	}
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		return errs.WrapMsg(err, "insert user", "email", u.Email)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

// UpdateProfile applies a partial update and returns the fresh document.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	set["updatedAt"] = time.Now()
	var u model.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &u, nil
}

// AddSkill appends one skill to the user.
func (s *UserStore) AddSkill(ctx context.Context, id primitive.ObjectID, sk model.Skill) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"skills": sk}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return errs.Wrap(err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Mentors returns users that have at least one teach skill.
func (s *UserStore) Mentors(ctx context.Context) ([]model.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{"skills.type": model.SkillTeach})
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []model.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// AllExcept lists everyone but the given user, sorted by name. Used by the
// chat contact list; only display fields are populated meaningfully.
func (s *UserStore) AllExcept(ctx context.Context, id primitive.ObjectID) ([]model.User, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"_id": bson.M{"$ne": id}},
		options.Find().
			SetProjection(bson.M{"name": 1, "photo": 1, "isOnline": 1, "skills": 1}).
			SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []model.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// TeachersOfAny returns other users teaching any of the given (lowercase)
// skill names. Skill name matching is case-insensitive.
func (s *UserStore) TeachersOfAny(ctx context.Context, exclude primitive.ObjectID, names []string) ([]model.User, error) {
	if len(names) == 0 {
		return nil, nil
	}
	regexes := make([]bson.M, 0, len(names))
	for _, n := range names {
		regexes = append(regexes, bson.M{"skills": bson.M{"$elemMatch": bson.M{
			"type": model.SkillTeach,
			"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(n) + "$", Options: "i"},
		}}})
	}
	cur, err := s.coll.Find(ctx, bson.M{
		"_id": bson.M{"$ne": exclude},
		"$or": regexes,
	}, options.Find().SetProjection(bson.M{"name": 1, "skills": 1, "trustScore": 1}))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []model.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// AllTeachers returns every other user with at least one teach skill,
// projected down to what the match scorer needs.
func (s *UserStore) AllTeachers(ctx context.Context, exclude primitive.ObjectID) ([]model.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{
		"_id":         bson.M{"$ne": exclude},
		"skills.type": model.SkillTeach,
	}, options.Find().SetProjection(bson.M{"name": 1, "skills": 1, "trustScore": 1}))
	if err != nil {
		return nil, errs.Wrap(err)
	}
	var out []model.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(err)
	}
	return out, nil
}

// SetOnline flips the durable isOnline flag. Unknown ids no-op: a socket can
// announce a user that was deleted meanwhile.
func (s *UserStore) SetOnline(ctx context.Context, userID string, online bool) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.WrapMsg(err, "bad user id", "id", userID)
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isOnline": online}})
	return errs.Wrap(err)
}

// ResetAllOnline clears every isOnline flag. Called at boot: presence entries
// do not survive a restart, so any persisted true is stale.
func (s *UserStore) ResetAllOnline(ctx context.Context) error {
	_, err := s.coll.UpdateMany(ctx, bson.M{"isOnline": true}, bson.M{"$set": bson.M{"isOnline": false}})
	return errs.Wrap(err)
}

// DisplayMeta returns the sender-facing display fields for relay enrichment.
func (s *UserStore) DisplayMeta(ctx context.Context, userID string) (name, photo string, err error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", "", errs.WrapMsg(err, "bad user id", "id", userID)
	}
	var u model.User
	ferr := s.coll.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"name": 1, "photo": 1}),
	).Decode(&u)
	if ferr == mongo.ErrNoDocuments {
		return "", "", ErrUserNotFound
	}
	if ferr != nil {
		return "", "", errs.Wrap(ferr)
	}
	return u.Name, u.Photo, nil
}

// UpdateTrustScore overwrites the trust score.
func (s *UserStore) UpdateTrustScore(ctx context.Context, id primitive.ObjectID, score float64) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"trustScore": score}})
	return errs.Wrap(err)
}

