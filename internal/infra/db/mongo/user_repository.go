package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainuser "skillswap/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainuser.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	doc.Version = u.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, u.Version, doc); err != nil {
		return err
	}
	u.Version = doc.Version
	return nil
}

type userDocument struct {
	ID        string `bson:"_id"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	Email     string `bson:"email"`
	Role      string `bson:"role"`
	IsBanned  bool   `bson:"is_banned"`
	BanReason string `bson:"ban_reason,omitempty"`
	BannedAt  int64  `bson:"banned_at,omitempty"`
	BannedBy  string `bson:"banned_by,omitempty"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
	Version   int64  `bson:"version"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:        string(u.ID),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		IsBanned:  u.IsBanned,
		BanReason: u.BanReason,
		BannedAt:  toMillis(u.BannedAt),
		BannedBy:  string(u.BannedBy),
		CreatedAt: toMillis(u.CreatedAt),
		UpdatedAt: toMillis(u.UpdatedAt),
		Version:   u.Version,
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	return &domainuser.User{
		ID:        domainuser.ID(d.ID),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Role:      domainuser.Role(d.Role),
		IsBanned:  d.IsBanned,
		BanReason: d.BanReason,
		BannedAt:  fromMillis(d.BannedAt),
		BannedBy:  domainuser.ID(d.BannedBy),
		CreatedAt: fromMillis(d.CreatedAt),
		UpdatedAt: fromMillis(d.UpdatedAt),
		Version:   d.Version,
	}
}
