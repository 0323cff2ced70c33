package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainswap "skillswap/internal/domain/swap"
	domainuser "skillswap/internal/domain/user"
)

type SwapRepository struct {
	col *mongo.Collection
}

func NewSwapRepository(db *mongo.Database) *SwapRepository {
	return &SwapRepository{col: db.Collection(swapsCollection)}
}

func (r *SwapRepository) ByID(ctx context.Context, id domainswap.ID) (*domainswap.Swap, error) {
	var doc swapDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainswap.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *SwapRepository) Save(ctx context.Context, s *domainswap.Swap) error {
	doc := newSwapDocument(s)
	doc.Version = s.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, s.Version, doc); err != nil {
		return err
	}
	s.Version = doc.Version
	return nil
}

func (r *SwapRepository) ListByUser(ctx context.Context, userID domainuser.ID) ([]*domainswap.Swap, error) {
	filter := bson.M{"$or": bson.A{bson.M{"requester": string(userID)}, bson.M{"recipient": string(userID)}}}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []swapDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainswap.Swap, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type skillDocument struct {
	Name        string `bson:"name"`
	Description string `bson:"description,omitempty"`
}

type ratingDocument struct {
	Score       int    `bson:"score"`
	Comment     string `bson:"comment,omitempty"`
	SubmittedAt int64  `bson:"submitted_at"`
}

type swapDocument struct {
	ID              string          `bson:"_id"`
	Requester       string          `bson:"requester"`
	Recipient       string          `bson:"recipient"`
	RequestedSkill  skillDocument   `bson:"requested_skill"`
	OfferedSkill    skillDocument   `bson:"offered_skill"`
	Status          string          `bson:"status"`
	Message         string          `bson:"message,omitempty"`
	ScheduledDate   int64           `bson:"scheduled_date,omitempty"`
	CompletedAt     int64           `bson:"completed_at,omitempty"`
	RequesterRating *ratingDocument `bson:"requester_rating,omitempty"`
	RecipientRating *ratingDocument `bson:"recipient_rating,omitempty"`
	CreatedAt       int64           `bson:"created_at"`
	UpdatedAt       int64           `bson:"updated_at"`
	Version         int64           `bson:"version"`
}

func newSwapDocument(s *domainswap.Swap) swapDocument {
	return swapDocument{
		ID:              string(s.ID),
		Requester:       string(s.Requester),
		Recipient:       string(s.Recipient),
		RequestedSkill:  skillDocument{Name: s.RequestedSkill.Name, Description: s.RequestedSkill.Description},
		OfferedSkill:    skillDocument{Name: s.OfferedSkill.Name, Description: s.OfferedSkill.Description},
		Status:          string(s.Status),
		Message:         s.Message,
		ScheduledDate:   toMillis(s.ScheduledDate),
		CompletedAt:     toMillis(s.CompletedAt),
		RequesterRating: newRatingDocument(s.RequesterRating),
		RecipientRating: newRatingDocument(s.RecipientRating),
		CreatedAt:       toMillis(s.CreatedAt),
		UpdatedAt:       toMillis(s.UpdatedAt),
		Version:         s.Version,
	}
}

func newRatingDocument(r *domainswap.Rating) *ratingDocument {
	if r == nil {
		return nil
	}
	return &ratingDocument{Score: r.Score, Comment: r.Comment, SubmittedAt: toMillis(r.SubmittedAt)}
}

func (d *ratingDocument) toRating() *domainswap.Rating {
	if d == nil {
		return nil
	}
	return &domainswap.Rating{Score: d.Score, Comment: d.Comment, SubmittedAt: fromMillis(d.SubmittedAt)}
}

func (d swapDocument) toAggregate() *domainswap.Swap {
	return &domainswap.Swap{
		ID:              domainswap.ID(d.ID),
		Requester:       domainuser.ID(d.Requester),
		Recipient:       domainuser.ID(d.Recipient),
		RequestedSkill:  domainswap.Skill{Name: d.RequestedSkill.Name, Description: d.RequestedSkill.Description},
		OfferedSkill:    domainswap.Skill{Name: d.OfferedSkill.Name, Description: d.OfferedSkill.Description},
		Status:          domainswap.Status(d.Status),
		Message:         d.Message,
		ScheduledDate:   fromMillis(d.ScheduledDate),
		CompletedAt:     fromMillis(d.CompletedAt),
		RequesterRating: d.RequesterRating.toRating(),
		RecipientRating: d.RecipientRating.toRating(),
		CreatedAt:       fromMillis(d.CreatedAt),
		UpdatedAt:       fromMillis(d.UpdatedAt),
		Version:         d.Version,
	}
}
