package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "skillswap/internal/domain/chat"
	domainswap "skillswap/internal/domain/swap"
	domainuser "skillswap/internal/domain/user"
)

// ChatRepository stores each chat as one document with its messages, sessions and
// warnings embedded.
type ChatRepository struct {
	col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{col: db.Collection(chatsCollection)}
}

func (r *ChatRepository) ByID(ctx context.Context, id domainchat.ID) (*domainchat.Chat, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *ChatRepository) BySwapID(ctx context.Context, swapID domainswap.ID) (*domainchat.Chat, error) {
	return r.findOne(ctx, bson.M{"swap_id": string(swapID)})
}

func (r *ChatRepository) ListByParticipant(ctx context.Context, userID domainuser.ID) ([]*domainchat.Chat, error) {
	filter := bson.M{"participants": string(userID), "is_active": true}
	opts := options.Find().SetSort(bson.D{{Key: "stats.last_activity", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *ChatRepository) ListFlagged(ctx context.Context, page domainchat.Page) ([]*domainchat.Chat, int, error) {
	filter := bson.M{"messages.is_flagged": true}
	opts := options.Find().SetSort(bson.D{{Key: "messages.flagged_at", Value: -1}})
	if page.Limit > 0 {
		opts = opts.SetSkip(int64(page.Offset())).SetLimit(int64(page.Limit))
	}
	chats, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return chats, int(total), nil
}

func (r *ChatRepository) Save(ctx context.Context, c *domainchat.Chat) error {
	doc := newChatDocument(c)
	doc.Version = c.Version + 1
	if err := saveVersioned(ctx, r.col, doc.ID, c.Version, doc); err != nil {
		return err
	}
	c.Version = doc.Version
	return nil
}

func (r *ChatRepository) findOne(ctx context.Context, filter bson.M) (*domainchat.Chat, error) {
	var doc chatDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domainchat.ErrNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *ChatRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainchat.Chat, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []chatDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainchat.Chat, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type messageDocument struct {
	ID         string `bson:"id"`
	Sender     string `bson:"sender"`
	Content    string `bson:"content"`
	Type       string `bson:"message_type"`
	FileURL    string `bson:"file_url,omitempty"`
	FileName   string `bson:"file_name,omitempty"`
	IsRead     bool   `bson:"is_read"`
	ReadAt     int64  `bson:"read_at,omitempty"`
	IsFlagged  bool   `bson:"is_flagged"`
	FlaggedBy  string `bson:"flagged_by,omitempty"`
	FlagReason string `bson:"flag_reason,omitempty"`
	FlaggedAt  int64  `bson:"flagged_at,omitempty"`
	IsDeleted  bool   `bson:"is_deleted"`
	DeletedBy  string `bson:"deleted_by,omitempty"`
	DeletedAt  int64  `bson:"deleted_at,omitempty"`
	CreatedAt  int64  `bson:"created_at"`
}

type sessionDocument struct {
	ID          string `bson:"id"`
	StartTime   int64  `bson:"start_time"`
	EndTime     int64  `bson:"end_time,omitempty"`
	Duration    int    `bson:"duration"`
	Topic       string `bson:"topic"`
	Notes       string `bson:"notes,omitempty"`
	InitiatedBy string `bson:"initiated_by"`
}

type warningDocument struct {
	ID           string `bson:"id"`
	UserID       string `bson:"user_id"`
	Reason       string `bson:"reason"`
	IssuedBy     string `bson:"issued_by"`
	IssuedAt     int64  `bson:"issued_at"`
	Acknowledged bool   `bson:"acknowledged"`
}

type guidelinesDocument struct {
	Agreed       bool  `bson:"agreed_to_guidelines"`
	AgreedAt     int64 `bson:"agreed_at,omitempty"`
	LastReminder int64 `bson:"last_reminder,omitempty"`
}

type statsDocument struct {
	TotalMessages  int   `bson:"total_messages"`
	TotalStudyTime int   `bson:"total_study_time"`
	LastActivity   int64 `bson:"last_activity"`
}

type chatDocument struct {
	ID            string             `bson:"_id"`
	SwapID        string             `bson:"swap_id"`
	Participants  []string           `bson:"participants"`
	Messages      []messageDocument  `bson:"messages"`
	StudySessions []sessionDocument  `bson:"study_sessions"`
	Guidelines    guidelinesDocument `bson:"guidelines"`
	Warnings      []warningDocument  `bson:"warnings"`
	Stats         statsDocument      `bson:"stats"`
	IsActive      bool               `bson:"is_active"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
	Version       int64              `bson:"version"`
}

func newChatDocument(c *domainchat.Chat) chatDocument {
	doc := chatDocument{
		ID:            string(c.ID),
		SwapID:        string(c.SwapID),
		Participants:  make([]string, 0, len(c.Participants)),
		Messages:      make([]messageDocument, 0, len(c.Messages)),
		StudySessions: make([]sessionDocument, 0, len(c.StudySessions)),
		Warnings:      make([]warningDocument, 0, len(c.Warnings)),
		Guidelines: guidelinesDocument{
			Agreed:       c.Guidelines.Agreed,
			AgreedAt:     toMillis(c.Guidelines.AgreedAt),
			LastReminder: toMillis(c.Guidelines.LastReminder),
		},
		Stats: statsDocument{
			TotalMessages:  c.Stats.TotalMessages,
			TotalStudyTime: c.Stats.TotalStudyTime,
			LastActivity:   toMillis(c.Stats.LastActivity),
		},
		IsActive:  c.IsActive,
		CreatedAt: toMillis(c.CreatedAt),
		UpdatedAt: toMillis(c.UpdatedAt),
		Version:   c.Version,
	}
	for _, p := range c.Participants {
		doc.Participants = append(doc.Participants, string(p))
	}
	for _, m := range c.Messages {
		doc.Messages = append(doc.Messages, messageDocument{
			ID:         string(m.ID),
			Sender:     m.Sender.String(),
			Content:    m.Content,
			Type:       string(m.Type),
			FileURL:    m.FileURL,
			FileName:   m.FileName,
			IsRead:     m.IsRead,
			ReadAt:     toMillis(m.ReadAt),
			IsFlagged:  m.IsFlagged,
			FlaggedBy:  string(m.FlaggedBy),
			FlagReason: string(m.FlagReason),
			FlaggedAt:  toMillis(m.FlaggedAt),
			IsDeleted:  m.IsDeleted,
			DeletedBy:  string(m.DeletedBy),
			DeletedAt:  toMillis(m.DeletedAt),
			CreatedAt:  toMillis(m.CreatedAt),
		})
	}
	for _, s := range c.StudySessions {
		doc.StudySessions = append(doc.StudySessions, sessionDocument{
			ID:          string(s.ID),
			StartTime:   toMillis(s.StartTime),
			EndTime:     toMillis(s.EndTime),
			Duration:    s.Duration,
			Topic:       s.Topic,
			Notes:       s.Notes,
			InitiatedBy: string(s.InitiatedBy),
		})
	}
	for _, w := range c.Warnings {
		doc.Warnings = append(doc.Warnings, warningDocument{
			ID:           string(w.ID),
			UserID:       string(w.UserID),
			Reason:       w.Reason,
			IssuedBy:     string(w.IssuedBy),
			IssuedAt:     toMillis(w.IssuedAt),
			Acknowledged: w.Acknowledged,
		})
	}
	return doc
}

func (d chatDocument) toAggregate() *domainchat.Chat {
	c := &domainchat.Chat{
		ID:     domainchat.ID(d.ID),
		SwapID: domainswap.ID(d.SwapID),
		Guidelines: domainchat.Guidelines{
			Agreed:       d.Guidelines.Agreed,
			AgreedAt:     fromMillis(d.Guidelines.AgreedAt),
			LastReminder: fromMillis(d.Guidelines.LastReminder),
		},
		Stats: domainchat.Stats{
			TotalMessages:  d.Stats.TotalMessages,
			TotalStudyTime: d.Stats.TotalStudyTime,
			LastActivity:   fromMillis(d.Stats.LastActivity),
		},
		IsActive:  d.IsActive,
		CreatedAt: fromMillis(d.CreatedAt),
		UpdatedAt: fromMillis(d.UpdatedAt),
		Version:   d.Version,
	}
	for _, p := range d.Participants {
		c.Participants = append(c.Participants, domainuser.ID(p))
	}
	for _, m := range d.Messages {
		c.Messages = append(c.Messages, domainchat.Message{
			ID:         domainchat.MessageID(m.ID),
			Sender:     domainchat.ParseSender(m.Sender),
			Content:    m.Content,
			Type:       domainchat.MessageType(m.Type),
			FileURL:    m.FileURL,
			FileName:   m.FileName,
			IsRead:     m.IsRead,
			ReadAt:     fromMillis(m.ReadAt),
			IsFlagged:  m.IsFlagged,
			FlaggedBy:  domainuser.ID(m.FlaggedBy),
			FlagReason: domainchat.FlagReason(m.FlagReason),
			FlaggedAt:  fromMillis(m.FlaggedAt),
			IsDeleted:  m.IsDeleted,
			DeletedBy:  domainuser.ID(m.DeletedBy),
			DeletedAt:  fromMillis(m.DeletedAt),
			CreatedAt:  fromMillis(m.CreatedAt),
		})
	}
	for _, s := range d.StudySessions {
		c.StudySessions = append(c.StudySessions, domainchat.StudySession{
			ID:          domainchat.SessionID(s.ID),
			StartTime:   fromMillis(s.StartTime),
			EndTime:     fromMillis(s.EndTime),
			Duration:    s.Duration,
			Topic:       s.Topic,
			Notes:       s.Notes,
			InitiatedBy: domainuser.ID(s.InitiatedBy),
		})
	}
	for _, w := range d.Warnings {
		c.Warnings = append(c.Warnings, domainchat.Warning{
			ID:           domainchat.WarningID(w.ID),
			UserID:       domainuser.ID(w.UserID),
			Reason:       w.Reason,
			IssuedBy:     domainuser.ID(w.IssuedBy),
			IssuedAt:     fromMillis(w.IssuedAt),
			Acknowledged: w.Acknowledged,
		})
	}
	return c
}
