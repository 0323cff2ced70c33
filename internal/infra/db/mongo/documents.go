package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillswap/internal/domain/shared/failure"
)

var ErrConcurrentUpdate = failure.Conflict("mongo: concurrent update detected")

const (
	writeConflictCode      = 112
	transientTxnErrorLabel = "TransientTransactionError"
)

// lostWrite reports errors meaning another writer got to the document first: a
// duplicate key from the version-filtered upsert, or a write conflict between
// overlapping transactions.
func lostWrite(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	return errors.As(err, &se) &&
		(se.HasErrorCode(writeConflictCode) || se.HasErrorLabel(transientTxnErrorLabel))
}

// saveVersioned upserts doc when the stored version still equals loaded. A miss or a
// lost write means someone else wrote first.
func saveVersioned(ctx context.Context, col *mongo.Collection, id string, loaded int64, doc any) error {
	filter := bson.M{"_id": id, "version": loaded}
	res, err := col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if lostWrite(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func notFound(err, domainErr error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domainErr
	}
	return err
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
