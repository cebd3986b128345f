// File: database/repository/reservation/mongo.go
package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetingroom/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoQueries struct {
	coll    *mongo.Collection
	timeout time.Duration
	// scoped binds a call context to the surrounding session, if any.
	scoped func(ctx context.Context) context.Context
}

type mongoReservationRepo struct {
	mongoQueries
	locks *mongo.Collection
}

// NewMongoReservationRepo constructs a ReservationRepository over the reservations
// collection. Per-room lock documents live in room_locks. Transactions require a
// replica set.
func NewMongoReservationRepo(db *mongo.Database, timeout time.Duration) ReservationRepository {
	return &mongoReservationRepo{
		mongoQueries: mongoQueries{
			coll:    db.Collection("reservations"),
			timeout: callTimeout(timeout),
			scoped:  func(ctx context.Context) context.Context { return ctx },
		},
		locks: db.Collection("room_locks"),
	}
}

func (r *mongoReservationRepo) Begin(ctx context.Context) (Tx, error) {
	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, fmt.Errorf("could not start mongo transaction: %w", err)
	}
	return &mongoTx{
		mongoQueries: mongoQueries{
			coll:    r.coll,
			timeout: r.timeout,
			scoped: func(ctx context.Context) context.Context {
				return mongo.NewSessionContext(ctx, sess)
			},
		},
		locks: r.locks,
		sess:  sess,
	}, nil
}

type mongoTx struct {
	mongoQueries
	locks *mongo.Collection
	sess  mongo.Session
	done  bool
}

// LockRoom bumps the room's lock document. A second transaction doing the same before
// this one ends fails with a write conflict.
func (t *mongoTx) LockRoom(ctx context.Context, scope models.RoomScope) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.locks.UpdateOne(t.scoped(ctx),
		bson.M{"_id": scope.String()},
		bson.M{"$inc": bson.M{"version": 1}, "$set": bson.M{"lockedAt": time.Now()}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to lock room %s: %w", scope, mapMongoError(err))
	}
	return nil
}

func (t *mongoTx) Insert(ctx context.Context, r models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if _, err := t.coll.InsertOne(t.scoped(ctx), r); err != nil {
		return fmt.Errorf("failed to insert reservation %s: %w", r.ReservationID, mapMongoError(err))
	}
	return nil
}

func (t *mongoTx) Delete(ctx context.Context, reservationID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.coll.DeleteOne(t.scoped(ctx), bson.M{"reservation_id": reservationID})
	if err != nil {
		return false, fmt.Errorf("failed to delete reservation %s: %w", reservationID, mapMongoError(err))
	}
	return res.DeletedCount > 0, nil
}

func (t *mongoTx) UpdateDetails(ctx context.Context, reservationID, userName, purpose, title string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.coll.UpdateOne(t.scoped(ctx),
		bson.M{"reservation_id": reservationID},
		bson.M{"$set": bson.M{"user_name": userName, "purpose": purpose, "title": title}})
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", reservationID, mapMongoError(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *mongoTx) Commit(ctx context.Context) error {
	defer t.end(ctx)
	if err := t.sess.CommitTransaction(ctx); err != nil {
		return fmt.Errorf("failed to commit reservation transaction: %w", mapMongoError(err))
	}
	return nil
}

func (t *mongoTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	defer t.end(ctx)
	return t.sess.AbortTransaction(ctx)
}

func (t *mongoTx) end(ctx context.Context) {
	t.done = true
	t.sess.EndSession(ctx)
}

func (m mongoQueries) Get(ctx context.Context, reservationID string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var res models.Reservation
	err := m.coll.FindOne(m.scoped(ctx), bson.M{"reservation_id": reservationID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation %s: %w", reservationID, err)
	}
	return civil(&res), nil
}

func roomFilter(scope models.RoomScope, from, to time.Time, excludeID string) bson.M {
	filter := bson.M{
		"building_id":    scope.BuildingID,
		"floor_id":       scope.FloorID,
		"room_id":        scope.RoomID,
		"start_datetime": bson.M{"$lt": to},
		"end_datetime":   bson.M{"$gt": from},
	}
	if excludeID != "" {
		filter["reservation_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

var chronological = bson.D{{Key: "start_datetime", Value: 1}, {Key: "reservation_id", Value: 1}}

func (m mongoQueries) FindOverlapping(ctx context.Context, scope models.RoomScope, start, end time.Time, excludeID string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var res models.Reservation
	err := m.coll.FindOne(m.scoped(ctx), roomFilter(scope, start, end, excludeID),
		options.FindOne().SetSort(chronological)).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check overlaps on %s: %w", scope, err)
	}
	return res.ReservationID, true, nil
}

func (m mongoQueries) RoomReservations(ctx context.Context, scope models.RoomScope, from, to time.Time, excludeID string) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.coll.Find(m.scoped(ctx), roomFilter(scope, from, to, excludeID),
		options.Find().SetSort(chronological))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations of %s: %w", scope, err)
	}
	return m.decodeAll(ctx, cursor)
}

func (m mongoQueries) UserReservations(ctx context.Context, userName string, from, to time.Time, buildingID *int) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	filter := bson.M{
		"user_name":      userName,
		"start_datetime": bson.M{"$lte": to},
		"end_datetime":   bson.M{"$gt": from},
	}
	if buildingID != nil {
		filter["building_id"] = *buildingID
	}
	cursor, err := m.coll.Find(m.scoped(ctx), filter, options.Find().SetSort(chronological))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations of %q: %w", userName, err)
	}
	return m.decodeAll(ctx, cursor)
}

func (m mongoQueries) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.Reservation, error) {
	var out []models.Reservation
	if err := cursor.All(m.scoped(ctx), &out); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	for i := range out {
		civil(&out[i])
	}
	return out, nil
}

// civil drops the location the driver attaches to decoded dates.
func civil(r *models.Reservation) *models.Reservation {
	r.Start = models.Civil(r.Start.UTC())
	r.End = models.Civil(r.End.UTC())
	return r
}

func mapMongoError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrOverlap, err)
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: %v", ErrConcurrentWrite, err)
	}
	return err
}
