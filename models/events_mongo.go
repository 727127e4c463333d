package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEventRepo struct {
	col *mongo.Collection
}

func NewMongoEventRepository(col *mongo.Collection) EventRepository {
	return &mongoEventRepo{col: col}
}

func (r *mongoEventRepo) Create(e *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *mongoEventRepo) All() ([]Event, error) {
	return r.find(bson.M{})
}

func (r *mongoEventRepo) ByCreator(userID int64) ([]Event, error) {
	return r.find(bson.M{"createdBy": userID})
}

func (r *mongoEventRepo) find(filter bson.M) ([]Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Event{}
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

func (r *mongoEventRepo) GetByID(id string) (Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var e Event
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return e, nil
}

func (r *mongoEventRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// DeleteOne on a missing id deletes nothing, so concurrent deletes are safe.
	_, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	return err
}
