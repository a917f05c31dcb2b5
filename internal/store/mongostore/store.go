package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"todo-api/internal/model"
	"todo-api/internal/todo"
)

const countersCollection = "counters"

type Store struct {
	client   *mongo.Client
	items    *mongo.Collection
	counters *mongo.Collection
	seqKey   string
	timeout  time.Duration
}

func Connect(ctx context.Context, uri, db, coll string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	s := New(client, db, coll)
	if err := s.PingContext(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return s, nil
}

func New(client *mongo.Client, db, coll string) *Store {
	wc := options.Collection().SetWriteConcern(writeconcern.Majority())
	database := client.Database(db)
	return &Store{
		client:   client,
		items:    database.Collection(coll, wc),
		counters: database.Collection(countersCollection, wc),
		seqKey:   coll,
		timeout:  5 * time.Second,
	}
}

func (s *Store) PingContext(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Begin(ctx context.Context) (todo.Session, error) {
	return &session{store: s}, nil
}

type todoDoc struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	IsCompleted bool      `bson:"is_completed"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d todoDoc) toModel() model.TodoItem {
	return model.TodoItem{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		IsCompleted: d.IsCompleted,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func toDoc(t model.TodoItem) todoDoc {
	return todoDoc{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

// session buffers writes and sends them as one ordered bulk write.
type session struct {
	store         *Store
	writes        []mongo.WriteModel
	expectMatched int64
	expectDeleted int64
}

func (s *session) ListAll(ctx context.Context) ([]model.TodoItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.store.timeout)
	defer cancel()

	cur, err := s.store.items.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []model.TodoItem{}
	for cur.Next(ctx) {
		var d todoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		items = append(items, d.toModel())
	}
	return items, cur.Err()
}

func (s *session) FindByID(ctx context.Context, id int64) (model.TodoItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.store.timeout)
	defer cancel()

	var d todoDoc
	err := s.store.items.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.TodoItem{}, model.ErrNotFound
		}
		return model.TodoItem{}, err
	}
	return d.toModel(), nil
}

func (s *session) Insert(ctx context.Context, item model.TodoItem) (model.TodoItem, error) {
	id, err := s.store.nextID(ctx)
	if err != nil {
		return model.TodoItem{}, err
	}
	item.ID = id
	s.writes = append(s.writes, mongo.NewInsertOneModel().SetDocument(toDoc(item)))
	return item, nil
}

func (s *session) Update(ctx context.Context, item model.TodoItem) error {
	s.writes = append(s.writes, mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": item.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"title":        item.Title,
			"description":  item.Description,
			"is_completed": item.IsCompleted,
		}}))
	s.expectMatched++
	return nil
}

func (s *session) Remove(ctx context.Context, item model.TodoItem) error {
	s.writes = append(s.writes, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": item.ID}))
	s.expectDeleted++
	return nil
}

func (s *session) PersistChanges(ctx context.Context) error {
	if len(s.writes) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.store.timeout)
	defer cancel()

	res, err := s.store.items.BulkWrite(ctx, s.writes, options.BulkWrite().SetOrdered(true))
	s.writes = nil
	if err != nil {
		return err
	}
	if res.MatchedCount < s.expectMatched || res.DeletedCount < s.expectDeleted {
		return model.ErrNotFound
	}
	return nil
}

func (s *session) Close() error {
	s.writes = nil
	return nil
}

// nextID draws from a per-collection counter, so ids are never reused.
func (s *Store) nextID(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var c struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.seqKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return c.Seq, nil
}
