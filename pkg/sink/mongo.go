package sink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/internal/version"
	"github.com/energydata/aep/pkg/pipeline"
)

// MongoConfig holds the connection settings for MongoSink.
// There are no defaults for URI or credentials.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	// Replace deletes the collection's documents before each insert.
	Replace bool
}

// Validate checks that every required field is set.
func (c MongoConfig) Validate() error {
	switch {
	case c.URI == "":
		return errors.New("mongo: URI is required")
	case c.Database == "":
		return errors.New("mongo: database is required")
	case c.Collection == "":
		return errors.New("mongo: collection is required")
	}
	return nil
}

// MongoSink writes documents to a MongoDB collection with InsertMany.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	config     MongoConfig
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
// The caller owns the returned sink and must Close it.
func NewMongo(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger.Debug("connecting to mongo",
		"uri", RedactURI(cfg.URI),
		"database", cfg.Database,
		"collection", cfg.Collection)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(version.Product()).
		SetTimeout(cfg.Timeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo %s: %w", RedactURI(cfg.URI), err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		config:     cfg,
	}, nil
}

// BulkInsert writes docs with an unordered InsertMany. On a partial failure
// the number of documents that did get written is returned with the error.
func (s *MongoSink) BulkInsert(ctx context.Context, docs []pipeline.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	if s.config.Replace {
		res, err := s.collection.DeleteMany(ctx, bson.D{})
		if err != nil {
			return 0, fmt.Errorf("clear collection: %w", err)
		}
		logger.InfoContext(ctx, "collection cleared", "collection", s.Name(), "deleted", res.DeletedCount)
	}

	records := make([]bson.D, len(docs))
	for i, doc := range docs {
		records[i] = toBSON(doc)
	}

	res, err := s.collection.InsertMany(ctx, records, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
			written := len(docs) - len(bwe.WriteErrors)
			return written, fmt.Errorf("insert %d documents: %d failed: %w", len(docs), len(bwe.WriteErrors), err)
		}
		return 0, fmt.Errorf("insert %d documents: %w", len(docs), err)
	}

	logger.DebugContext(ctx, "documents inserted", "collection", s.Name(), "count", len(res.InsertedIDs))
	return len(res.InsertedIDs), nil
}

// toBSON lays out a document with the key fields first and the year
// values in ascending order, so stored documents are byte-for-byte stable.
func toBSON(doc pipeline.Document) bson.D {
	fields := doc.Fields()
	d := make(bson.D, 0, len(fields)+3)
	for i, f := range fields {
		d = append(d, bson.E{Key: pipeline.KeyColumns[i], Value: f})
	}

	years := doc.Years()
	values := make(bson.D, 0, len(years))
	for _, y := range years {
		if v := doc.Values[y]; v != nil {
			values = append(values, bson.E{Key: y, Value: *v})
		} else {
			values = append(values, bson.E{Key: y, Value: nil})
		}
	}

	return append(d,
		bson.E{Key: "values", Value: values},
		bson.E{Key: "run_id", Value: doc.RunID},
		bson.E{Key: "fetched_at", Value: doc.FetchedAt},
	)
}

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Name returns "mongo:<database>.<collection>".
func (s *MongoSink) Name() string {
	return "mongo:" + s.config.Database + "." + s.config.Collection
}

// RedactURI replaces the password of a connection string with "***".
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
