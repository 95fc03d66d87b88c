// Package store persists mapping files in MongoDB, one document per named
// mapping.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

var ErrNotFound = errors.New("mapping not found")

const opTimeout = 30 * time.Second

// document is the stored shape. Mapping stays a bson.D so key order
// survives the round trip.
type document struct {
	Name        string         `bson:"_id"`
	Version     string         `bson:"version"`
	Source      schemaDocument `bson:"source"`
	Destination schemaDocument `bson:"destination"`
	Mapping     bson.D         `bson:"mapping"`
	UpdatedAt   time.Time      `bson:"updatedAt"`
}

type schemaDocument struct {
	Name   string         `bson:"name,omitempty"`
	Fields []models.Field `bson:"fields"`
}

func toDocument(name string, mf *config.MappingFile, now time.Time) document {
	version := mf.Version
	if version == "" {
		version = config.MappingFileVersion
	}
	return document{
		Name:        name,
		Version:     version,
		Source:      schemaDocument{Name: mf.Source.Name, Fields: mf.Source.Fields},
		Destination: schemaDocument{Name: mf.Destination.Name, Fields: mf.Destination.Fields},
		Mapping:     mf.Mapping.ToBSON(),
		UpdatedAt:   now.UTC(),
	}
}

func fromDocument(doc document) (*config.MappingFile, error) {
	mapping, err := models.MappingFromBSON(doc.Mapping)
	if err != nil {
		return nil, fmt.Errorf("mapping %q: %w", doc.Name, err)
	}
	return &config.MappingFile{
		Version:     doc.Version,
		Source:      config.SchemaFile{Name: doc.Source.Name, Fields: doc.Source.Fields},
		Destination: config.SchemaFile{Name: doc.Destination.Name, Fields: doc.Destination.Fields},
		Mapping:     mapping,
	}, nil
}

type MongoStore struct {
	Client     *mongo.Client
	Database   string
	Collection string
}

func NewMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{Client: client, Database: database, Collection: collection}
}

func (s *MongoStore) coll() *mongo.Collection {
	return s.Client.Database(s.Database).Collection(s.Collection)
}

// Save upserts mf under name.
func (s *MongoStore) Save(ctx context.Context, name string, mf *config.MappingFile) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := toDocument(name, mf, time.Now())
	filter := bson.M{"_id": name}
	res, err := s.coll().ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save mapping %q: %w", name, err)
	}
	logger.Infof("Mongo save %q: Match %d, Mod %d, Upsert %d", name, res.MatchedCount, res.ModifiedCount, res.UpsertedCount)
	return nil
}

// Load returns the mapping stored under name or ErrNotFound.
func (s *MongoStore) Load(ctx context.Context, name string) (*config.MappingFile, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc document
	err := s.coll().FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping %q: %w", name, err)
	}
	return fromDocument(doc)
}

// Summary is one line of List output.
type Summary struct {
	Name      string    `bson:"_id"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// List returns stored mapping names sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	findOpts := options.Find().
		SetProjection(bson.M{"_id": 1, "updatedAt": 1}).
		SetSort(bson.M{"_id": 1})

	cursor, err := s.coll().Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Summary
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode mapping list: %w", err)
	}
	return out, nil
}

// Delete removes the mapping stored under name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("failed to delete mapping %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return nil
}
