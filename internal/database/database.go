package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoDocumentsCollection = "documents"

// MongoStore keeps each collection as a single document in the
// "documents" collection, keyed by collection name.
type MongoStore struct {
	client *mongo.Client
	docs   *mongo.Collection
}

type mongoDocument struct {
	Name      string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// ConnectMongo dials the server and pings it before returning.
func ConnectMongo(mongoURI, dbName string) (*MongoStore, error) {
	// Atlas clusters can take a while on cold start
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	slog.Info("connecting to MongoDB", "uri", maskURI(mongoURI), "database", dbName)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	slog.Info("connected to MongoDB")
	return &MongoStore{
		client: client,
		docs:   client.Database(dbName).Collection(mongoDocumentsCollection),
	}, nil
}

func (s *MongoStore) load(ctx context.Context, name string) ([]byte, error) {
	var doc mongoDocument
	err := s.docs.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s document: %w", name, err)
	}
	return []byte(doc.Body), nil
}

func (s *MongoStore) save(ctx context.Context, name string, body []byte) error {
	doc := mongoDocument{Name: name, Body: string(body), UpdatedAt: time.Now().UTC()}
	_, err := s.docs.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save %s document: %w", name, err)
	}
	return nil
}

func (s *MongoStore) LoadPosts(ctx context.Context) ([]models.Post, error) {
	raw, err := s.load(ctx, PostsDocument)
	if err != nil {
		return nil, err
	}
	return decodePosts(raw, "mongo:"+PostsDocument), nil
}

func (s *MongoStore) SavePosts(ctx context.Context, posts []models.Post) error {
	data, err := encodePosts(posts)
	if err != nil {
		return err
	}
	return s.save(ctx, PostsDocument, data)
}

func (s *MongoStore) LoadProfiles(ctx context.Context) (map[string]models.Profile, error) {
	raw, err := s.load(ctx, ProfilesDocument)
	if err != nil {
		return nil, err
	}
	return decodeProfiles(raw, "mongo:"+ProfilesDocument), nil
}

func (s *MongoStore) SaveProfiles(ctx context.Context, profiles map[string]models.Profile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}
	return s.save(ctx, ProfilesDocument, data)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// maskURI hides the password part of a connection string for logging.
func maskURI(uri string) string {
	schemeEnd := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if schemeEnd == -1 || at == -1 || at < schemeEnd {
		return uri
	}
	creds := uri[schemeEnd+3 : at]
	colon := strings.Index(creds, ":")
	if colon == -1 {
		return uri
	}
	return uri[:schemeEnd+3] + creds[:colon] + ":***" + uri[at:]
}
