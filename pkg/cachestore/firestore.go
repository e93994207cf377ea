package cachestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig holds configuration for the Firestore client.
type FirestoreConfig struct {
	ProjectID      string
	CollectionName string
}

// firestoreDoc is the single-field document shape used to hold raw bytes.
type firestoreDoc struct {
	Value []byte `firestore:"value"`
}

// FirestoreStore is a Store backed by a Firestore collection, one document
// per key.
//
// ALLOW FIRESTORE TO BE USED IN LOW VOLUME DEPLOYMENTS
// don't use it like this in high volume deployments - that's what redis is for.
type FirestoreStore struct {
	client         *firestore.Client
	collectionName string
	logger         zerolog.Logger
}

// NewFirestoreStore creates a new FirestoreStore. The client's lifecycle is
// managed by the caller; Close does not close it.
func NewFirestoreStore(cfg *FirestoreConfig, client *firestore.Client, logger zerolog.Logger) (*FirestoreStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Str("collection", cfg.CollectionName).Msg("FirestoreStore initialized.")

	return &FirestoreStore{
		client:         client,
		collectionName: cfg.CollectionName,
		logger:         logger.With().Str("component", "FirestoreStore").Logger(),
	}, nil
}

// Get retrieves the value for key.
func (s *FirestoreStore) Get(ctx context.Context, key string) ([]byte, error) {
	docSnap, err := s.client.Collection(s.collectionName).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("firestore get for %s: %w", key, err)
	}

	var doc firestoreDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore DataTo for %s: %w", key, err)
	}
	return doc.Value, nil
}

// Set stores value under key.
func (s *FirestoreStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.Collection(s.collectionName).Doc(key).Set(ctx, firestoreDoc{Value: value})
	if err != nil {
		return fmt.Errorf("firestore set for %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Firestore deletes are idempotent.
func (s *FirestoreStore) Remove(ctx context.Context, key string) error {
	_, err := s.client.Collection(s.collectionName).Doc(key).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore delete for %s: %w", key, err)
	}
	return nil
}

// Close is a no-op as the Firestore client's lifecycle is managed externally.
func (s *FirestoreStore) Close() error {
	s.logger.Info().Msg("FirestoreStore does not close the injected Firestore client.")
	return nil
}
