package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
)

// PlaceGraphService maintains the user/place save graph. All operations are
// best-effort enrichment: a nil driver disables the service, and callers
// treat every error as a missing signal.
type PlaceGraphService struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

func NewPlaceGraphService(driver neo4j.DriverWithContext, logger *logrus.Logger) *PlaceGraphService {
	if driver == nil {
		return nil
	}
	return &PlaceGraphService{driver: driver, logger: logger}
}

// RecordSave writes a SAVED edge from the user to the place, creating both
// nodes when absent.
func (s *PlaceGraphService) RecordSave(ctx context.Context, userID uuid.UUID, placeName string, category string) error {
	if s == nil {
		return nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	cypher := `
		MERGE (u:User {id: $user_id})
		MERGE (p:Place {name: $place_name})
		SET p.category = $category
		MERGE (u)-[r:SAVED]->(p)
		SET r.saved_at = datetime()
		RETURN p.name`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]interface{}{
			"user_id":    userID.String(),
			"place_name": placeName,
			"category":   category,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		s.logger.WithError(err).WithField("place", placeName).Warn("Failed to record place save")
	}
	return err
}

// AlsoSaved returns names of places frequently saved by users who also
// saved the given place.
func (s *PlaceGraphService) AlsoSaved(ctx context.Context, placeName string, limit int) ([]string, error) {
	if s == nil {
		return nil, nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	cypher := `
		MATCH (p:Place {name: $place_name})<-[:SAVED]-(u:User)-[:SAVED]->(other:Place)
		WHERE other.name <> $place_name
		RETURN other.name as name, COUNT(u) as savers
		ORDER BY savers DESC
		LIMIT $limit`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]interface{}{
			"place_name": placeName,
			"limit":      limit,
		})
		if err != nil {
			return nil, err
		}

		var names []string
		for result.Next(ctx) {
			record := result.Record()
			if name, ok := record.Get("name"); ok {
				if s, ok := name.(string); ok {
					names = append(names, s)
				}
			}
		}
		return names, result.Err()
	})
	if err != nil {
		return nil, err
	}

	names, _ := result.([]string)
	return names, nil
}
