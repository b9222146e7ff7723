package repository

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jFollowRepo est le backend alternatif du graphe social.
// Mêmes garanties que la table follows : arête (a)-[:FOLLOWS]->(b) unique,
// mutations idempotentes.
type Neo4jFollowRepo struct {
	driver neo4j.DriverWithContext
}

func NewNeo4jFollowRepo(driver neo4j.DriverWithContext) *Neo4jFollowRepo {
	return &Neo4jFollowRepo{driver: driver}
}

// EnsureSchema crée la contrainte d'unicité sur User.id (idempotent).
func (r *Neo4jFollowRepo) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		q := `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`
		_, err := tx.Run(ctx, q, nil)
		return nil, err
	})
	return err
}

// Create : MERGE est idempotent. Les compteurs du résumé disent si la
// flèche a réellement été créée.
func (r *Neo4jFollowRepo) Create(ctx context.Context, followerID, followedID string) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	created, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		q := `
			MERGE (a:User {id: $followerId})
			MERGE (b:User {id: $followedId})
			MERGE (a)-[r:FOLLOWS]->(b)
			ON CREATE SET r.created_at = datetime()
		`
		res, err := tx.Run(ctx, q, map[string]any{
			"followerId": followerID,
			"followedId": followedID,
		})
		if err != nil {
			return false, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return false, err
		}
		return summary.Counters().RelationshipsCreated() > 0, nil
	})
	if err != nil {
		return false, err
	}
	return created.(bool), nil
}

func (r *Neo4jFollowRepo) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	removed, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		q := `
			MATCH (a:User {id: $followerId})-[r:FOLLOWS]->(b:User {id: $followedId})
			DELETE r
		`
		res, err := tx.Run(ctx, q, map[string]any{
			"followerId": followerID,
			"followedId": followedID,
		})
		if err != nil {
			return false, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return false, err
		}
		return summary.Counters().RelationshipsDeleted() > 0, nil
	})
	if err != nil {
		return false, err
	}
	return removed.(bool), nil
}

func (r *Neo4jFollowRepo) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	exists, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		q := `
			RETURN EXISTS {
				MATCH (:User {id: $followerId})-[:FOLLOWS]->(:User {id: $followedId})
			} AS following
		`
		res, err := tx.Run(ctx, q, map[string]any{
			"followerId": followerID,
			"followedId": followedID,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			v, _ := res.Record().Get("following")
			return v.(bool), nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, err
	}
	return exists.(bool), nil
}

func (r *Neo4jFollowRepo) CountFollowed(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `MATCH (:User {id: $userId})-[:FOLLOWS]->(f:User) RETURN count(f) AS n`, userID)
}

func (r *Neo4jFollowRepo) CountFollowers(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `MATCH (:User {id: $userId})<-[:FOLLOWS]-(f:User) RETURN count(f) AS n`, userID)
}

func (r *Neo4jFollowRepo) ListFollowedIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `MATCH (:User {id: $userId})-[:FOLLOWS]->(f:User) RETURN f.id AS id ORDER BY id`, userID)
}

func (r *Neo4jFollowRepo) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `MATCH (:User {id: $userId})<-[:FOLLOWS]-(f:User) RETURN f.id AS id ORDER BY id`, userID)
}

// --- HELPERS ---

func (r *Neo4jFollowRepo) count(ctx context.Context, query, userID string) (int, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	n, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"userId": userID})
		if err != nil {
			return 0, err
		}
		if res.Next(ctx) {
			v, _ := res.Record().Get("n")
			return int(v.(int64)), nil
		}
		return 0, res.Err()
	})
	if err != nil {
		return 0, err
	}
	return n.(int), nil
}

func (r *Neo4jFollowRepo) listIDs(ctx context.Context, query, userID string) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// Pas d'ExecuteRead : on streame le résultat manuellement
	res, err := session.Run(ctx, query, map[string]any{"userId": userID})
	if err != nil {
		return nil, err
	}

	var ids []string
	for res.Next(ctx) {
		v, _ := res.Record().Get("id")
		ids = append(ids, v.(string))
	}
	return ids, res.Err()
}
