package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Defining possible error
var ErrGraphNotFound = errors.New("graph does not exist")

// StoredGraph is a generated graph kept for later retrieval.
type StoredGraph struct {
	ID               string          `json:"graph_id"`
	Title            string          `json:"title"`
	IsDomainSpecific bool            `json:"is_domain_specific"`
	NumGenes         int             `json:"num_genes"`
	NumDomains       int             `json:"num_domains"`
	Genomes          []string        `json:"genomes"`
	Payload          json.RawMessage `json:"graphs,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

const graphSchema = `
	CREATE TABLE IF NOT EXISTS graphs (
		graph_id           TEXT PRIMARY KEY,
		title              TEXT NOT NULL DEFAULT '',
		is_domain_specific INTEGER NOT NULL,
		num_genes          INTEGER NOT NULL,
		num_domains        INTEGER NOT NULL,
		genomes            TEXT NOT NULL,
		payload            BLOB NOT NULL,
		created_at         INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS graphs_created_at ON graphs (created_at);
`

// GraphStore persists graphs in the sqlite database opened by the caller.
type GraphStore struct {
	sql *sql.DB
	now func() time.Time
}

func NewGraphStore(ctx context.Context, db *sql.DB) (*GraphStore, error) {

	if _, err := db.ExecContext(ctx, graphSchema); err != nil {
		return nil, fmt.Errorf("create graphs table: %w", err)
	}

	return &GraphStore{sql: db, now: time.Now}, nil
}

// Save assigns an id and creation time to g and stores it.
func (s *GraphStore) Save(ctx context.Context, g *StoredGraph) error {

	g.ID = uuid.New().String()
	g.CreatedAt = s.now().UTC()

	genomes, err := json.Marshal(g.Genomes)
	if err != nil {
		return fmt.Errorf("encode genomes: %w", err)
	}

	_, err = s.sql.ExecContext(ctx, `
		INSERT INTO graphs (graph_id, title, is_domain_specific, num_genes, num_domains, genomes, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.IsDomainSpecific, g.NumGenes, g.NumDomains, string(genomes), []byte(g.Payload), g.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert graph %s: %w", g.ID, err)
	}

	return nil
}

// Get returns the graph with its payload, or ErrGraphNotFound.
func (s *GraphStore) Get(ctx context.Context, id string) (*StoredGraph, error) {

	row := s.sql.QueryRowContext(ctx, `
		SELECT graph_id, title, is_domain_specific, num_genes, num_domains, genomes, payload, created_at
		FROM graphs WHERE graph_id = ?`, id)

	g, err := scanGraph(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// List returns up to limit graphs, newest first, without their payloads.
func (s *GraphStore) List(ctx context.Context, limit int) ([]*StoredGraph, error) {

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sql.QueryContext(ctx, `
		SELECT graph_id, title, is_domain_specific, num_genes, num_domains, genomes, created_at
		FROM graphs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	graphs := make([]*StoredGraph, 0, limit)
	for rows.Next() {
		g, err := scanGraph(rows, false)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}

	return graphs, rows.Err()
}

// Delete removes a graph. Deleting a missing graph is ErrGraphNotFound.
func (s *GraphStore) Delete(ctx context.Context, id string) error {

	res, err := s.sql.ExecContext(ctx, `DELETE FROM graphs WHERE graph_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete graph %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGraph(row scanner, withPayload bool) (*StoredGraph, error) {

	var (
		g         StoredGraph
		genomes   string
		payload   []byte
		createdAt int64
	)

	dest := []any{&g.ID, &g.Title, &g.IsDomainSpecific, &g.NumGenes, &g.NumDomains, &genomes}
	if withPayload {
		dest = append(dest, &payload)
	}
	dest = append(dest, &createdAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(genomes), &g.Genomes); err != nil {
		return nil, fmt.Errorf("decode genomes of graph %s: %w", g.ID, err)
	}
	if withPayload {
		g.Payload = json.RawMessage(payload)
	}
	g.CreatedAt = time.Unix(0, createdAt).UTC()

	return &g, nil
}
