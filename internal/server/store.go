// Package server implements the persistence-service wire contract for
// development and tests: a sqlite-backed project and asset store behind the
// JSON endpoints the remote gateway calls.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pveldt/roster/internal/entity"
	"github.com/pveldt/roster/internal/errors"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Store is the sqlite-backed project and asset store.
type Store struct {
	db *sql.DB
}

// Open initializes the store at baseDir/roster.db.
// The baseDir parameter allows tests to use t.TempDir().
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "roster.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS projects (
		  user_context    TEXT NOT NULL,
		  name            TEXT NOT NULL,
		  characters_json TEXT NOT NULL,
		  folders_json    TEXT NOT NULL,
		  view_state_json TEXT NOT NULL,
		  saved_at        INTEGER NOT NULL,
		  PRIMARY KEY (user_context, name)
		);

		CREATE TABLE IF NOT EXISTS temp_assets (
		  ref          TEXT PRIMARY KEY,
		  user_context TEXT NOT NULL,
		  kind         TEXT NOT NULL,
		  data         BLOB NOT NULL,
		  created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_temp_assets_user
		ON temp_assets(user_context);

		CREATE TABLE IF NOT EXISTS assets (
		  id           TEXT PRIMARY KEY,
		  user_context TEXT NOT NULL,
		  project_name TEXT NOT NULL,
		  data         BLOB NOT NULL,
		  created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_assets_project
		ON assets(user_context, project_name);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec("PRAGMA user_version=1"); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// ListProjects returns the project names saved under the user context,
// most recently saved first.
func (s *Store) ListProjects(userContext string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM projects WHERE user_context = ? ORDER BY saved_at DESC, name ASC",
		userContext,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewInternal(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return names, nil
}

// SaveProject stores a whole snapshot under (userContext, name), promoting
// every staged temp ref the snapshot references into a committed asset.
// Promotion and snapshot write happen in one transaction; the returned map
// resolves each promoted temp ref to its committed asset ID.
func (s *Store) SaveProject(userContext, name string, characters []*entity.Character, folders []*entity.Folder, viewState entity.ViewState) (map[string]string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("projectName", "project name is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	promoted := make(map[string]string)
	promote := func(ref string) (string, error) {
		if ref == "" {
			return "", nil
		}
		if id, done := promoted[ref]; done {
			return id, nil
		}
		var data []byte
		err := tx.QueryRow(
			"SELECT data FROM temp_assets WHERE ref = ? AND user_context = ?",
			ref, userContext,
		).Scan(&data)
		if err == sql.ErrNoRows {
			return "", errors.NewIntegrity("snapshot references unknown temp asset: " + ref)
		}
		if err != nil {
			return "", errors.NewInternal(err)
		}

		id := "ast_" + entity.MustID()
		_, err = tx.Exec(
			"INSERT INTO assets (id, user_context, project_name, data, created_at) VALUES (?, ?, ?, ?, ?)",
			id, userContext, name, data, time.Now().Unix(),
		)
		if err != nil {
			return "", errors.NewInternal(err)
		}
		if _, err := tx.Exec("DELETE FROM temp_assets WHERE ref = ?", ref); err != nil {
			return "", errors.NewInternal(err)
		}
		promoted[ref] = id
		return id, nil
	}

	// Commit staged refs into the snapshot itself, so the stored JSON only
	// carries committed asset IDs.
	for _, c := range characters {
		for i := range c.Avatars {
			a := &c.Avatars[i]
			if id, err := promote(a.TempOriginalRef); err != nil {
				return nil, err
			} else if id != "" {
				a.CommittedOriginalID = id
				a.TempOriginalRef = ""
			}
			if id, err := promote(a.TempThumbnailRef); err != nil {
				return nil, err
			} else if id != "" {
				a.CommittedThumbnailID = id
				a.TempThumbnailRef = ""
			}
		}
	}
	for _, f := range folders {
		if id, err := promote(f.TempCoverRef); err != nil {
			return nil, err
		} else if id != "" {
			f.CommittedCoverID = id
			f.TempCoverRef = ""
		}
	}

	charactersJSON, err := json.Marshal(characters)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	foldersJSON, err := json.Marshal(folders)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	viewStateJSON, err := json.Marshal(viewState)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	_, err = tx.Exec(`
		INSERT INTO projects (user_context, name, characters_json, folders_json, view_state_json, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_context, name) DO UPDATE SET
			characters_json = excluded.characters_json,
			folders_json = excluded.folders_json,
			view_state_json = excluded.view_state_json,
			saved_at = excluded.saved_at`,
		userContext, name, string(charactersJSON), string(foldersJSON), string(viewStateJSON), time.Now().Unix(),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return promoted, nil
}

// LoadProject fetches the named snapshot.
func (s *Store) LoadProject(userContext, name string) ([]*entity.Character, []*entity.Folder, entity.ViewState, error) {
	var charactersJSON, foldersJSON, viewStateJSON string
	err := s.db.QueryRow(
		"SELECT characters_json, folders_json, view_state_json FROM projects WHERE user_context = ? AND name = ?",
		userContext, name,
	).Scan(&charactersJSON, &foldersJSON, &viewStateJSON)
	if err == sql.ErrNoRows {
		return nil, nil, entity.ViewState{}, errors.NewNotFound("project", name)
	}
	if err != nil {
		return nil, nil, entity.ViewState{}, errors.NewInternal(err)
	}

	var characters []*entity.Character
	var folders []*entity.Folder
	var viewState entity.ViewState
	if err := json.Unmarshal([]byte(charactersJSON), &characters); err != nil {
		return nil, nil, entity.ViewState{}, errors.NewInternal(err)
	}
	if err := json.Unmarshal([]byte(foldersJSON), &folders); err != nil {
		return nil, nil, entity.ViewState{}, errors.NewInternal(err)
	}
	if err := json.Unmarshal([]byte(viewStateJSON), &viewState); err != nil {
		return nil, nil, entity.ViewState{}, errors.NewInternal(err)
	}
	return characters, folders, viewState, nil
}

// RenameProject renames a saved snapshot, carrying its assets along.
func (s *Store) RenameProject(userContext, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errors.NewValidation("newName", "new project name is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM projects WHERE user_context = ? AND name = ?",
		userContext, newName,
	).Scan(&exists)
	if err != nil {
		return errors.NewInternal(err)
	}
	if exists > 0 {
		return errors.NewDuplicateName("project", newName)
	}

	res, err := tx.Exec(
		"UPDATE projects SET name = ? WHERE user_context = ? AND name = ?",
		newName, userContext, oldName,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("project", oldName)
	}

	_, err = tx.Exec(
		"UPDATE assets SET project_name = ? WHERE user_context = ? AND project_name = ?",
		newName, userContext, oldName,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteProject removes a snapshot and its committed assets.
func (s *Store) DeleteProject(userContext, name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM projects WHERE user_context = ? AND name = ?", userContext, name)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("project", name)
	}

	_, err = tx.Exec("DELETE FROM assets WHERE user_context = ? AND project_name = ?", userContext, name)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// StageTemp stores uploaded bytes in the temp holding area and returns the
// temp ref.
func (s *Store) StageTemp(userContext, kind string, data []byte) (string, error) {
	ref := "tmp_" + entity.MustID()
	_, err := s.db.Exec(
		"INSERT INTO temp_assets (ref, user_context, kind, data, created_at) VALUES (?, ?, ?, ?, ?)",
		ref, userContext, kind, data, time.Now().Unix(),
	)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return ref, nil
}

// CleanupTemp deletes every staged asset of the user context. Returns the
// number released.
func (s *Store) CleanupTemp(userContext string) (int, error) {
	res, err := s.db.Exec("DELETE FROM temp_assets WHERE user_context = ?", userContext)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}

// TempCount returns the number of staged assets held for the user context.
func (s *Store) TempCount(userContext string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM temp_assets WHERE user_context = ?", userContext).Scan(&count)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// Asset returns the bytes of a committed asset.
func (s *Store) Asset(userContext, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM assets WHERE id = ? AND user_context = ?",
		id, userContext,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("asset", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// TempAsset returns the bytes of a staged asset.
func (s *Store) TempAsset(userContext, ref string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM temp_assets WHERE ref = ? AND user_context = ?",
		ref, userContext,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("asset", ref)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}
