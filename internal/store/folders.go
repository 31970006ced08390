package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/models"
)

// SaveFolder upserts the folder in both tiers, stamping updated_at. When
// the remote is unreachable the mutation is also recorded in the sync
// queue.
func (s *LocalStore) SaveFolder(ctx context.Context, folder models.Folder) (models.Folder, error) {
	log := logger.FromContext(ctx)

	if folder.ID == "" {
		folder.ID = s.ids.Generate()
	}

	now := s.now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now

	op := models.OperationCreate
	if s.recordExists(ctx, models.EntityFolder, folder.ID) {
		op = models.OperationUpdate
	}

	if s.db != nil {
		_, err := s.db.ExecContext(ctx, upsertFolder,
			folder.ID,
			folder.Name,
			folder.ParentID,
			folder.CreatedAt,
			folder.UpdatedAt,
			folder.DeviceID,
		)
		if err != nil {
			log.Err(err).
				Str("func", "LocalStore.SaveFolder").
				Str("id", folder.ID).
				Msg("failed to execute upsert for folder")
			return models.Folder{}, fmt.Errorf("failed to save folder (id=%s): %w", folder.ID, err)
		}
		s.rewriteSnapshot(ctx, models.CollectionFolders)
	} else {
		if err := s.saveFolderSnapshot(folder); err != nil {
			log.Err(err).
				Str("func", "LocalStore.SaveFolder").
				Str("id", folder.ID).
				Msg("failed to save folder to snapshot tier")
			return models.Folder{}, err
		}
	}

	s.recordOffline(ctx, op, models.EntityFolder, folder.ID, folder)
	return folder, nil
}

// GetFolder returns the folder with the ID or ErrFolderNotFound.
func (s *LocalStore) GetFolder(ctx context.Context, id string) (models.Folder, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		folders, err := s.snapshotFolders()
		if err != nil {
			return models.Folder{}, err
		}
		for _, folder := range folders {
			if folder.ID == id {
				return folder, nil
			}
		}
		return models.Folder{}, ErrFolderNotFound
	}

	var folder models.Folder
	row := s.db.QueryRowContext(ctx, getFolder, id)
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.DeviceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Folder{}, ErrFolderNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetFolder").
			Str("id", id).
			Msg("failed to scan folder row")
		return models.Folder{}, fmt.Errorf("failed to scan folder row: %w", err)
	}

	return folder, nil
}

// GetAllFolders returns every folder, ordered by name.
func (s *LocalStore) GetAllFolders(ctx context.Context) ([]models.Folder, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return s.snapshotFolders()
	}

	rows, err := s.db.QueryContext(ctx, getAllFolders)
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetAllFolders").
			Msg("failed to execute query for getting all folders")
		return nil, fmt.Errorf("failed to query all folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder

	for rows.Next() {
		var folder models.Folder

		scanErr := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
			&folder.DeviceID,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "LocalStore.GetAllFolders").
				Msg("failed to scan folder row")
			return nil, fmt.Errorf("failed to scan folder row: %w", scanErr)
		}

		folders = append(folders, folder)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "LocalStore.GetAllFolders").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating folder rows: %w", rowsErr)
	}

	return folders, nil
}

// DeleteFolder removes the folder from both tiers. Records inside the
// folder are left in place; the caller decides what happens to them.
func (s *LocalStore) DeleteFolder(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, deleteFolder, id); err != nil {
			log.Err(err).
				Str("func", "LocalStore.DeleteFolder").
				Str("id", id).
				Msg("failed to execute delete for folder")
			return fmt.Errorf("failed to delete folder (id=%s): %w", id, err)
		}
		s.rewriteSnapshot(ctx, models.CollectionFolders)
	} else {
		if err := s.deleteFolderSnapshot(id); err != nil {
			return err
		}
	}

	s.recordOffline(ctx, models.OperationDelete, models.EntityFolder, id, nil)
	return nil
}

func (s *LocalStore) snapshotFolders() ([]models.Folder, error) {
	records, ok := s.snapshots.Snapshot(SnapshotFolders)
	if !ok {
		return nil, nil
	}

	var folders []models.Folder
	if err := json.Unmarshal(records, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders snapshot: %w", err)
	}
	return folders, nil
}

func (s *LocalStore) saveFolderSnapshot(folder models.Folder) error {
	folders, err := s.snapshotFolders()
	if err != nil {
		return err
	}

	replaced := false
	for i := range folders {
		if folders[i].ID == folder.ID {
			folders[i] = folder
			replaced = true
			break
		}
	}
	if !replaced {
		folders = append(folders, folder)
	}

	records, err := json.Marshal(folders)
	if err != nil {
		return fmt.Errorf("failed to encode folders snapshot: %w", err)
	}
	return s.snapshots.SetSnapshot(SnapshotFolders, records)
}

func (s *LocalStore) deleteFolderSnapshot(id string) error {
	folders, err := s.snapshotFolders()
	if err != nil {
		return err
	}

	kept := folders[:0]
	for _, folder := range folders {
		if folder.ID != id {
			kept = append(kept, folder)
		}
	}
	if len(kept) == len(folders) {
		return nil
	}

	records, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("failed to encode folders snapshot: %w", err)
	}
	return s.snapshots.SetSnapshot(SnapshotFolders, records)
}
