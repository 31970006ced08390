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

// SaveNote upserts the note in both tiers, stamping updated_at. A note
// arriving without an ID gets a fresh one; IDs are minted on the client,
// never by the remote. When the remote is unreachable the mutation is
// also recorded in the sync queue.
func (s *LocalStore) SaveNote(ctx context.Context, note models.Note) (models.Note, error) {
	log := logger.FromContext(ctx)

	if note.ID == "" {
		note.ID = s.ids.Generate()
	}

	now := s.now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	op := models.OperationCreate
	if s.recordExists(ctx, models.EntityNote, note.ID) {
		op = models.OperationUpdate
	}

	if s.db != nil {
		_, err := s.db.ExecContext(ctx, upsertNote,
			note.ID,
			note.Title,
			note.Content,
			note.FolderID,
			note.CreatedAt,
			note.UpdatedAt,
			note.DeviceID,
		)
		if err != nil {
			log.Err(err).
				Str("func", "LocalStore.SaveNote").
				Str("id", note.ID).
				Msg("failed to execute upsert for note")
			return models.Note{}, fmt.Errorf("failed to save note (id=%s): %w", note.ID, err)
		}
		s.rewriteSnapshot(ctx, models.CollectionNotes)
	} else {
		if err := s.saveNoteSnapshot(note); err != nil {
			log.Err(err).
				Str("func", "LocalStore.SaveNote").
				Str("id", note.ID).
				Msg("failed to save note to snapshot tier")
			return models.Note{}, err
		}
	}

	s.recordOffline(ctx, op, models.EntityNote, note.ID, note)
	return note, nil
}

// GetNote returns the note with the ID or ErrNoteNotFound.
func (s *LocalStore) GetNote(ctx context.Context, id string) (models.Note, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		notes, err := s.snapshotNotes()
		if err != nil {
			return models.Note{}, err
		}
		for _, note := range notes {
			if note.ID == id {
				return note, nil
			}
		}
		return models.Note{}, ErrNoteNotFound
	}

	var note models.Note
	row := s.db.QueryRowContext(ctx, getNote, id)
	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.FolderID,
		&note.CreatedAt,
		&note.UpdatedAt,
		&note.DeviceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, ErrNoteNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetNote").
			Str("id", id).
			Msg("failed to scan note row")
		return models.Note{}, fmt.Errorf("failed to scan note row: %w", err)
	}

	return note, nil
}

// GetAllNotes returns every note, newest first.
func (s *LocalStore) GetAllNotes(ctx context.Context) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		return s.snapshotNotes()
	}

	rows, err := s.db.QueryContext(ctx, getAllNotes)
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetAllNotes").
			Msg("failed to execute query for getting all notes")
		return nil, fmt.Errorf("failed to query all notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note

	for rows.Next() {
		var note models.Note

		scanErr := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.FolderID,
			&note.CreatedAt,
			&note.UpdatedAt,
			&note.DeviceID,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "LocalStore.GetAllNotes").
				Msg("failed to scan note row")
			return nil, fmt.Errorf("failed to scan note row: %w", scanErr)
		}

		notes = append(notes, note)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "LocalStore.GetAllNotes").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating note rows: %w", rowsErr)
	}

	return notes, nil
}

// DeleteNote removes the note from both tiers. Deleting an absent note is
// not an error. When offline the deletion is recorded in the sync queue.
func (s *LocalStore) DeleteNote(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, deleteNote, id); err != nil {
			log.Err(err).
				Str("func", "LocalStore.DeleteNote").
				Str("id", id).
				Msg("failed to execute delete for note")
			return fmt.Errorf("failed to delete note (id=%s): %w", id, err)
		}
		s.rewriteSnapshot(ctx, models.CollectionNotes)
	} else {
		if err := s.deleteNoteSnapshot(id); err != nil {
			return err
		}
	}

	s.recordOffline(ctx, models.OperationDelete, models.EntityNote, id, nil)
	return nil
}

func (s *LocalStore) snapshotNotes() ([]models.Note, error) {
	records, ok := s.snapshots.Snapshot(SnapshotNotes)
	if !ok {
		return nil, nil
	}

	var notes []models.Note
	if err := json.Unmarshal(records, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes snapshot: %w", err)
	}
	return notes, nil
}

func (s *LocalStore) saveNoteSnapshot(note models.Note) error {
	notes, err := s.snapshotNotes()
	if err != nil {
		return err
	}

	replaced := false
	for i := range notes {
		if notes[i].ID == note.ID {
			notes[i] = note
			replaced = true
			break
		}
	}
	if !replaced {
		notes = append(notes, note)
	}

	records, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes snapshot: %w", err)
	}
	return s.snapshots.SetSnapshot(SnapshotNotes, records)
}

func (s *LocalStore) deleteNoteSnapshot(id string) error {
	notes, err := s.snapshotNotes()
	if err != nil {
		return err
	}

	kept := notes[:0]
	for _, note := range notes {
		if note.ID != id {
			kept = append(kept, note)
		}
	}
	if len(kept) == len(notes) {
		return nil
	}

	records, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("failed to encode notes snapshot: %w", err)
	}
	return s.snapshots.SetSnapshot(SnapshotNotes, records)
}
