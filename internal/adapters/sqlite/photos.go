package sqlite

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
)

const photoColumns = "id, captured_at, user_caption, assistant_caption, stage, image, user_layer, composite"

// SavePhoto inserts p, or updates it in place keeping its history position.
func (a *Adapter) SavePhoto(ctx context.Context, p domain.PhotoRecord) error {
	raw, err := imaging.PNGBytes(p.Image)
	if err != nil {
		return fmt.Errorf("sqlite: encode photo %s: %w", p.ID, err)
	}
	userLayer, err := imaging.PNGBytes(p.UserLayer)
	if err != nil {
		return fmt.Errorf("sqlite: encode user layer %s: %w", p.ID, err)
	}
	composite, err := imaging.PNGBytes(p.Composite)
	if err != nil {
		return fmt.Errorf("sqlite: encode composite %s: %w", p.ID, err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO photos (` + photoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			captured_at=excluded.captured_at,
			user_caption=excluded.user_caption,
			assistant_caption=excluded.assistant_caption,
			stage=excluded.stage,
			image=excluded.image,
			user_layer=excluded.user_layer,
			composite=excluded.composite;
	`
	if _, err := tx.ExecContext(ctx, query,
		p.ID,
		p.CapturedAt.UTC().Format(time.RFC3339Nano),
		p.UserCaption,
		p.AssistantCaption,
		int(p.Stage),
		raw,
		userLayer,
		composite,
	); err != nil {
		return fmt.Errorf("sqlite: save photo %s: %w", p.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: transaction commit failed: %w", err)
	}
	return nil
}

// GetPhoto loads one record.
func (a *Adapter) GetPhoto(ctx context.Context, id string) (domain.PhotoRecord, error) {
	row := a.db.QueryRowContext(ctx, "SELECT "+photoColumns+" FROM photos WHERE id = ?", id)
	p, err := scanPhoto(row)
	if isNoRows(err) {
		return domain.PhotoRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PhotoRecord{}, fmt.Errorf("sqlite: load photo %s: %w", id, err)
	}
	return p, nil
}

// ListPhotos returns every record in insertion order.
func (a *Adapter) ListPhotos(ctx context.Context) ([]domain.PhotoRecord, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT "+photoColumns+" FROM photos ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list photos: %w", err)
	}
	defer rows.Close()

	photos := []domain.PhotoRecord{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate photos: %w", err)
	}
	return photos, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(s scanner) (domain.PhotoRecord, error) {
	var (
		p          domain.PhotoRecord
		capturedAt string
		stage      int
		raw        []byte
		userLayer  []byte
		composite  []byte
	)
	if err := s.Scan(&p.ID, &capturedAt, &p.UserCaption, &p.AssistantCaption, &stage, &raw, &userLayer, &composite); err != nil {
		return domain.PhotoRecord{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, capturedAt)
	if err != nil {
		return domain.PhotoRecord{}, fmt.Errorf("parse captured_at: %w", err)
	}
	p.CapturedAt = t
	p.Stage = domain.Stage(stage)

	for _, blob := range []struct {
		data []byte
		dst  *image.Image
	}{
		{raw, &p.Image},
		{userLayer, &p.UserLayer},
		{composite, &p.Composite},
	} {
		img, err := imaging.FromPNGBytes(blob.data)
		if err != nil {
			return domain.PhotoRecord{}, err
		}
		*blob.dst = img
	}
	return p, nil
}

// SaveArtifact stores img under name, replacing any previous image.
func (a *Adapter) SaveArtifact(ctx context.Context, name string, img image.Image) error {
	data, err := imaging.PNGBytes(img)
	if err != nil {
		return fmt.Errorf("sqlite: encode artifact %s: %w", name, err)
	}
	if data == nil {
		return a.DeleteArtifact(ctx, name)
	}
	query := `
		INSERT INTO artifacts (name, image) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET image=excluded.image, updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := a.db.ExecContext(ctx, query, name, data); err != nil {
		return fmt.Errorf("sqlite: save artifact %s: %w", name, err)
	}
	return nil
}

// GetArtifact returns the image stored under name, or nil.
func (a *Adapter) GetArtifact(ctx context.Context, name string) (image.Image, error) {
	var data []byte
	err := a.db.QueryRowContext(ctx, "SELECT image FROM artifacts WHERE name = ?", name).Scan(&data)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load artifact %s: %w", name, err)
	}
	return imaging.FromPNGBytes(data)
}

// DeleteArtifact removes name.
func (a *Adapter) DeleteArtifact(ctx context.Context, name string) error {
	if _, err := a.db.ExecContext(ctx, "DELETE FROM artifacts WHERE name = ?", name); err != nil {
		return fmt.Errorf("sqlite: delete artifact %s: %w", name, err)
	}
	return nil
}
