package sqlite

import (
	"context"
	"fmt"
	"strconv"
)

func (a *Adapter) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := a.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if isNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: load preference %s: %w", key, err)
	}
	return value, true, nil
}

func (a *Adapter) set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := a.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("sqlite: save preference %s: %w", key, err)
	}
	return nil
}

// GetString returns the value stored under key, or def.
func (a *Adapter) GetString(ctx context.Context, key, def string) (string, error) {
	v, ok, err := a.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// GetInt returns the integer stored under key, or def.
func (a *Adapter) GetInt(ctx context.Context, key string, def int) (int, error) {
	v, ok, err := a.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("sqlite: preference %s is not an int: %w", key, err)
	}
	return n, nil
}

// GetFloat returns the float stored under key, or def.
func (a *Adapter) GetFloat(ctx context.Context, key string, def float64) (float64, error) {
	v, ok, err := a.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("sqlite: preference %s is not a float: %w", key, err)
	}
	return f, nil
}

// SetString stores value under key.
func (a *Adapter) SetString(ctx context.Context, key, value string) error {
	return a.set(ctx, key, value)
}

// SetInt stores value under key.
func (a *Adapter) SetInt(ctx context.Context, key string, value int) error {
	return a.set(ctx, key, strconv.Itoa(value))
}

// SetFloat stores value under key.
func (a *Adapter) SetFloat(ctx context.Context, key string, value float64) error {
	return a.set(ctx, key, strconv.FormatFloat(value, 'g', -1, 64))
}

// Delete removes key. Deleting a missing key is not an error.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if _, err := a.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("sqlite: delete preference %s: %w", key, err)
	}
	return nil
}
