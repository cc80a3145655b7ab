package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AddRegistration records a catalogued segment item. Recording the same
// (carrier, sequence) key twice is a no-op that keeps the first record.
func (s *Store) AddRegistration(ctx context.Context, reg Registration) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO registrations (carrier_id, sequence_number, item_id, output_path, digest, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (carrier_id, sequence_number) DO NOTHING`,
		reg.CarrierID,
		reg.Sequence,
		reg.ItemID,
		nullableString(reg.OutputPath),
		nullableString(reg.Digest),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// GetRegistration returns the registration for a carrier segment, or nil
// when the segment has not been registered.
func (s *Store) GetRegistration(ctx context.Context, carrierID string, sequence int) (*Registration, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT carrier_id, sequence_number, item_id, output_path, digest, created_at
         FROM registrations WHERE carrier_id = ? AND sequence_number = ?`,
		carrierID, sequence,
	)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// RegistrationsForCarrier returns every registered segment for a carrier
// ordered by sequence number.
func (s *Store) RegistrationsForCarrier(ctx context.Context, carrierID string) ([]Registration, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT carrier_id, sequence_number, item_id, output_path, digest, created_at
         FROM registrations WHERE carrier_id = ? ORDER BY sequence_number`,
		carrierID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func scanRegistration(scanner interface{ Scan(dest ...any) error }) (*Registration, error) {
	var (
		carrierID  string
		sequence   int
		itemID     string
		outputPath sql.NullString
		digest     sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&carrierID, &sequence, &itemID, &outputPath, &digest, &createdRaw); err != nil {
		return nil, err
	}
	reg := &Registration{
		CarrierID:  carrierID,
		Sequence:   sequence,
		ItemID:     itemID,
		OutputPath: outputPath.String,
		Digest:     digest.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		reg.CreatedAt = created
	}
	return reg, nil
}
