package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"censusdesk/internal/census/models"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/sentinel"
)

const recordColumns = `id, family_head_name, number_of_dependents, number_of_educated_members,
	number_of_non_educated_members, identity_proof_type, identity_number, territory,
	submitted_by_id, submitted_by_contact, submitted_at, last_modified_at`

// PostgresStore persists census records in PostgreSQL. The unique index on
// (identity_proof_type, identity_number) closes the duplicate race.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed census store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, recordID id.RecordID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM census_records WHERE id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find census record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) List(ctx context.Context, spec models.QuerySpec) ([]*models.Record, error) {
	if spec.Deny {
		return []*models.Record{}, nil
	}
	query := `SELECT ` + recordColumns + ` FROM census_records`
	var args []any
	if spec.SubmittedBy != nil {
		query += ` WHERE submitted_by_id = $1`
		args = append(args, uuid.UUID(*spec.SubmittedBy))
	}
	query += ` ORDER BY submitted_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list census records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan census record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate census records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, key models.IdentityKey) ([]id.RecordID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM census_records WHERE identity_proof_type = $1 AND identity_number = $2`,
		string(key.ProofType), key.Number)
	if err != nil {
		return nil, fmt.Errorf("find census records by identity: %w", err)
	}
	defer rows.Close()

	var ids []id.RecordID
	for rows.Next() {
		var recordID uuid.UUID
		if err := rows.Scan(&recordID); err != nil {
			return nil, fmt.Errorf("scan census record id: %w", err)
		}
		ids = append(ids, id.RecordID(recordID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate census record ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("census record is required")
	}
	query := `INSERT INTO census_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.FamilyHeadName,
		record.NumberOfDependents,
		record.NumberOfEducatedMembers,
		record.NumberOfNonEducatedMembers,
		string(record.IdentityProofType),
		record.IdentityNumber,
		string(record.Territory),
		uuid.UUID(record.SubmittedByID),
		record.SubmittedByContact,
		record.SubmittedAt,
		record.LastModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert census record: %w", err)
	}
	return nil
}

// Update rewrites the household fields. Submission fields are never changed.
func (s *PostgresStore) Update(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("census record is required")
	}
	query := `
		UPDATE census_records
		SET family_head_name = $2,
			number_of_dependents = $3,
			number_of_educated_members = $4,
			number_of_non_educated_members = $5,
			identity_proof_type = $6,
			identity_number = $7,
			territory = $8,
			last_modified_at = $9
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.FamilyHeadName,
		record.NumberOfDependents,
		record.NumberOfEducatedMembers,
		record.NumberOfNonEducatedMembers,
		string(record.IdentityProofType),
		record.IdentityNumber,
		string(record.Territory),
		record.LastModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update census record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update census record rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, recordID id.RecordID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM census_records WHERE id = $1`, uuid.UUID(recordID))
	if err != nil {
		return fmt.Errorf("delete census record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete census record rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.Record, error) {
	var record models.Record
	var recordID, submittedBy uuid.UUID
	var proofType, territory string
	if err := row.Scan(
		&recordID,
		&record.FamilyHeadName,
		&record.NumberOfDependents,
		&record.NumberOfEducatedMembers,
		&record.NumberOfNonEducatedMembers,
		&proofType,
		&record.IdentityNumber,
		&territory,
		&submittedBy,
		&record.SubmittedByContact,
		&record.SubmittedAt,
		&record.LastModifiedAt,
	); err != nil {
		return nil, err
	}
	record.ID = id.RecordID(recordID)
	record.SubmittedByID = id.ActorID(submittedBy)
	record.IdentityProofType = models.IdentityProofType(proofType)
	record.Territory = models.Territory(territory)
	record.SubmittedAt = record.SubmittedAt.UTC()
	record.LastModifiedAt = record.LastModifiedAt.UTC()
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
