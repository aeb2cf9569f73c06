package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/caseservice/internal/repo/migrate"
)

var (
	table = migrate.CasesTable.Name

	// columns follows migrate.CasesColumns; scanCase depends on this order.
	columns = func() []string {
		out := make([]string, len(migrate.CasesColumns))
		for i, c := range migrate.CasesColumns {
			out[i] = c.Name
		}
		return out
	}()

	// columns an update may change; identity, ownership and creation data are fixed.
	mutableColumns = []string{
		"status", "case_name", "description", "priority", "assigned_to", "case_type",
		"due_date", "rush_order", "special_instructions", "patient_info",
		"fixed_prosthetic_details", "denture_details", "night_guard_details", "implant_details",
		"updated_at",
	}
)

// PostgresStore implements CaseStore on Postgres through the ent SQL builder.
type PostgresStore struct {
	drv *entsql.Driver
	now func() time.Time
}

func NewPostgresStore(drv *entsql.Driver) *PostgresStore {
	return &PostgresStore{
		drv: drv,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

func scopedByID(labID string, id int64) *entsql.Predicate {
	return entsql.And(entsql.EQ("id", id), entsql.EQ("lab_id", labID))
}

func listPredicate(labID string, f Filter) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("lab_id", labID)}
	if f.Status != nil {
		preds = append(preds, entsql.EQ("status", string(*f.Status)))
	}
	if f.DoctorID != nil {
		preds = append(preds, entsql.EQ("doctor_id", *f.DoctorID))
	}
	if f.ProductID != nil {
		preds = append(preds, entsql.EQ("product_id", *f.ProductID))
	}
	if f.CaseType != nil {
		preds = append(preds, entsql.EQ("case_type", *f.CaseType))
	}
	if f.Priority != nil {
		preds = append(preds, entsql.EQ("priority", string(*f.Priority)))
	}
	if f.RushOrder != nil {
		preds = append(preds, entsql.EQ("rush_order", *f.RushOrder))
	}
	return entsql.And(preds...)
}

func dateArg(d *Date) any {
	if d == nil {
		return nil
	}
	return d.Time()
}

// documentArg sends JSON as text; lib/pq would send []byte as bytea.
func documentArg(raw []byte) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}

func mutableValues(c *Case) []any {
	return []any{
		string(c.Status), c.CaseName, c.Description, string(c.Priority), c.AssignedTo, c.CaseType,
		dateArg(c.DueDate), c.RushOrder, c.SpecialInstructions, documentArg(c.PatientInfo),
		documentArg(c.FixedProsthetic), documentArg(c.Denture), documentArg(c.NightGuard), documentArg(c.Implant),
		c.UpdatedAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*Case, error) {
	var (
		c                                                          Case
		caseName, description, createdBy, assignedTo, caseType, si sql.NullString
		dueDate                                                    sql.NullTime
		patient, fixed, denture, nightGuard, implant               []byte
	)
	err := row.Scan(
		&c.ID, &c.LabID, &c.DoctorID, &c.ProductID, &c.Status,
		&caseName, &description, &c.Priority, &createdBy, &assignedTo, &caseType,
		&dueDate, &c.RushOrder, &si,
		&patient, &fixed, &denture, &nightGuard, &implant,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CaseName = nullString(caseName)
	c.Description = nullString(description)
	c.CreatedBy = nullString(createdBy)
	c.AssignedTo = nullString(assignedTo)
	c.CaseType = nullString(caseType)
	c.SpecialInstructions = nullString(si)
	c.PatientInfo = patient
	c.FixedProsthetic = fixed
	c.Denture = denture
	c.NightGuard = nightGuard
	c.Implant = implant
	if dueDate.Valid {
		d := NewDate(dueDate.Time)
		c.DueDate = &d
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// withTx runs fn in a transaction and rolls back when fn fails.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting a transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, c *Case) error {
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now

	query, args := builder().
		Insert(table).
		Columns(columns[1:]...).
		Values(
			c.LabID, c.DoctorID, c.ProductID, string(c.Status),
			c.CaseName, c.Description, string(c.Priority), c.CreatedBy, c.AssignedTo, c.CaseType,
			dateArg(c.DueDate), c.RushOrder, c.SpecialInstructions,
			documentArg(c.PatientInfo), documentArg(c.FixedProsthetic), documentArg(c.Denture),
			documentArg(c.NightGuard), documentArg(c.Implant),
			c.CreatedAt, c.UpdatedAt,
		).
		Returning("id").
		Query()

	return s.withTx(ctx, func(tx dialect.Tx) error {
		rows := &entsql.Rows{}
		if err := tx.Query(ctx, query, args, rows); err != nil {
			return fmt.Errorf("inserting case: %w", err)
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return fmt.Errorf("inserting case: %w", err)
			}
			return errors.New("inserting case: no id returned")
		}
		return rows.Scan(&c.ID)
	})
}

func (s *PostgresStore) selectOne(ctx context.Context, q dialect.ExecQuerier, labID string, id int64, forUpdate bool) (*Case, error) {
	sel := builder().
		Select(columns...).
		From(entsql.Table(table)).
		Where(scopedByID(labID, id))
	if forUpdate {
		sel.ForUpdate()
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("querying case: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying case: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanCase(rows)
}

func (s *PostgresStore) Get(ctx context.Context, labID string, id int64) (*Case, error) {
	return s.selectOne(ctx, s.drv, labID, id, false)
}

func (s *PostgresStore) List(ctx context.Context, labID string, f Filter, p Page) ([]*Case, int, error) {
	countQuery, countArgs := builder().
		Select(entsql.Count("*")).
		From(entsql.Table(table)).
		Where(listPredicate(labID, f)).
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, countQuery, countArgs, rows); err != nil {
		return nil, 0, fmt.Errorf("counting cases: %w", err)
	}
	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("counting cases: %w", err)
		}
	}
	rows.Close()

	if total == 0 || p.Offset() >= total {
		return []*Case{}, total, nil
	}

	query, args := builder().
		Select(columns...).
		From(entsql.Table(table)).
		Where(listPredicate(labID, f)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(p.Size).
		Offset(p.Offset()).
		Query()

	rows = &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, 0, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	out := make([]*Case, 0, p.Size)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning case: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing cases: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) Update(ctx context.Context, labID string, id int64, mutate func(*Case) error) (*Case, error) {
	var updated *Case
	err := s.withTx(ctx, func(tx dialect.Tx) error {
		current, err := s.selectOne(ctx, tx, labID, id, true)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		next.UpdatedAt = s.now()

		upd := builder().Update(table)
		for i, v := range mutableValues(next) {
			upd.Set(mutableColumns[i], v)
		}
		query, args := upd.Where(scopedByID(labID, id)).Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("updating case: %w", err)
		}

		// fields outside mutableColumns are not written; report what is stored
		next.ID, next.LabID, next.DoctorID, next.ProductID = current.ID, current.LabID, current.DoctorID, current.ProductID
		next.CreatedBy, next.CreatedAt = current.CreatedBy, current.CreatedAt
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, labID string, id int64) error {
	query, args := builder().
		Delete(table).
		Where(scopedByID(labID, id)).
		Query()

	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("deleting case: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting case: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.drv.DB().PingContext(ctx)
}
