package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadboard_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadColumns = `id, business_name, industry, website, contacts, phone, evidence, revamp_images,
	notes, status, country, created_at, updated_at`

// Repository is the Postgres-backed lead store.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status string
	err := row.Scan(
		&lead.ID, &lead.BusinessName, &lead.Industry, &lead.Website, &lead.Contacts, &lead.Phone,
		&lead.Evidence, &lead.RevampImages, &lead.Notes, &status, &lead.Country,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (business_name, industry, website, contacts, phone, evidence, revamp_images, notes, status, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+leadColumns,
		params.BusinessName, params.Industry, params.Website, nonNilContacts(params.Contacts), params.Phone,
		nonNilStrings(params.Evidence), nonNilStrings(params.RevampImages), params.Notes, string(params.Status), params.Country,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// List returns leads newest first; the board applies its own ordering on top.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	args := []interface{}{}
	if params.Country != "" {
		query += ` WHERE country = $1`
		args = append(args, params.Country)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (domain.Lead, error) {
	setClauses, args := buildUpdateSet(params)
	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), leadColumns)

	return scanLead(r.pool.QueryRow(ctx, query, args...))
}

// buildUpdateSet returns "column = $n" clauses for the set fields of params
// with their arguments, numbered from $1 in column order.
func buildUpdateSet(params UpdateLeadParams) ([]string, []interface{}) {
	setClauses := []string{}
	args := []interface{}{}

	fields := []struct {
		enabled bool
		column  string
		value   func() interface{}
	}{
		{params.BusinessName != nil, "business_name", func() interface{} { return *params.BusinessName }},
		{params.Industry != nil, "industry", func() interface{} { return *params.Industry }},
		{params.Website != nil, "website", func() interface{} { return *params.Website }},
		{params.Contacts != nil, "contacts", func() interface{} { return nonNilContacts(*params.Contacts) }},
		{params.Phone != nil, "phone", func() interface{} { return *params.Phone }},
		{params.Evidence != nil, "evidence", func() interface{} { return nonNilStrings(*params.Evidence) }},
		{params.RevampImages != nil, "revamp_images", func() interface{} { return nonNilStrings(*params.RevampImages) }},
		{params.Notes != nil, "notes", func() interface{} { return *params.Notes }},
		{params.Status != nil, "status", func() interface{} { return string(*params.Status) }},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		args = append(args, field.value())
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, len(args)))
	}
	return setClauses, args
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM leads WHERE id = $1 RETURNING `+leadColumns, id)
	return scanLead(row)
}

func (r *Repository) AddStatusChange(ctx context.Context, change StatusChange) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_status_history (lead_id, old_status, new_status, actor_id)
		VALUES ($1, $2, $3, $4)
	`, change.LeadID, string(change.OldStatus), string(change.NewStatus), change.ActorID)
	return err
}

func (r *Repository) ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, old_status, new_status, actor_id, created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]StatusChange, 0)
	for rows.Next() {
		var item StatusChange
		var oldStatus, newStatus string
		if err := rows.Scan(&item.ID, &item.LeadID, &oldStatus, &newStatus, &item.ActorID, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.OldStatus = domain.Status(oldStatus)
		item.NewStatus = domain.Status(newStatus)
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// ListImageURLs returns the evidence and revamp URLs of all leads, without duplicates.
func (r *Repository) ListImageURLs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT url
		FROM leads, unnest(evidence || revamp_images) AS url
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return urls, nil
}

var _ LeadsRepository = (*Repository)(nil)
