package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leaddesk/backend/internal/model"
)

// ContactRepository defines the persistence interface for contacts.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	Save(ctx context.Context, c *model.Contact) error
	FindByID(ctx context.Context, id int64) (*model.Contact, error)
	List(ctx context.Context, opts model.ContactListOptions) (*model.ContactPage, error)
	UpdateStatus(ctx context.Context, upd model.StatusUpdate) (*model.Contact, error)
	CountByStatus(ctx context.Context) (map[model.ContactStatus]int, error)
}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
	db   querier
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool, db: pool}
}

// InTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *PgContactRepository) InTx(ctx context.Context, fn func(repo ContactRepository) error) error {
	var fnErr error
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		fnErr = fn(&PgContactRepository{pool: r.pool, db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storeErr("contact transaction", err)
}

// Ping checks the database connection (DB interface). Failures are ErrStoreUnavailable.
func (r *PgContactRepository) Ping(ctx context.Context) error {
	return storeErr("ping", r.pool.Ping(ctx))
}

const contactSelectCols = `id, name, email, phone, country_code, company, subject,
	service_interest, budget_range, message, is_verified, captcha_score, ip_address,
	user_agent, status, admin_notes, replied_at, replied_by, created_at, updated_at`

func scanContact(scan func(...any) error) (*model.Contact, error) {
	var c model.Contact
	var status string
	if err := scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.CountryCode, &c.Company, &c.Subject,
		&c.ServiceInterest, &c.BudgetRange, &c.Message, &c.IsVerified, &c.CaptchaScore, &c.IPAddress,
		&c.UserAgent, &status, &c.AdminNotes, &c.RepliedAt, &c.RepliedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = model.ContactStatus(status)
	return &c, nil
}

// Save inserts a new contacts row and populates c.ID, status and timestamps
// from the RETURNING clause. This is the only write of submitter and trust fields.
func (r *PgContactRepository) Save(ctx context.Context, c *model.Contact) error {
	status := c.Status
	if status == "" {
		status = model.StatusNew
	}
	if !status.Valid() {
		return model.ErrValidation
	}
	var stored string
	err := r.db.QueryRow(ctx,
		`INSERT INTO contacts (name, email, phone, country_code, company, subject,
		     service_interest, budget_range, message, is_verified, captcha_score,
		     ip_address, user_agent, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, status, created_at, updated_at`,
		c.Name, c.Email, c.Phone, c.CountryCode, c.Company, c.Subject,
		c.ServiceInterest, c.BudgetRange, c.Message, c.IsVerified, c.CaptchaScore,
		c.IPAddress, c.UserAgent, string(status),
	).Scan(&c.ID, &stored, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return storeErr("save contact", err)
	}
	c.Status = model.ContactStatus(stored)
	return nil
}

// FindByID returns one contact or ErrNotFound.
func (r *PgContactRepository) FindByID(ctx context.Context, id int64) (*model.Contact, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contactSelectCols+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row.Scan)
	if err != nil {
		return nil, storeErr("find contact", err)
	}
	return c, nil
}

// contactFilter is a WHERE clause with its positional arguments.
type contactFilter struct {
	where string
	args  []any
}

// escapeLike escapes the ILIKE metacharacters so search is a literal substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// buildContactFilter translates normalized options into a WHERE clause.
// Status "all" adds no condition; an empty search adds no condition.
func buildContactFilter(opts model.ContactListOptions) contactFilter {
	var conditions []string
	var args []any

	if opts.Status != "" && opts.Status != model.StatusFilterAll {
		args = append(args, opts.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	if opts.Search != "" {
		args = append(args, "%"+escapeLike(opts.Search)+"%")
		p := "$" + strconv.Itoa(len(args))
		conditions = append(conditions,
			"(name ILIKE "+p+" OR email ILIKE "+p+" OR subject ILIKE "+p+" OR message ILIKE "+p+")")
	}

	f := contactFilter{args: args}
	if len(conditions) > 0 {
		f.where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return f
}

// List returns one page of contacts, newest first, with the filtered total.
// A page past the end yields an empty slice.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) (*model.ContactPage, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	f := buildContactFilter(opts)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contacts `+f.where, f.args...).Scan(&total); err != nil {
		return nil, storeErr("count contacts", err)
	}

	args := append(f.args, opts.Limit, opts.Offset())
	query := `SELECT ` + contactSelectCols + ` FROM contacts ` + f.where +
		` ORDER BY created_at DESC, id DESC
		  LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list contacts", err)
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, storeErr("scan contact", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list contacts", err)
	}
	return model.NewContactPage(contacts, total, opts), nil
}

// UpdateStatus applies a moderation transition in a single statement.
// updated_at always moves forward, even when the clock has not advanced since
// the previous write. replied_at/replied_by are written together, and only
// when the new status is "replied".
func (r *PgContactRepository) UpdateStatus(ctx context.Context, upd model.StatusUpdate) (*model.Contact, error) {
	if !upd.Status.Valid() {
		return nil, model.ErrValidation
	}
	var actor *string
	if upd.Status == model.StatusReplied {
		a := upd.Actor
		actor = &a
	}
	row := r.db.QueryRow(ctx,
		`UPDATE contacts AS c SET
		     status      = $2::text,
		     admin_notes = COALESCE($3::text, c.admin_notes),
		     updated_at  = t.ts,
		     replied_at  = CASE WHEN $2::text = 'replied' THEN t.ts ELSE c.replied_at END,
		     replied_by  = CASE WHEN $2::text = 'replied' THEN $4::text ELSE c.replied_by END
		 FROM (SELECT GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond') AS ts
		       FROM contacts WHERE id = $1) AS t
		 WHERE c.id = $1
		 RETURNING `+prefixCols("c.", contactSelectCols),
		upd.ID, string(upd.Status), upd.AdminNotes, actor,
	)
	c, err := scanContact(row.Scan)
	if err != nil {
		return nil, storeErr("update contact status", err)
	}
	return c, nil
}

// CountByStatus returns the number of contacts per status. Statuses with no
// rows are present with a zero count.
func (r *PgContactRepository) CountByStatus(ctx context.Context) (map[model.ContactStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
	if err != nil {
		return nil, storeErr("count by status", err)
	}
	defer rows.Close()

	counts := make(map[model.ContactStatus]int, len(model.ContactStatuses))
	for _, s := range model.ContactStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storeErr("count by status", err)
		}
		counts[model.ContactStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("count by status", err)
	}
	return counts, nil
}

// prefixCols qualifies each column in a comma-separated list with prefix.
func prefixCols(prefix, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
