package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mksolution/account-service/internal/domain/entity"
	"github.com/mksolution/account-service/internal/domain/repository"
)

const userColumns = `id, name, email, phone, role, password,
	profile_url, address, business_url,
	is_email_verified, verify_user_token, verify_user_token_expiry, verify_user_token_used,
	forget_password_token, forget_password_token_expiry, forget_password_token_used,
	is_onboarded, is_approved, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Password,
		&u.ProfileURL, &u.Address, &u.BusinessURL,
		&u.IsEmailVerified, &u.VerifyCode, &u.VerifyCodeExpiry, &u.VerifyCodeUsed,
		&u.ResetCode, &u.ResetCodeExpiry, &u.ResetCodeUsed,
		&u.IsOnboarded, &u.IsApproved, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, role, password, profile_url, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Phone, u.Role, u.Password, u.ProfileURL, u.Address)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Save writes every mutable column back to the row. Lifecycle
// transitions mutate the aggregate in memory and land here.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET
			name = $1, phone = $2, role = $3, password = $4,
			profile_url = $5, address = $6, business_url = $7,
			is_email_verified = $8, verify_user_token = $9,
			verify_user_token_expiry = $10, verify_user_token_used = $11,
			forget_password_token = $12, forget_password_token_expiry = $13,
			forget_password_token_used = $14,
			is_onboarded = $15, is_approved = $16, updated_at = $17
		WHERE id = $18
	`, u.Name, u.Phone, u.Role, u.Password,
		u.ProfileURL, u.Address, u.BusinessURL,
		u.IsEmailVerified, u.VerifyCode, u.VerifyCodeExpiry, u.VerifyCodeUsed,
		u.ResetCode, u.ResetCodeExpiry, u.ResetCodeUsed,
		u.IsOnboarded, u.IsApproved, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateProfile applies an allow-listed patch and returns the updated
// row. The SET clause is built from the patch fields only; columns
// outside the allow-list cannot be named.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch repository.ProfilePatch) (*entity.User, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.ProfileURL != nil {
		add("profile_url", *patch.ProfileURL)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(set, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

func (r *UserRepository) ListOnboardedClients(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1 AND is_onboarded = TRUE
		ORDER BY created_at
	`, entity.RoleClient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
