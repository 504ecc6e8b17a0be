package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mbazhenov/authkeeper/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+sessions\b.*ON\s+CONFLICT\s*\(identity_id\)\s*DO\s+UPDATE\s+SET\s+refresh_token\s*=\s*EXCLUDED\.refresh_token\b`

	mock.ExpectExec(q).
		WithArgs("id-1", "tok123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), "id-1", "tok123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+sessions\b`

	mock.ExpectExec(q).
		WithArgs("id-1", "tok123").
		WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), "id-1", "tok123")
	if !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("want common.ErrStoreUnavailable, got %v", err)
	}
}

func TestFindByToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+identity_id,\s*refresh_token,\s*updated_at\s+FROM\s+sessions\s+WHERE\s+refresh_token\s*=\s*\$1\s*$`

	updated := time.Now()
	mock.ExpectQuery(q).
		WithArgs("tok123").
		WillReturnRows(sqlmock.NewRows([]string{"identity_id", "refresh_token", "updated_at"}).
			AddRow("id-1", "tok123", updated))

	got, err := repo.FindByToken(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IdentityID != "id-1" || got.RefreshToken != "tok123" || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindByToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+refresh_token\s*=\s*\$1`

	mock.ExpectQuery(q).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByToken(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestFindByToken_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+refresh_token\s*=\s*\$1`

	mock.ExpectQuery(q).
		WithArgs("tok123").
		WillReturnError(errors.New("db err"))

	_, err := repo.FindByToken(context.Background(), "tok123")
	if !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("want common.ErrStoreUnavailable, got %v", err)
	}
}

func TestDeleteByToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+sessions\s+WHERE\s+refresh_token\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("tok123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.DeleteByToken(context.Background(), "tok123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteByToken_NoRowIsNotError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+sessions\b`

	mock.ExpectExec(q).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByToken(context.Background(), "missing"); err != nil {
		t.Fatalf("deleting an absent token must not fail: %v", err)
	}
}

func TestDeleteByToken_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+sessions\b`

	mock.ExpectExec(q).
		WithArgs("tok123").
		WillReturnError(errors.New("db err"))

	err := repo.DeleteByToken(context.Background(), "tok123")
	if !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("want common.ErrStoreUnavailable, got %v", err)
	}
}
