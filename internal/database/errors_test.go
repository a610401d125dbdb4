// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tomtom215/shutterfeed/internal/config"
)

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duckdb primary key", errors.New(`Constraint Error: Duplicate key "account_id: a, post_id: p" violates primary key constraint`), true},
		{"duckdb unique", errors.New("PRIMARY KEY or UNIQUE constraint violated"), true},
		{"postgres unique violation", &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}, true},
		{"wrapped postgres violation", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other error", &pgconn.PgError{Code: "23503", Message: "foreign key violation"}, false},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueConstraintError(tt.err); got != tt.want {
				t.Errorf("isUniqueConstraintError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewWithConn(conn, config.DriverPostgres), mock
}

func TestCreateLike_PostgresDuplicate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO likes").
		WithArgs("acct", "post", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"likes_pkey\""})

	err := db.CreateLike(context.Background(), "acct", "post")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateLike error = %v, want ErrDuplicate", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateFollow_OtherErrorWrapped(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO follows").WillReturnError(errors.New("connection reset"))

	err := db.CreateFollow(context.Background(), "a", "b")
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("CreateFollow error = %v, want wrapped connection error", err)
	}
	if err.Error() != "failed to create follow: connection reset" {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestDeleteFollow_NoRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM follows").
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := db.DeleteFollow(context.Background(), "a", "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteFollow error = %v, want ErrNotFound", err)
	}
}

func TestDeletePostCascade_RollsBackWhenPostMissing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM likes").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM comments").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM posts").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := db.DeletePostCascade(context.Background(), "p"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePostCascade error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeletePostCascade_RollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM likes").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM comments").WithArgs("p").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := db.DeletePostCascade(context.Background(), "p")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("DeletePostCascade error = %v, want storage failure", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeletePostCascade_Commits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM likes").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM comments").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM posts").WithArgs("p").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := db.DeletePostCascade(context.Background(), "p"); err != nil {
		t.Errorf("DeletePostCascade error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT id, owner_id").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	if _, err := db.GetPost(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost error = %v, want ErrNotFound", err)
	}
}

func TestLikeCounts_EmptyInputSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	counts, err := db.LikeCounts(context.Background(), nil)
	if err != nil || len(counts) != 0 {
		t.Errorf("LikeCounts(nil) = %v, %v", counts, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected query: %v", err)
	}
}
