package users

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterly/internal/models"
)

func newUsersMux(t *testing.T) (*http.ServeMux, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(db)
	mux := http.NewServeMux()
	mux.HandleFunc("/users/create", h.CreateUser)
	mux.HandleFunc("/users/delete/{id}", h.DeleteUser)
	return mux, mock
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	mux, mock := newUsersMux(t)

	mock.ExpectExec("UPDATE users SET status").
		WithArgs(models.UserStatusDeleted, sqlmock.AnyArg(), "u1", models.UserStatusDeleted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/users/delete/u1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserNotFound(t *testing.T) {
	mux, mock := newUsersMux(t)

	// Zero rows affected covers both a missing id and an already-deleted user.
	mock.ExpectExec("UPDATE users SET status").
		WithArgs(models.UserStatusDeleted, sqlmock.AnyArg(), "missing", models.UserStatusDeleted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/users/delete/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mux, mock := newUsersMux(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	req := httptest.NewRequest(http.MethodPost, "/users/create",
		strings.NewReader(`{"email":"a@example.com","full_name":"Ada Lovelace"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
