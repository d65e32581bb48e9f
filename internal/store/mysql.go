package store

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL implements the store interfaces over a shared *sql.DB.
type MySQL struct {
	DB *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{DB: db}
}

const mysqlErrDuplicateEntry = 1062

// IsDuplicate reports whether err is a MySQL duplicate-key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}
