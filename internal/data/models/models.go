package models

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           int64
	Email        string
	DisplayName  string
	FullName     string
	Phone        string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}
