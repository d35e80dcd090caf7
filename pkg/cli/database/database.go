/* Copyright 2025 Daylily Catalog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database provides the local SQLite store of the catalog CLI
package database

import (
	"database/sql"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is a connection to the local database, or a transaction on it
type DB struct {
	Conn *sql.DB
	Tx   *sql.Tx
}

// Open opens the database at the given path, or the given DSN
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}

	conn.SetMaxOpenConns(1)

	return &DB{Conn: conn}, nil
}

// Begin begins a transaction
func (d *DB) Begin() (*DB, error) {
	tx, err := d.Conn.Begin()
	if err != nil {
		return nil, err
	}

	return &DB{Conn: d.Conn, Tx: tx}, nil
}

// Commit commits the transaction
func (d *DB) Commit() error {
	if d.Tx == nil {
		return errors.New("not in a transaction")
	}

	return d.Tx.Commit()
}

// Rollback aborts the transaction
func (d *DB) Rollback() error {
	if d.Tx == nil {
		return errors.New("not in a transaction")
	}

	return d.Tx.Rollback()
}

// Exec executes a query without returning rows
func (d *DB) Exec(query string, values ...interface{}) (sql.Result, error) {
	if d.Tx != nil {
		return d.Tx.Exec(query, values...)
	}

	return d.Conn.Exec(query, values...)
}

// Query executes a query that returns rows
func (d *DB) Query(query string, values ...interface{}) (*sql.Rows, error) {
	if d.Tx != nil {
		return d.Tx.Query(query, values...)
	}

	return d.Conn.Query(query, values...)
}

// QueryRow executes a query that returns at most one row
func (d *DB) QueryRow(query string, values ...interface{}) *sql.Row {
	if d.Tx != nil {
		return d.Tx.QueryRow(query, values...)
	}

	return d.Conn.QueryRow(query, values...)
}

// Close closes the connection
func (d *DB) Close() error {
	return d.Conn.Close()
}
