// Package database builds pgx connection pools for the recorded book data
// store (TimescaleDB).
package database
