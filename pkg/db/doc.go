// Package db provides master database connection utilities.
package db
