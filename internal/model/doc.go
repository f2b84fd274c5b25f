// Package model defines the invoice domain entities.
//
// This package contains type definitions only. Every other internal package
// imports model; model imports nothing internal.
//
// Key design constraints:
//   - Money is shopspring/decimal, never float
//   - ID == 0 means "not yet persisted"; stores assign it on first insert
//   - CreatedAt/UpdatedAt are set by stores, never by callers
//   - All JSON tags use snake_case
package model
