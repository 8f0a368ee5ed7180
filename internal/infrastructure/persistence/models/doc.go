// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every table with an id and timestamps
// - editors.go: add-ons, versions, files, activity, approvals, reviews and site config
// - payment.go: registered in-app payment issuers
//
// Schema changes go through the SQL files under migrations/. AllModels is used
// by tests to create the same tables on SQLite.
package models
