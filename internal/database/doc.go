// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── users/           # Credential rows
//	├── books/           # Book CRUD, blobs and catalog listings
//	├── favourites/      # Ownership and favorite relations
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB, books.Limits{...})
//	favRepo := favourites.NewRepository(db.DB)
//
//	page, total, err := booksRepo.ListAll(0, 12)
//
// # Transactions
//
// Operations that must look atomic (ownership check + update, favorite cleanup
// + book delete, existence check + favorite toggle) run inside db.Transaction
// within a single repository method.
package database
