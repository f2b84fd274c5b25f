// Package importer normalizes spreadsheet invoice exports into the store.
//
// Rows sharing an invoice key become one invoice. Customers and products are
// deduplicated by exact name (find-or-create); invoices and items are always
// inserted. The whole file is written in one transaction.
//
// Amounts are stored as read. Line totals are not recomputed from quantity
// and price, and grand totals are not recomputed from line totals.
//
// Failures are reported as *Error with one of three kinds:
//
//	SOURCE_UNAVAILABLE   the file could not be read
//	VALIDATION_FAILURE   a required field is missing or not coercible
//	PERSISTENCE_FAILURE  a store operation or the commit failed
package importer
