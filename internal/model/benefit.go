package model

import "time"

// Benefit is a government/welfare programme entry in the `benefits` table
// as loaded by the catalog importer. Rows are read-mostly; the search
// endpoint filters over category, region, tags and the application window.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – programme title.
//  Summary   – one-paragraph description used in result lists.
//  Body      – full description (nullable text column).
//  Category  – coarse classification (e.g. housing, employment).
//  Region    – administrative region the programme applies to.
//  Agency    – operating agency name.
//  ApplyURL  – external application page.
//  StartDate – first day applications are accepted (nullable).
//  EndDate   – application deadline (nullable; open-ended when NULL).
//  CreatedAt – import timestamp.
type Benefit struct {
	ID        uint64     // benefits.id
	Title     string     // benefits.title
	Summary   string     // benefits.summary
	Body      *string    // benefits.body (nullable)
	Category  string     // benefits.category
	Region    string     // benefits.region
	Agency    string     // benefits.agency
	ApplyURL  string     // benefits.apply_url
	StartDate *time.Time // benefits.start_date (nullable)
	EndDate   *time.Time // benefits.end_date (nullable)
	CreatedAt time.Time  // benefits.created_at
}
