// Package vnt is a typed client for the translation service's REST API.
//
// The service is the collaborative system of record: it owns per-line
// translation history with authorship. This package only models the fields
// the sync engine consumes; everything else in the payloads is ignored.
package vnt

import "fmt"

// Project is one translation project, addressed by its codename in the CLI.
type Project struct {
	ID       int64  `json:"id"`
	Codename string `json:"codename"`
	Name     string `json:"name"`
}

// ScriptFile is one script file within a project.
type ScriptFile struct {
	ID               int64  `json:"id"`
	OriginalFilename string `json:"original_filename"`
	LineCount        int    `json:"line_count"`
}

// Language identifies a translation language by its code ("en", "ja", ...).
type Language struct {
	Code string `json:"code"`
}

// Author is the account that created a translation entry.
type Author struct {
	Username string `json:"username"`
}

// TranslationEntry is one entry in a line's translation history. The first
// entry of a line's history is its current translation; the service appends
// a new entry on every upload and never rewrites old ones.
type TranslationEntry struct {
	Translation string   `json:"translation"`
	Language    Language `json:"language"`
	CreatedBy   Author   `json:"created_by"`
}

// Line is one script line as reported by the service.
type Line struct {
	ID            int64              `json:"id"`
	LineNumber    int                `json:"line_number"`
	CharacterName string             `json:"character_name"`
	Original      string             `json:"original"`
	Translations  []TranslationEntry `json:"translations"`
}

// Update is one pending translation upsert, keyed by the remote line ID.
type Update struct {
	LineID      int64
	Translation string
}

// APIError is a non-2xx response from the service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
}
