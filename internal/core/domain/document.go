package domain

import "time"

// Document represents an ingested document with its extracted text.
// It is immutable after ingestion except for presigned URL refresh,
// which never touches content or chunks.
type Document struct {
	// Filename is the unique identifier of the document.
	Filename string `json:"filename"`

	// Content is the full extracted plain text.
	Content string `json:"content"`

	// Pages holds the extracted text of each page, in order.
	Pages []string `json:"pages,omitempty"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`

	// StorageKey is the object-store key the original bytes live under.
	StorageKey string `json:"storage_key,omitempty"`

	// PresignedURL is a time-limited access URL for the stored bytes.
	// It is ephemeral and regenerated on listing; never treat it as durable.
	PresignedURL string `json:"presigned_url,omitempty"`

	// Chunks is the word-aligned partition of Content used for prompt
	// construction. Non-empty whenever Content is non-empty.
	Chunks []string `json:"chunks,omitempty"`
}

// CatalogEntry is a derived listing row for a known document.
// It is recomputed on every listing call and never persisted.
type CatalogEntry struct {
	// Filename is the document identifier.
	Filename string `json:"filename"`

	// URL is a freshly minted time-limited access URL, when the entry was
	// sourced from the object store.
	URL string `json:"url,omitempty"`

	// Size is the stored object size in bytes, when known.
	Size int64 `json:"size,omitempty"`

	// LastModified is the object's last modification time, when known.
	LastModified time.Time `json:"last_modified,omitempty"`
}
