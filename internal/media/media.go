// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

/*
Package media defines the contract for the remote media store and its
S3-compatible implementation.

Avatar and cover images live in object storage, not in PostgreSQL; identities
only reference them by remote URL and asset ID. An asset becomes "attached"
once an identity row points at it — anything uploaded but never attached is
an orphan that the account provisioner must reclaim via compensation.
*/
package media

import (
	"context"
	"io"
)

// Asset is the remote handle returned by a successful upload.
type Asset struct {
	// RemoteURL is the public location of the object, stored on the identity.
	RemoteURL string `json:"remote_url"`

	// AssetID is the store-side identifier (object key) used for deletion.
	AssetID string `json:"asset_id"`
}

// FileUpload carries one inbound file from the transport layer to the store.
type FileUpload struct {
	// Name is the client-provided filename; only its extension is trusted.
	Name string

	// ContentType is the declared MIME type of the payload.
	ContentType string

	// Content is the file payload. Read exactly once, by Upload.
	Content io.Reader
}

// Store is the Media Store Adapter consumed by the account provisioner.
type Store interface {

	/*
		Upload pushes the file to remote storage.

		Parameters:
		  - context: context.Context
		  - file: FileUpload

		Returns:
		  - *Asset: Remote handle {RemoteURL, AssetID}
		  - error: apperr.Upload on any transport or store failure
	*/
	Upload(context context.Context, file FileUpload) (*Asset, error)

	/*
		Delete removes an asset by its ID. Best effort, not retried.

		Parameters:
		  - context: context.Context
		  - assetID: string

		Returns:
		  - error: apperr.Delete on failure (callers log, never escalate)
	*/
	Delete(context context.Context, assetID string) error
}
