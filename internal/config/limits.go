package config

const (
	// MaxNodeNameLength is the maximum length for folder and file names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNodeNameLength = 255

	// MaxDataroomNameLength is the maximum length for data room names.
	MaxDataroomNameLength = 255

	// MaxFileSize is the per-file upload limit (5 MiB). Enforced at upload
	// time only, never stored per file.
	MaxFileSize = 5 * 1024 * 1024

	// MaxFileSizeLabel is how the limit is cited in user-facing messages.
	MaxFileSizeLabel = "5MB"

	// MaxUploadRequestSize caps a whole multipart upload request.
	// A batch may contain oversized files that are rejected individually,
	// so this is well above MaxFileSize.
	MaxUploadRequestSize = 64 << 20

	// MaxBulkDeleteIDs bounds a single bulk delete request.
	MaxBulkDeleteIDs = 500

	// MaxPathDepth bounds the number of segments accepted in a navigation path.
	MaxPathDepth = 64

	// BlobPurgeConcurrency is how many blob deletes run at once during a cascade delete.
	BlobPurgeConcurrency = 4
)
