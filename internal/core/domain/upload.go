package domain

// UploadFile is a file handed to the ingest pipeline.
type UploadFile struct {
	// Name is the original filename. Its extension selects the extractor.
	Name string
	Data []byte
}

// UploadRequest is a batch of files destined for one course.
type UploadRequest struct {
	// CourseID is the raw course ID; it is validated and sanitised.
	CourseID string
	DocType  DocType
	Files    []UploadFile
}

// IngestReport summarises an upload batch.
type IngestReport struct {
	// CourseID is the sanitised course the files were stored under.
	CourseID string

	// ChunksIndexed is the total number of chunks written.
	ChunksIndexed int

	// FilesIndexed lists the files that were stored, in input order.
	FilesIndexed []string

	// Errors lists per-file failures, in input order.
	Errors []*FileError
}

// HasErrors returns true if any file failed.
func (r *IngestReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessages returns the user-facing message of every failure.
func (r *IngestReport) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return msgs
}
