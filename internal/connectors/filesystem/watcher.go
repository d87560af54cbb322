// Package filesystem keeps a course in the index in step with a local folder.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/domain"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driving"
	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is reindexed.
const DefaultDebounce = 500 * time.Millisecond

// maxFileSize skips files that are unlikely to be course documents.
const maxFileSize = 100 << 20

// ChangeType describes what happened to a watched file.
type ChangeType int

// Change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one file event.
type Change struct {
	Type ChangeType

	// Path is the absolute path of the file.
	Path string

	// Name is the path relative to the watched root, slash separated. It is
	// the source file name the document is indexed under.
	Name string
}

// Result is the outcome of applying one change to the index.
type Result struct {
	Change  Change
	Report  *domain.IngestReport
	Deleted bool
	Err     error
}

// Watcher mirrors a folder into one course.
type Watcher struct {
	root     string
	courseID string
	docType  domain.DocType
	debounce time.Duration

	ingest  driving.IngestService
	library driving.LibraryService

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDocType sets the document type of indexed files (default misc).
func WithDocType(d domain.DocType) Option {
	return func(w *Watcher) {
		w.docType = d
	}
}

// WithDebounce sets the quiet period before a changed file is reindexed.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for root that indexes into courseID.
func New(root, courseID string, ingest driving.IngestService, library driving.LibraryService, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		courseID: courseID,
		docType:  domain.DocTypeMisc,
		debounce: DefaultDebounce,
		ingest:   ingest,
		library:  library,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Validate checks the root folder and course before watching.
func (w *Watcher) Validate() error {
	if err := domain.ValidateCourseID(w.courseID); err != nil {
		return err
	}
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.root)
	}
	return nil
}

// Sync uploads every supported file under root. A file that fails is
// reported in the returned report.
func (w *Watcher) Sync(ctx context.Context) (*domain.IngestReport, error) {
	var files []domain.UploadFile
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != w.root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !w.wanted(path) {
			return nil
		}
		data, err := readFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		files = append(files, domain.UploadFile{Name: w.relName(path), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", w.root, err)
	}
	if len(files) == 0 {
		courseID := domain.SanitizeCourseID(w.courseID)
		return &domain.IngestReport{CourseID: courseID, FilesIndexed: []string{}}, nil
	}
	return w.ingest.Upload(ctx, domain.UploadRequest{CourseID: w.courseID, DocType: w.docType, Files: files})
}

// Watch streams file changes under root until ctx is cancelled.
// New subdirectories are watched as they appear.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.addTree(fsw, w.root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.mu.Lock()
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.watcher = fsw
	w.mu.Unlock()

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(w.relName(event.Name)) {
						if err := w.addTree(fsw, event.Name); err != nil {
							logger.Warn("Cannot watch %s: %v", event.Name, err)
						}
					}
				}
				change := w.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()
	return changes, nil
}

// Run syncs the folder once and then applies changes until ctx is done.
// report, when non-nil, receives every applied change.
func (w *Watcher) Run(ctx context.Context, report func(Result)) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if report == nil {
		report = func(Result) {}
	}

	initial, err := w.Sync(ctx)
	if err != nil {
		return err
	}
	report(Result{Change: Change{Type: ChangeCreated, Path: w.root, Name: "."}, Report: initial})

	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	pending := make(map[string]Change)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			pending[change.Path] = merge(pending[change.Path], change)
			timer.Reset(w.debounce)
		case <-timer.C:
			for _, path := range sortedKeys(pending) {
				report(w.Apply(ctx, pending[path]))
			}
			clear(pending)
		}
	}
}

// Apply indexes or removes the file behind one change.
func (w *Watcher) Apply(ctx context.Context, change Change) Result {
	res := Result{Change: change}
	if change.Type == ChangeDeleted {
		res.Deleted, res.Err = w.library.DeleteDocument(ctx, w.courseID, change.Name)
		return res
	}

	data, err := readFile(change.Path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report, res.Err = w.ingest.Upload(ctx, domain.UploadRequest{
		CourseID: w.courseID,
		DocType:  w.docType,
		Files:    []domain.UploadFile{{Name: change.Name, Data: data}},
	})
	return res
}

// Close stops the active watch, if any.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// handleFsEvent converts an fsnotify event into a change. Directories,
// hidden paths and unsupported extensions yield nil.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	name := w.relName(event.Name)
	if isHidden(name) || !w.wanted(event.Name) {
		return nil
	}
	change := &Change{Path: event.Name, Name: name}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		change.Type = ChangeDeleted
	case event.Has(fsnotify.Create):
		change.Type = ChangeCreated
	case event.Has(fsnotify.Write):
		change.Type = ChangeUpdated
	default:
		return nil
	}

	if change.Type != ChangeDeleted {
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
	}
	return change
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// wanted reports whether the ingest pipeline can read path.
func (w *Watcher) wanted(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext != "" && slices.Contains(w.ingest.SupportedExtensions(), ext)
}

func (w *Watcher) relName(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// merge folds a later event into an earlier one for the same path.
// A create followed by writes stays a create; anything followed by a
// delete is a delete.
func merge(prev, next Change) Change {
	if prev.Path == "" {
		return next
	}
	if prev.Type == ChangeCreated && next.Type == ChangeUpdated {
		return prev
	}
	return next
}

func sortedKeys(m map[string]Change) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, errors.New("file too large")
	}
	return os.ReadFile(path)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
