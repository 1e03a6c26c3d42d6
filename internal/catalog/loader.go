// Package catalog loads paginated quiz lists, keyed by scope: the
// unscoped catalog, per-subject lists, and per-chapter lists. Each scope
// caches independently; a failure in one scope never evicts another.
package catalog

import (
	"context"
	"sync"

	"studypath/internal/domain"
	"studypath/internal/dto"
	"studypath/internal/logger"
	"studypath/internal/validation"

	"go.uber.org/zap"
)

// API is the backend surface the loader needs. Implemented by the REST
// client.
type API interface {
	Quizzes(ctx context.Context, page, limit int) ([]domain.Quiz, dto.PageMeta, error)
	QuizzesBySubject(ctx context.Context, subjectID string, page, limit int) ([]domain.Quiz, dto.PageMeta, error)
	QuizzesByChapter(ctx context.Context, chapterID string, page, limit int) ([]domain.Quiz, dto.PageMeta, error)
	Subjects(ctx context.Context) ([]domain.Subject, error)
	Chapters(ctx context.Context, subjectID string) ([]domain.Chapter, error)
}

// Page is one cached scope's state: the last successfully loaded list,
// its pagination metadata, and the last error message.
type Page struct {
	Quizzes []domain.Quiz
	Meta    dto.PageMeta
	Err     string
}

// scopeCache adds a per-scope generation counter. Each issued request
// bumps the counter; a response whose generation is no longer the latest
// is stale and dropped instead of clobbering newer data.
type scopeCache struct {
	page   Page
	issued uint64
}

// Loader is the quiz catalog loader. All methods are safe for concurrent
// use; loads against different scopes never interfere.
type Loader struct {
	mu        sync.Mutex
	api       API
	validator *validation.Validator

	inFlight  int
	all       scopeCache
	bySubject map[string]*scopeCache
	byChapter map[string]*scopeCache

	subjects []domain.Subject
	chapters map[string][]domain.Chapter
}

// NewLoader creates an empty Loader.
func NewLoader(api API) *Loader {
	return &Loader{
		api:       api,
		validator: validation.NewValidator(),
		bySubject: make(map[string]*scopeCache),
		byChapter: make(map[string]*scopeCache),
		chapters:  make(map[string][]domain.Chapter),
	}
}

// IsLoading reports whether any catalog fetch is in flight. It turns true
// on dispatch and false once every outstanding fetch has settled.
func (l *Loader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight > 0
}

// LoadAll populates the unscoped catalog. Idempotent and safe to
// re-issue.
func (l *Loader) LoadAll(ctx context.Context, page, limit int) error {
	return l.load(ctx, &l.all, "all", "", func(ctx context.Context) ([]domain.Quiz, dto.PageMeta, error) {
		return l.api.Quizzes(ctx, page, limit)
	}, page, limit)
}

// LoadBySubject populates the cache slot for one subject, leaving other
// subjects' cached lists untouched.
func (l *Loader) LoadBySubject(ctx context.Context, subjectID string, page, limit int) error {
	l.mu.Lock()
	sc, ok := l.bySubject[subjectID]
	if !ok {
		sc = &scopeCache{}
		l.bySubject[subjectID] = sc
	}
	l.mu.Unlock()

	return l.load(ctx, sc, "subject", subjectID, func(ctx context.Context) ([]domain.Quiz, dto.PageMeta, error) {
		return l.api.QuizzesBySubject(ctx, subjectID, page, limit)
	}, page, limit)
}

// LoadByChapter populates the cache slot for one chapter.
func (l *Loader) LoadByChapter(ctx context.Context, chapterID string, page, limit int) error {
	l.mu.Lock()
	sc, ok := l.byChapter[chapterID]
	if !ok {
		sc = &scopeCache{}
		l.byChapter[chapterID] = sc
	}
	l.mu.Unlock()

	return l.load(ctx, sc, "chapter", chapterID, func(ctx context.Context) ([]domain.Quiz, dto.PageMeta, error) {
		return l.api.QuizzesByChapter(ctx, chapterID, page, limit)
	}, page, limit)
}

func (l *Loader) load(ctx context.Context, sc *scopeCache, scope, id string,
	fetch func(context.Context) ([]domain.Quiz, dto.PageMeta, error), page, limit int) error {

	if errs := l.validator.ValidatePagination(page, limit); len(errs) > 0 {
		return errs
	}

	l.mu.Lock()
	sc.issued++
	gen := sc.issued
	l.inFlight++
	l.mu.Unlock()

	quizzes, meta, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight--

	if gen != sc.issued {
		// A newer request for this scope was issued while this one was in
		// flight; its response is authoritative, ours is stale.
		logger.Get().Debug("Dropping stale catalog response",
			zap.String("scope", scope), zap.String("id", id), zap.Uint64("generation", gen))
		return nil
	}

	if err != nil {
		sc.page.Err = err.Error()
		logger.Get().Warn("Catalog load failed",
			zap.String("scope", scope), zap.String("id", id), zap.Error(err))
		return err
	}

	sc.page = Page{Quizzes: quizzes, Meta: meta}
	return nil
}

// All returns the unscoped catalog's cached page.
func (l *Loader) All() Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyPage(l.all.page)
}

// BySubject returns a subject's cached page; ok is false when the scope
// has never been loaded.
func (l *Loader) BySubject(subjectID string) (Page, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sc, ok := l.bySubject[subjectID]
	if !ok {
		return Page{}, false
	}
	return copyPage(sc.page), true
}

// ByChapter returns a chapter's cached page; ok is false when the scope
// has never been loaded.
func (l *Loader) ByChapter(chapterID string) (Page, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sc, ok := l.byChapter[chapterID]
	if !ok {
		return Page{}, false
	}
	return copyPage(sc.page), true
}

// FindQuiz looks a quiz up across every cached scope. Used by the attempt
// engine, which only starts quizzes already present in the catalog.
func (l *Loader) FindQuiz(quizID string) (domain.Quiz, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if quiz, ok := findIn(l.all.page.Quizzes, quizID); ok {
		return quiz, true
	}
	for _, sc := range l.bySubject {
		if quiz, ok := findIn(sc.page.Quizzes, quizID); ok {
			return quiz, true
		}
	}
	for _, sc := range l.byChapter {
		if quiz, ok := findIn(sc.page.Quizzes, quizID); ok {
			return quiz, true
		}
	}
	return domain.Quiz{}, false
}

// LoadSubjects fetches and caches the subject list.
func (l *Loader) LoadSubjects(ctx context.Context) ([]domain.Subject, error) {
	l.mu.Lock()
	l.inFlight++
	l.mu.Unlock()

	subjects, err := l.api.Subjects(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight--
	if err != nil {
		return nil, err
	}
	l.subjects = subjects
	return append([]domain.Subject(nil), subjects...), nil
}

// LoadChapters fetches and caches a subject's chapter list.
func (l *Loader) LoadChapters(ctx context.Context, subjectID string) ([]domain.Chapter, error) {
	l.mu.Lock()
	l.inFlight++
	l.mu.Unlock()

	chapters, err := l.api.Chapters(ctx, subjectID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight--
	if err != nil {
		return nil, err
	}
	l.chapters[subjectID] = chapters
	return append([]domain.Chapter(nil), chapters...), nil
}

// Subjects returns the cached subject list.
func (l *Loader) Subjects() []domain.Subject {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Subject(nil), l.subjects...)
}

// Chapters returns a subject's cached chapter list.
func (l *Loader) Chapters(subjectID string) []domain.Chapter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Chapter(nil), l.chapters[subjectID]...)
}

func copyPage(p Page) Page {
	return Page{
		Quizzes: append([]domain.Quiz(nil), p.Quizzes...),
		Meta:    p.Meta,
		Err:     p.Err,
	}
}

func findIn(quizzes []domain.Quiz, quizID string) (domain.Quiz, bool) {
	for i := range quizzes {
		if quizzes[i].ID == quizID {
			return quizzes[i], true
		}
	}
	return domain.Quiz{}, false
}
