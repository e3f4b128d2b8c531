package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/repository"
	"github.com/scoreline/scoreline-api/internal/wizard"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func gormNotFound() error { return gorm.ErrRecordNotFound }

func strPtr(s string) *string { return &s }

// fakeSubmissionRepo is an in-memory SubmissionRepository.
type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	createErr   error
	updateErr   error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uint]models.Submission{}, nextID: 1}
}

func (f *fakeSubmissionRepo) ListByOwner(_ context.Context, ownerID uint, limit int) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range f.submissions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	s, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gormNotFound()
	}
	return s, nil
}

func (f *fakeSubmissionRepo) GetByIDForOwner(_ context.Context, id, ownerID uint) (models.Submission, error) {
	s, ok := f.submissions[id]
	if !ok || s.OwnerID != ownerID {
		return models.Submission{}, gormNotFound()
	}
	return s, nil
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	submission.ID = f.nextID
	f.nextID++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.submissions[submission.ID] = *submission
	return nil
}

// fakeAccountRepo is an in-memory AccountRepository tracking decrements.
type fakeAccountRepo struct {
	accounts map[uint]models.Account
	consumed int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[uint]models.Account{}}
}

func (f *fakeAccountRepo) GetByUserID(_ context.Context, userID uint) (models.Account, error) {
	account, ok := f.accounts[userID]
	if !ok {
		return models.Account{}, gormNotFound()
	}
	return account, nil
}

func (f *fakeAccountRepo) ConsumeCredit(_ context.Context, userID uint) error {
	account, ok := f.accounts[userID]
	if !ok || account.FeedbackCredits <= 0 {
		return repository.ErrNoCredits
	}
	account.FeedbackCredits--
	f.accounts[userID] = account
	f.consumed++
	return nil
}

func (f *fakeAccountRepo) AddCredits(_ context.Context, userID uint, credits int) error {
	account := f.accounts[userID]
	account.UserID = userID
	account.FeedbackCredits += credits
	f.accounts[userID] = account
	return nil
}

// fakeSessionRepo is an in-memory WizardSessionRepository.
type fakeSessionRepo struct {
	sessions map[uint]wizard.Session
	deletes  int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uint]wizard.Session{}}
}

func (f *fakeSessionRepo) Get(_ context.Context, userID uint) (wizard.Session, error) {
	session, ok := f.sessions[userID]
	if !ok {
		return wizard.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) Save(_ context.Context, userID uint, session wizard.Session) error {
	f.sessions[userID] = session
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, userID uint) error {
	delete(f.sessions, userID)
	f.deletes++
	return nil
}

// fakeUploader records uploads and optionally fails.
type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.url != "" {
		return f.url, nil
	}
	return "https://cdn.example.com/" + name, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	created []models.Submission
	updated []models.Submission
}

func (f *fakePublisher) PublishCreated(_ context.Context, submission models.Submission) {
	f.created = append(f.created, submission)
}

func (f *fakePublisher) PublishUpdated(_ context.Context, submission models.Submission) {
	f.updated = append(f.updated, submission)
}

// fakeEnqueuer records grading jobs.
type fakeEnqueuer struct {
	jobs []models.Submission
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, submission models.Submission) error {
	f.jobs = append(f.jobs, submission)
	return nil
}
