package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sujal-pawar/legacy-note-api/internal/model"
	"github.com/sujal-pawar/legacy-note-api/internal/provider"
)

// fakeUserRepo is an in-memory UserRepository with the same observable
// behavior as the Mongo implementation: unique emails, password hashes
// projected out of normal reads, expiry-aware reset token lookup.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, mongo.WriteException{
				WriteErrors: mongo.WriteErrors{{Code: 11000}},
			}
		}
	}

	user.ID = bson.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID.Hex()] = copyUser(user)

	return copyUser(user), nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	return withoutPassword(user), nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return withoutPassword(user), nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) GetUserByEmailWithPassword(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.GoogleID != "" && user.GoogleID == googleID {
			return withoutPassword(user), nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) GetUserByResetTokenHash(_ context.Context, tokenHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ResetTokenHash == tokenHash && user.ResetExpiresAt.After(time.Now()) {
			return withoutPassword(user), nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *fakeUserRepo) SetVerificationOTP(_ context.Context, id, otpHash string, expiresAt time.Time) error {
	return r.update(id, func(u *model.User) {
		u.VerificationOTPHash = otpHash
		u.VerificationExpiresAt = expiresAt
	})
}

func (r *fakeUserRepo) ClearVerificationOTP(_ context.Context, id string) error {
	return r.update(id, func(u *model.User) {
		u.VerificationOTPHash = ""
		u.VerificationExpiresAt = time.Time{}
	})
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	return r.update(id, func(u *model.User) {
		u.EmailVerified = true
		u.VerificationOTPHash = ""
		u.VerificationExpiresAt = time.Time{}
	})
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	return r.update(id, func(u *model.User) {
		u.ResetTokenHash = tokenHash
		u.ResetExpiresAt = expiresAt
	})
}

func (r *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	return r.update(id, func(u *model.User) {
		u.ResetTokenHash = ""
		u.ResetExpiresAt = time.Time{}
	})
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(u *model.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *fakeUserRepo) LinkGoogleID(_ context.Context, id, googleID string) error {
	return r.update(id, func(u *model.User) {
		u.GoogleID = googleID
		u.EmailVerified = true
	})
}

func (r *fakeUserRepo) update(id string, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}

	fn(user)
	user.UpdatedAt = time.Now()

	return nil
}

// stored returns the raw stored document, hashes included.
func (r *fakeUserRepo) stored(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil
	}

	return copyUser(user)
}

func copyUser(u *model.User) *model.User {
	clone := *u
	return &clone
}

func withoutPassword(u *model.User) *model.User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// sentEmail records one outbound message.
type sentEmail struct {
	kind string // "verification", "welcome", "reset", "changed"
	to   string
	name string
	code string
	link string
}

// recordingMailer implements mailer.Sender and records every send. Each
// message kind can be told to fail.
type recordingMailer struct {
	mu     sync.Mutex
	sent   []sentEmail
	failOn map[string]bool
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{failOn: make(map[string]bool)}
}

func (m *recordingMailer) SendVerificationCode(to, name, code string) error {
	return m.record(sentEmail{kind: "verification", to: to, name: name, code: code})
}

func (m *recordingMailer) SendWelcome(to, name string) error {
	return m.record(sentEmail{kind: "welcome", to: to, name: name})
}

func (m *recordingMailer) SendPasswordReset(to, name, link string) error {
	return m.record(sentEmail{kind: "reset", to: to, name: name, link: link})
}

func (m *recordingMailer) SendPasswordChanged(to, name string) error {
	return m.record(sentEmail{kind: "changed", to: to, name: name})
}

func (m *recordingMailer) record(email sentEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOn[email.kind] {
		return errors.New("smtp unavailable")
	}

	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) lastOfKind(kind string) (sentEmail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i], true
		}
	}

	return sentEmail{}, false
}

func (m *recordingMailer) countOfKind(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, email := range m.sent {
		if email.kind == kind {
			count++
		}
	}

	return count
}

// staticVerifier implements provider.GoogleVerifier for tests.
type staticVerifier struct {
	user *provider.GoogleUser
	err  error
}

func (v *staticVerifier) VerifyIDToken(_ context.Context, _ string) (*provider.GoogleUser, error) {
	if v.err != nil {
		return nil, v.err
	}

	return v.user, nil
}
