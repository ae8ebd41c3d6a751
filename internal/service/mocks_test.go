package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/notehub/notehub-go/internal/model"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	args := m.Called(ctx, googleID)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) SetVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserStore) SetOTP(ctx context.Context, id int64, otp string, expiresAt time.Time) error {
	args := m.Called(ctx, id, otp, expiresAt)
	return args.Error(0)
}

func (m *mockUserStore) LinkGoogle(ctx context.Context, id int64, googleID, picture string) error {
	args := m.Called(ctx, id, googleID, picture)
	return args.Error(0)
}

type mockNoteStore struct {
	mock.Mock
}

func (m *mockNoteStore) Create(ctx context.Context, note *model.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *mockNoteStore) GetByID(ctx context.Context, userID, noteID int64) (*model.Note, error) {
	args := m.Called(ctx, userID, noteID)
	if n := args.Get(0); n != nil {
		return n.(*model.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNoteStore) List(ctx context.Context, userID int64, search, tag string, limit, offset int) ([]model.Note, int, error) {
	args := m.Called(ctx, userID, search, tag, limit, offset)
	var notes []model.Note
	if n := args.Get(0); n != nil {
		notes = n.([]model.Note)
	}
	return notes, args.Int(1), args.Error(2)
}

func (m *mockNoteStore) Update(ctx context.Context, note *model.Note) (*model.Note, error) {
	args := m.Called(ctx, note)
	if n := args.Get(0); n != nil {
		return n.(*model.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNoteStore) Delete(ctx context.Context, userID, noteID int64) error {
	args := m.Called(ctx, userID, noteID)
	return args.Error(0)
}

func (m *mockNoteStore) TogglePin(ctx context.Context, userID, noteID int64) (*model.Note, error) {
	args := m.Called(ctx, userID, noteID)
	if n := args.Get(0); n != nil {
		return n.(*model.Note), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendOTP(ctx context.Context, to, otp string) error {
	args := m.Called(ctx, to, otp)
	return args.Error(0)
}
