package verify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"drifty/internal/model"
	pkgerrors "drifty/pkg/errors"
)

// MockClient verifies against a fixed code without any transport.
// Development and tests.
type MockClient struct {
	mu     sync.Mutex
	code   string
	latest map[string]string // phone -> live confirmation id
	uids   map[string]string // phone -> stable uid
	sends  []string

	// SendErr makes the next SendCode fail with it, then resets.
	SendErr error
}

func NewMockClient(code string) *MockClient {
	if code == "" {
		code = "123456"
	}
	return &MockClient{
		code:   code,
		latest: make(map[string]string),
		uids:   make(map[string]string),
	}
}

func (m *MockClient) SendCode(ctx context.Context, phoneNumber, challengeToken string) (*Confirmation, error) {
	if !plausiblePhone(phoneNumber) {
		return nil, pkgerrors.PhoneInvalid
	}
	if challengeToken == "" {
		return nil, pkgerrors.ChallengeRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendErr != nil {
		err := m.SendErr
		m.SendErr = nil
		return nil, err
	}

	conf := &Confirmation{
		ID:      uuid.NewString(),
		Phone:   phoneNumber,
		backend: m,
	}
	m.latest[phoneNumber] = conf.ID
	m.sends = append(m.sends, phoneNumber)

	return conf, nil
}

func (m *MockClient) confirm(ctx context.Context, conf *Confirmation, code string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.latest[conf.Phone] != conf.ID {
		return nil, pkgerrors.ConfirmationReplaced
	}

	if code != m.code {
		return nil, pkgerrors.CodeInvalid
	}

	uid, ok := m.uids[conf.Phone]
	if !ok {
		uid = "mock_" + uuid.NewString()
		m.uids[conf.Phone] = uid
	}

	return &model.Identity{
		UID:         uid,
		PhoneNumber: conf.Phone,
		Token:       "mock-identity-token",
	}, nil
}

// SendCount returns how many sends the mock accepted.
func (m *MockClient) SendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}
