package challenge

import (
	"context"

	pkgerrors "drifty/pkg/errors"
)

// MockClient passes any non-empty token. Development and tests only.
type MockClient struct {
	// FailNext makes the next Verify report failure, then resets.
	FailNext bool
}

// MockToken is what the mock "widget" hands back in development.
const MockToken = "mock-challenge-token"

func (m *MockClient) Verify(ctx context.Context, token, scene string) (bool, error) {
	if token == "" {
		return false, pkgerrors.ErrChallengeTokenRequired
	}

	if m.FailNext {
		m.FailNext = false
		return false, nil
	}

	return true, nil
}
