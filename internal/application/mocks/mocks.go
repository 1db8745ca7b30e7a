// Package mocks provides mock implementations of the capabilities services
// depend on: event publishing and synchronous collaborator calls.
package mocks

import (
	"context"

	"github.com/hilthontt/melody/internal/infrastructure/collab"
	"github.com/hilthontt/melody/internal/infrastructure/contracts"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of messaging.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key contracts.RoutingKey, payload contracts.Payload) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

// MockExistenceChecker is a mock implementation of collab.EntityExistenceChecker.
type MockExistenceChecker struct {
	mock.Mock
}

func (m *MockExistenceChecker) Exists(ctx context.Context, id string) (collab.Existence, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(collab.Existence), args.Error(1)
}

// MockProvisioner is a mock implementation of collab.ProfileProvisioner.
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, userID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}
