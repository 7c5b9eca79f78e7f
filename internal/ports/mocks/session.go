package mocks

import (
	"context"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/ports"
	"github.com/stretchr/testify/mock"
)

type MockSession struct {
	mock.Mock
}

var _ ports.Session = (*MockSession)(nil)

func NewMockSession(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSession {
	m := &MockSession{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSession) Info(ctx context.Context) (domain.ToolInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(domain.ToolInfo)
	return info, args.Error(1)
}

func (m *MockSession) SelectedObjects(ctx context.Context) ([]domain.Object, error) {
	args := m.Called(ctx)
	objects, _ := args.Get(0).([]domain.Object)
	return objects, args.Error(1)
}

func (m *MockSession) WatchSelection(ctx context.Context) (<-chan []domain.Object, error) {
	args := m.Called(ctx)
	updates, _ := args.Get(0).(<-chan []domain.Object)
	return updates, args.Error(1)
}

func (m *MockSession) CreateObject(ctx context.Context, req domain.CreationRequest) (domain.Object, error) {
	args := m.Called(ctx, req)
	object, _ := args.Get(0).(domain.Object)
	return object, args.Error(1)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockConnector struct {
	mock.Mock
}

var _ ports.Connector = (*MockConnector)(nil)

func NewMockConnector(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockConnector {
	m := &MockConnector{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConnector) Connect(ctx context.Context) (ports.Session, error) {
	args := m.Called(ctx)
	session, _ := args.Get(0).(ports.Session)
	return session, args.Error(1)
}
