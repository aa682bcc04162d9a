package startStop

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ec2scheduler/awsd/models"
	"ec2scheduler/schedule"
)

// MockComputeClient is a mock implementation of ComputeClient
type MockComputeClient struct {
	mock.Mock
}

// DescribeInstancesByState mocks the DescribeInstancesByState method
func (m *MockComputeClient) DescribeInstancesByState(ctx context.Context, state string) ([]models.Reservation, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

// StartInstances mocks the StartInstances method
func (m *MockComputeClient) StartInstances(ctx context.Context, instanceIDs []string) error {
	args := m.Called(ctx, instanceIDs)
	return args.Error(0)
}

// StopInstances mocks the StopInstances method
func (m *MockComputeClient) StopInstances(ctx context.Context, instanceIDs []string) error {
	args := m.Called(ctx, instanceIDs)
	return args.Error(0)
}

// MockClientFactory is a mock implementation of ClientFactory
type MockClientFactory struct {
	mock.Mock
}

// ComputeClient mocks the ComputeClient method
func (m *MockClientFactory) ComputeClient(ctx context.Context, roleARN, sessionName string) (ComputeClient, error) {
	args := m.Called(ctx, roleARN, sessionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ComputeClient), args.Error(1)
}

// MockScheduleLoader is a mock implementation of ScheduleLoader
type MockScheduleLoader struct {
	mock.Mock
}

// Load mocks the Load method
func (m *MockScheduleLoader) Load(ctx context.Context) (*schedule.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Config), args.Error(1)
}

// MockRunRecorder is a mock implementation of RunRecorder
type MockRunRecorder struct {
	mock.Mock
}

func (m *MockRunRecorder) InstancesStarted(account string, count int) {
	m.Called(account, count)
}

func (m *MockRunRecorder) InstancesStopped(account string, count int) {
	m.Called(account, count)
}

func (m *MockRunRecorder) UntaggedStopped(account string, count int) {
	m.Called(account, count)
}

func (m *MockRunRecorder) AccountFailed(account string) {
	m.Called(account)
}

func (m *MockRunRecorder) RunCompleted(at time.Time) {
	m.Called(at)
}

func (m *MockRunRecorder) Push(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
