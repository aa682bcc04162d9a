package startStop

import (
	"context"
	"time"

	"ec2scheduler/awsd/models"
	"ec2scheduler/schedule"
)

// InstanceStopper defines the stop call the classifier needs for untagged instances
type InstanceStopper interface {
	StopInstances(ctx context.Context, instanceIDs []string) error
}

// ComputeClient defines the EC2 operations for one account
type ComputeClient interface {
	InstanceStopper
	DescribeInstancesByState(ctx context.Context, state string) ([]models.Reservation, error)
	StartInstances(ctx context.Context, instanceIDs []string) error
}

// ClientFactory hands out a ComputeClient scoped to the account behind a role
type ClientFactory interface {
	ComputeClient(ctx context.Context, roleARN, sessionName string) (ComputeClient, error)
}

// ScheduleLoader defines how the schedule document is obtained
type ScheduleLoader interface {
	Load(ctx context.Context) (*schedule.Config, error)
}

// RunRecorder receives the outcome of an invocation
type RunRecorder interface {
	InstancesStarted(account string, count int)
	InstancesStopped(account string, count int)
	UntaggedStopped(account string, count int)
	AccountFailed(account string)
	RunCompleted(at time.Time)
	Push(ctx context.Context) error
}
