package startStop

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ec2scheduler/awsd/models"
	"ec2scheduler/clock"
	"ec2scheduler/errors"
	"ec2scheduler/schedule"
)

// Action is what a dispatch did to an account's instances
type Action string

const (
	ActionNone  Action = "none"
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

const dateLayout = "Monday, 02 January 2006 15:04:05"

// AccountResult describes one account's dispatch. UntaggedStopped is zero
// when the untagged stop call failed.
type AccountResult struct {
	Action          Action
	Classification  Classification
	Acted           []string
	UntaggedStopped int
}

// Dispatcher decides between starting and stopping from the time of day
type Dispatcher struct {
	classifier *Classifier
	logger     *zap.Logger
}

func NewDispatcher(classifier *Classifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		classifier: classifier,
		logger:     logger,
	}
}

// Dispatch starts ActionRequired instances inside [start, stop) and stops
// them once stop has passed. Before start nothing happens.
func (d *Dispatcher) Dispatch(ctx context.Context, client ComputeClient, cfg *schedule.Config, times clock.Times) (*AccountResult, error) {
	switch {
	case times.InRunWindow():
		return d.act(ctx, client, cfg, times, ActionStart, models.StateStopped, client.StartInstances)
	case times.PastStop():
		return d.act(ctx, client, cfg, times, ActionStop, models.StateRunning, client.StopInstances)
	default:
		d.logger.Info("Outside the start/stop window, nothing to do",
			zap.String("operation", "dispatch"),
			zap.String("now", times.Now.Format(dateLayout)),
			zap.String("start", times.Start.String()),
			zap.String("stop", times.Stop.String()),
		)
		return &AccountResult{Action: ActionNone}, nil
	}
}

func (d *Dispatcher) act(ctx context.Context, client ComputeClient, cfg *schedule.Config, times clock.Times,
	action Action, state string, call func(context.Context, []string) error) (*AccountResult, error) {
	reservations, err := client.DescribeInstancesByState(ctx, state)
	if err != nil {
		return nil, err
	}
	d.logger.Info("The date is: "+times.Now.Format(dateLayout)+" , "+times.Zone,
		zap.String("operation", "dispatch"),
		zap.String("state", state),
	)

	classification, untaggedErr := d.classifier.Classify(ctx, reservations, cfg, client)
	result := &AccountResult{
		Action:         action,
		Classification: classification,
	}
	if untaggedErr == nil {
		result.UntaggedStopped = len(classification.Untagged)
	}

	if len(classification.ActionRequired) == 0 {
		d.logger.Info("No action was taken because one of the following:",
			zap.String("operation", string(action)),
			zap.Strings("reasons", []string{
				`Instances have "NoShutdown" flag.`,
				`Instances do not have "Schedule" tag.`,
				`Instances have no value in "Schedule" tag.`,
			}),
		)
		return result, untaggedErr
	}

	d.logger.Info("Acting on instances",
		zap.String("operation", string(action)),
		zap.Strings("instance_ids", classification.ActionRequired),
	)
	if err := call(ctx, classification.ActionRequired); err != nil {
		return result, multierr.Append(untaggedErr, errors.New(errors.ErrDispatch, string(action)+" failed",
			map[string]interface{}{
				"instance_ids": classification.ActionRequired,
			}, err))
	}
	result.Acted = classification.ActionRequired
	d.logger.Info("Action has finished successfully",
		zap.String("operation", string(action)),
		zap.Int("count", len(result.Acted)),
	)
	return result, untaggedErr
}
