package startStop

import (
	"context"

	"go.uber.org/zap"

	"ec2scheduler/awsd/models"
	"ec2scheduler/errors"
	"ec2scheduler/schedule"
)

const (
	TagNoShutdown = "NoShutdown"
	TagSchedule   = "Schedule"
)

// Classification sorts a snapshot of instances by what the scheduler should do with them.
// ActionRequired, NoActionRequired and Untagged never share an ID: the first
// bucket to record an ID keeps it.
type Classification struct {
	ActionRequired   []string
	NoActionRequired []string
	Untagged         []string
	Unscheduled      []string
}

// Classifier buckets instances by their NoShutdown and Schedule tags
type Classifier struct {
	logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify walks the reservations in order. Tag keys accumulate across the
// instances of a reservation and the reservation's first instance ID is the
// one recorded. Untagged instances are stopped through stopper in one call
// when the schedule asks for it.
func (c *Classifier) Classify(ctx context.Context, reservations []models.Reservation, cfg *schedule.Config, stopper InstanceStopper) (Classification, error) {
	var result Classification
	claimed := make(map[string]bool)
	claim := func(bucket *[]string, id string) {
		if claimed[id] {
			return
		}
		claimed[id] = true
		*bucket = append(*bucket, id)
	}

	for _, reservation := range reservations {
		if len(reservation.Instances) == 0 {
			continue
		}
		lead := reservation.Instances[0].InstanceID
		seen := make(map[string]bool)

		for _, instance := range reservation.Instances {
			for key := range instance.Tags {
				seen[key] = true
			}

			switch {
			case seen[TagNoShutdown]:
				claim(&result.NoActionRequired, lead)
			case seen[TagSchedule]:
				if !instance.HasTag(TagSchedule) {
					continue
				}
				value := instance.Tags[TagSchedule]
				switch value {
				case "", cfg.AllDay.Raw:
					claim(&result.NoActionRequired, lead)
				case cfg.HalfDay.Raw:
					claim(&result.ActionRequired, lead)
				default:
					c.logger.Warn("Unknown schedule value, instance left alone",
						zap.String("operation", "classify"),
						zap.String("instance_id", instance.InstanceID),
						zap.String("schedule", value),
					)
					result.Unscheduled = append(result.Unscheduled, instance.InstanceID)
				}
			case cfg.StopUntagged:
				claim(&result.Untagged, instance.InstanceID)
			}
		}
	}

	if len(result.Untagged) == 0 {
		return result, nil
	}

	c.logger.Info("Stopping the untagged instances",
		zap.String("operation", "stop_untagged"),
		zap.Strings("instance_ids", result.Untagged),
	)
	if err := stopper.StopInstances(ctx, result.Untagged); err != nil {
		c.logger.Error("Untagged instances failed to stop",
			zap.String("operation", "stop_untagged"),
			zap.Strings("instance_ids", result.Untagged),
			zap.Error(err),
		)
		return result, errors.New(errors.ErrAWSInstance, "stopping untagged instances failed",
			map[string]interface{}{
				"instance_ids": result.Untagged,
			}, err)
	}
	return result, nil
}
