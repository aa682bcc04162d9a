package awsd

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"ec2scheduler/awsd/models"
	"ec2scheduler/errors"
)

const dryRunOperation = "DryRunOperation"

// EC2API is the part of the EC2 API the scheduler calls
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

// AwsClient is an EC2 client scoped to one account
type AwsClient struct {
	client EC2API
	dryRun bool
	logger *zap.Logger
}

func NewEC2ClientWithConfig(cfg aws.Config, dryRun bool, logger *zap.Logger, optFns ...func(*ec2.Options)) *AwsClient {
	return NewAwsClient(ec2.NewFromConfig(cfg, optFns...), dryRun, logger)
}

func NewAwsClient(client EC2API, dryRun bool, logger *zap.Logger) *AwsClient {
	return &AwsClient{
		client: client,
		dryRun: dryRun,
		logger: logger,
	}
}

// DescribeInstancesByState lists every instance in the given state, grouped by reservation
func (a *AwsClient) DescribeInstancesByState(ctx context.Context, state string) ([]models.Reservation, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{state},
			},
		},
	}

	var reservations []models.Reservation
	paginator := ec2.NewDescribeInstancesPaginator(a.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New(errors.ErrAWSInstance, "describing instances failed",
				map[string]interface{}{
					"state": state,
				}, err)
		}
		reservations = append(reservations, parseReservations(page.Reservations)...)
	}

	a.logger.Debug("Instances described",
		zap.String("operation", "describe_instances"),
		zap.String("state", state),
		zap.Int("reservations", len(reservations)),
	)
	return reservations, nil
}

// StartInstances starts the given instances in one call
func (a *AwsClient) StartInstances(ctx context.Context, instanceIDs []string) error {
	_, err := a.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: instanceIDs,
		DryRun:      aws.Bool(a.dryRun),
	})
	return a.actionResult("start", instanceIDs, err)
}

// StopInstances stops the given instances in one call
func (a *AwsClient) StopInstances(ctx context.Context, instanceIDs []string) error {
	_, err := a.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: instanceIDs,
		DryRun:      aws.Bool(a.dryRun),
	})
	return a.actionResult("stop", instanceIDs, err)
}

func (a *AwsClient) actionResult(action string, instanceIDs []string, err error) error {
	if err == nil {
		return nil
	}
	// EC2 answers a permitted dry run with an error
	if a.dryRun && isDryRunSuccess(err) {
		a.logger.Info("Dry run: permission check passed, no instances changed",
			zap.String("operation", action),
			zap.Strings("instance_ids", instanceIDs),
		)
		return nil
	}
	return errors.New(errors.ErrAWSInstance, action+" instances failed",
		map[string]interface{}{
			"instance_ids": instanceIDs,
		}, err)
}

func isDryRunSuccess(err error) bool {
	var apiErr smithy.APIError
	return stderrors.As(err, &apiErr) && apiErr.ErrorCode() == dryRunOperation
}

func parseReservations(reservations []types.Reservation) []models.Reservation {
	result := make([]models.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		instances := make([]models.Instance, 0, len(reservation.Instances))
		for _, instance := range reservation.Instances {
			instances = append(instances, models.Instance{
				InstanceID: aws.ToString(instance.InstanceId),
				Tags:       parseTags(instance.Tags),
			})
		}
		result = append(result, models.Reservation{
			ReservationID: aws.ToString(reservation.ReservationId),
			Instances:     instances,
		})
	}
	return result
}

func parseTags(tags []types.Tag) map[string]string {
	result := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key == nil {
			continue
		}
		result[*tag.Key] = aws.ToString(tag.Value)
	}
	return result
}
