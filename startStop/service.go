package startStop

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ec2scheduler/clock"
	"ec2scheduler/errors"
	"ec2scheduler/schedule"
)

// AccountReport is the outcome for one role ARN
type AccountReport struct {
	RoleARN     string
	AccountID   string
	AccountName string
	Result      *AccountResult
	Err         error
}

// RunReport is the outcome of one invocation
type RunReport struct {
	StartedAt time.Time
	Weekend   bool
	Accounts  []AccountReport
}

// Failed returns the accounts whose cycle ended in an error
func (r *RunReport) Failed() []AccountReport {
	var failed []AccountReport
	for _, account := range r.Accounts {
		if account.Err != nil {
			failed = append(failed, account)
		}
	}
	return failed
}

// Service runs one scheduling pass over every configured account
type Service struct {
	loader      ScheduleLoader
	clients     ClientFactory
	resolver    *clock.Resolver
	recorder    RunRecorder
	dispatcher  *Dispatcher
	sessionName string
	logger      *zap.Logger
}

func NewService(loader ScheduleLoader, clients ClientFactory, resolver *clock.Resolver, recorder RunRecorder, sessionName string, logger *zap.Logger) *Service {
	return &Service{
		loader:      loader,
		clients:     clients,
		resolver:    resolver,
		recorder:    recorder,
		dispatcher:  NewDispatcher(NewClassifier(logger), logger),
		sessionName: sessionName,
		logger:      logger,
	}
}

// LoadSchedule fetches and validates the schedule document without acting on it
func (s *Service) LoadSchedule(ctx context.Context) (*schedule.Config, error) {
	return s.loader.Load(ctx)
}

// Run loads the schedule and dispatches every account in order. A failing
// account is recorded and the loop moves on; the returned error combines
// every account failure. Only a schedule load failure stops the run early.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	cfg, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("Loading the schedule failed",
			zap.String("operation", "run"),
			zap.Error(err),
		)
		return nil, err
	}

	report := &RunReport{StartedAt: s.resolver.Now()}
	if !clock.IsWeekday(s.resolver.Weekday(), cfg.HalfDay) {
		s.logger.Info("I do not operate on weekends.",
			zap.String("operation", "run"),
			zap.String("half_day", cfg.HalfDay.Raw),
		)
		report.Weekend = true
		s.finish(ctx, report)
		return report, nil
	}

	var runErr error
	for _, roleARN := range cfg.RoleARNs {
		if err := ctx.Err(); err != nil {
			runErr = multierr.Append(runErr, err)
			break
		}
		account := s.runAccount(ctx, cfg, roleARN)
		report.Accounts = append(report.Accounts, account)
		runErr = multierr.Append(runErr, account.Err)
	}

	s.finish(ctx, report)
	return report, runErr
}

func (s *Service) runAccount(ctx context.Context, cfg *schedule.Config, roleARN string) AccountReport {
	account := AccountReport{RoleARN: roleARN}

	parsed, err := arn.Parse(roleARN)
	if err != nil {
		account.Err = errors.New(errors.ErrConfigInvalid, "invalid role arn",
			map[string]interface{}{
				"role_arn": roleARN,
			}, err)
		s.logAccountError(account)
		return account
	}
	account.AccountID = parsed.AccountID

	name, ok := cfg.AccountName(parsed.AccountID)
	if !ok {
		s.logger.Warn("No display name for account, using its number",
			zap.String("operation", "run"),
			zap.String("account", parsed.AccountID),
		)
		name = parsed.AccountID
	}
	account.AccountName = name

	logger := s.logger.With(zap.String("account", account.AccountName))
	logger.Info("Processing account", zap.String("role_arn", roleARN))

	client, err := s.clients.ComputeClient(ctx, roleARN, s.sessionName)
	if err != nil {
		account.Err = errors.New(errors.ErrDispatch, "creating account client failed",
			map[string]interface{}{
				"account": account.AccountName,
			}, err)
		s.logAccountError(account)
		return account
	}

	times := s.resolver.Resolve(cfg)
	result, err := s.dispatcher.Dispatch(ctx, client, cfg, times)
	account.Result = result
	if err != nil {
		account.Err = errors.New(errors.ErrDispatch, "account start/stop failed",
			map[string]interface{}{
				"account": account.AccountName,
			}, err)
		s.logAccountError(account)
	}
	return account
}

func (s *Service) logAccountError(account AccountReport) {
	fields := []zap.Field{
		zap.String("operation", "run"),
		zap.String("role_arn", account.RoleARN),
		zap.String("account", account.AccountName),
		zap.Error(account.Err),
	}
	// prefer the wrapped cause, e.g. CREDENTIALS_ERROR under DISPATCH_ERROR
	errType, ok := errors.TypeOf(stderrors.Unwrap(account.Err))
	if !ok {
		errType, ok = errors.TypeOf(account.Err)
	}
	if ok {
		fields = append(fields, zap.String("error_type", string(errType)))
	}
	s.logger.Error("Account failed, continuing with the next one", fields...)
}

func (s *Service) finish(ctx context.Context, report *RunReport) {
	for _, account := range report.Accounts {
		label := account.AccountID
		if label == "" {
			label = account.RoleARN
		}
		if account.Err != nil {
			s.recorder.AccountFailed(label)
		}
		if account.Result == nil {
			continue
		}
		switch account.Result.Action {
		case ActionStart:
			s.recorder.InstancesStarted(label, len(account.Result.Acted))
		case ActionStop:
			s.recorder.InstancesStopped(label, len(account.Result.Acted))
		}
		if account.Result.UntaggedStopped > 0 {
			s.recorder.UntaggedStopped(label, account.Result.UntaggedStopped)
		}
	}
	s.recorder.RunCompleted(s.resolver.Now())

	if err := s.recorder.Push(ctx); err != nil {
		s.logger.Warn("Pushing metrics failed",
			zap.String("operation", "metrics_push"),
			zap.Error(err),
		)
	}
}
