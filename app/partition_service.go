package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"setsplit/domain/core"
	"setsplit/domain/dataset"
	"setsplit/domain/partition"
	"setsplit/domain/run"
	"setsplit/internal"
	"setsplit/internal/allocate"
	"setsplit/internal/errors"
	"setsplit/internal/stratify"
	"setsplit/internal/transform"
	"setsplit/internal/verify"
)

// Iteration records one cluster, allocate and verify cycle
type Iteration struct {
	Cycle          int
	Sizes          []int
	LargestCluster int
	Failing        []partition.StatResult
	State          partition.State
}

// Outcome is the result of one run. Both Accepted and Exhausted runs carry
// the last computed subsets.
type Outcome struct {
	Manifest    *run.Manifest
	State       partition.State
	Iterations  int
	Threshold   float64
	MaxRetries  int
	Strata      []partition.Stratum
	Continuous  []string
	Categorical []string
	Subsets     []partition.Subset
	Assignment  partition.Assignment
	Results     []partition.StatResult
	History     []Iteration
	Warnings    []string
	// Annotated is the input dataset with the set_number column appended
	Annotated *dataset.Dataset
	RuntimeMs int64
}

// Balanced reports whether the run was accepted
func (o *Outcome) Balanced() bool {
	return o.State == partition.StateAccepted
}

// PartitionService drives the bounded cluster, allocate, verify loop
type PartitionService struct {
	stageRunner *StageRunner
	transformer *transform.FeatureTransformer
	verifier    *verify.BalanceVerifier
	logger      *internal.Logger
}

// NewPartitionService creates a partition service
func NewPartitionService(stageRunner *StageRunner, logger *internal.Logger) *PartitionService {
	return &PartitionService{
		stageRunner: stageRunner,
		transformer: transform.NewFeatureTransformer(),
		verifier:    verify.NewBalanceVerifier(),
		logger:      internal.OrDefault(logger).With("Partition"),
	}
}

// Run partitions plan.Dataset into plan.Sets subsets. runNumber is recorded in
// the manifest. Invalid plans fail with CONFIG_INVALID before any cycle runs;
// a cancelled context abandons the in-flight cycle and returns its error.
func (s *PartitionService) Run(ctx context.Context, plan partition.Plan, runNumber int) (*Outcome, error) {
	start := time.Now()
	if err := plan.Validate(); err != nil {
		return nil, classify(err)
	}
	if plan.Seed == 0 {
		plan.Seed = time.Now().UnixNano()
	}

	d := plan.Dataset
	manifest := run.NewManifest(d.Source,
		core.ComputeDatasetHash(d.Headers, d.Rows),
		core.ComputeRolesHash(plan.Roles.Codes()),
		plan.Sets, plan.Seed, runNumber)

	outcome := &Outcome{
		Manifest:    manifest,
		Threshold:   plan.Threshold,
		MaxRetries:  plan.MaxRetries,
		Continuous:  plan.Roles.Continuous(),
		Categorical: plan.Roles.Categorical(),
	}
	if d.Len() < plan.Sets {
		msg := fmt.Sprintf("%d items cannot fill %d subsets; some subsets will be empty", d.Len(), plan.Sets)
		s.logger.Warn("%s", msg)
		outcome.Warnings = append(outcome.Warnings, msg)
	}

	strata, err := s.prepare(plan)
	if err != nil {
		return nil, classify(err)
	}
	for _, st := range strata {
		outcome.Strata = append(outcome.Strata, st.Group.Stratum)
	}
	s.logger.Info("Run %d (%s): %d items, %d strata, %d subsets, seed %d",
		runNumber, manifest.RunID, d.Len(), len(strata), plan.Sets, plan.Seed)

	state := partition.StateClustering
	for retry := 0; ; retry++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cycle := retry + 1
		s.logger.Debug("cycle %d: %s", cycle, state)

		clusters, err := s.stageRunner.ClusterStrata(ctx, strata, plan.ClusterSettings(), cycle, plan.Seed, plan.Workers)
		if err != nil {
			return nil, cycleError(cycle, err)
		}
		state = partition.StateAllocating
		s.logger.Debug("cycle %d: %s", cycle, state)

		output, err := s.stageRunner.AllocateStrata(ctx, strata, clusters, plan.Sets, cycle, plan.Seed)
		if err != nil {
			return nil, cycleError(cycle, err)
		}
		if err := checkSpread(output); err != nil {
			return nil, errors.WithCode(errors.CodeInternalError, fmt.Errorf("cycle %d: %w", cycle, err))
		}
		state = partition.StateVerifying
		s.logger.Debug("cycle %d: %s", cycle, state)

		assignment := partition.NewAssignment(output.Subsets)
		results, err := s.verifier.Verify(d, assignment, plan.Sets,
			outcome.Continuous, outcome.Categorical, outcome.Strata)
		if err != nil {
			return nil, classify(err)
		}

		state = partition.Decide(results, plan.Threshold, retry, plan.MaxRetries)
		failing := partition.Failing(results, plan.Threshold)
		outcome.History = append(outcome.History, Iteration{
			Cycle:          cycle,
			Sizes:          partition.Sizes(output.Subsets),
			LargestCluster: output.LargestCluster(),
			Failing:        failing,
			State:          state,
		})
		outcome.Iterations = cycle
		outcome.Subsets = output.Subsets
		outcome.Assignment = assignment
		outcome.Results = results

		if len(failing) > 0 {
			for _, r := range failing {
				s.logger.Debug("cycle %d failing: %s", cycle, r)
			}
			s.logger.Info("Cycle %d: %d of %d tests below p=%.2f, %s",
				cycle, len(failing), len(results), plan.Threshold, state)
		}
		if state.Terminal() {
			break
		}
		state = partition.StateClustering
	}

	outcome.State = state
	switch state {
	case partition.StateAccepted:
		s.logger.Info("Run %d accepted after %d cycles", runNumber, outcome.Iterations)
	default:
		s.logger.Warn("Run %d exhausted after %d cycles without reaching p >= %.2f on every test",
			runNumber, outcome.Iterations, plan.Threshold)
	}

	annotated, err := Annotate(d, outcome.Assignment)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInternalError, err)
	}
	outcome.Annotated = annotated
	outcome.RuntimeMs = time.Since(start).Milliseconds()
	return outcome, nil
}

// cycleError passes cancellation through and reports anything else as internal
func cycleError(cycle int, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.WithCode(errors.CodeInternalError, fmt.Errorf("cycle %d: %w", cycle, err))
}

// checkSpread enforces that subset sizes, per stratum and merged, differ by no
// more than the largest cluster
func checkSpread(output *CycleOutput) error {
	for i, subsets := range output.PerStratum {
		if spread := allocate.SizeSpread(subsets); spread > allocate.LargestCluster(output.Clusters[i]) {
			return fmt.Errorf("stratum %d subset sizes differ by %d, more than its largest cluster", i+1, spread)
		}
	}
	if spread := allocate.SizeSpread(output.Subsets); spread > output.LargestCluster() {
		return fmt.Errorf("merged subset sizes differ by %d, more than the largest cluster", spread)
	}
	return nil
}

// prepare stratifies the dataset and transforms each stratum
func (s *PartitionService) prepare(plan partition.Plan) ([]PreparedStratum, error) {
	absolute, _ := plan.Roles.Absolute()
	groups, err := stratify.Split(plan.Dataset, absolute)
	if err != nil {
		return nil, err
	}
	strata := make([]PreparedStratum, len(groups))
	for i, g := range groups {
		frame, err := s.transformer.Transform(g.Data, plan.Roles)
		if err != nil {
			return nil, err
		}
		strata[i] = PreparedStratum{Group: g, Frame: frame}
	}
	return strata, nil
}

// Annotate appends the set_number column to d
func Annotate(d *dataset.Dataset, assignment partition.Assignment) (*dataset.Dataset, error) {
	values := make([]string, d.Len())
	for i, id := range d.IDs {
		set, ok := assignment[id]
		if !ok {
			return nil, fmt.Errorf("item %d has no subset", id)
		}
		values[i] = fmt.Sprintf("%d", set)
	}
	return d.WithColumn(partition.SetColumn, values)
}

// classify maps domain failures onto the error taxonomy
func classify(err error) error {
	switch {
	case errors.IsAppError(err):
		return err
	case stderrors.Is(err, core.ErrColumn), stderrors.Is(err, core.ErrRoles),
		stderrors.Is(err, core.ErrTooFewSets):
		return errors.WithCode(errors.CodeConfigInvalid, err)
	case stderrors.Is(err, core.ErrEmptyDataset):
		return errors.WithCode(errors.CodeInputError, err)
	default:
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
}
