package pipeline

import (
	"context"
	"log/slog"
)

// Pipeline executes a sequence of steps in a job, checkpointing the ledger
// before, during and after every step.
type Pipeline struct {
	ctrl       *ControlData
	logger     *slog.Logger
	ledgerPath string
	steps      []Step
}

func New(ctrl *ControlData, logger *slog.Logger, ledgerPath string) *Pipeline {
	return &Pipeline{ctrl: ctrl, logger: logger, ledgerPath: ledgerPath}
}

// AddStep appends a step. A step with no source key reads the previous
// step's outputs.
func (p *Pipeline) AddStep(step Step) *Pipeline {
	if step == nil {
		return p
	}
	if len(p.steps) > 0 && step.SourceKey() == "" {
		step.SetSourceKey(UnderscoreName(p.steps[len(p.steps)-1].Name()))
	}
	p.steps = append(p.steps, step)
	return p
}

func (p *Pipeline) AddSteps(steps ...Step) *Pipeline {
	for _, s := range steps {
		p.AddStep(s)
	}
	return p
}

// Run executes the steps in order. The first failing step stops the run;
// the ledger end section records the failure either way, so a later
// invocation can resume from the completed work.
func (p *Pipeline) Run(ctx context.Context) error {
	var runErr error
	for _, step := range p.steps {
		if runErr = p.runStep(ctx, step); runErr != nil {
			break
		}
	}
	p.writeEnd(runErr)
	return runErr
}

func (p *Pipeline) runStep(ctx context.Context, step Step) (err error) {
	name := UnderscoreName(step.Name())
	if werr := p.writeStart(name); werr != nil {
		return werr
	}

	acc := &Accumulator{}
	acc.FlushFunc = func() error { return p.writeControl(name, acc) }
	p.logger.Debug("step start", "step", step.Name(), "source", step.SourceKey())
	// The progress flush must happen whether the step succeeds or fails,
	// so partial work is never lost from the ledger.
	defer func() {
		if werr := p.writeControl(name, acc); werr != nil && err == nil {
			err = werr
		}
	}()

	if err = step.Run(ctx, p.ctrl, p.logger, acc); err != nil {
		p.logger.Error("step failed", "step", step.Name(), "error", err)
		return err
	}
	p.logger.Debug("step end", "step", step.Name(),
		"processed", len(acc.FilesProcessed), "output", len(acc.FilesOutput))
	return nil
}

// writeStart records the step in the job's step list before any processing.
func (p *Pipeline) writeStart(stepName string) error {
	found := false
	for _, s := range p.ctrl.Job.Steps {
		if s == stepName {
			found = true
			break
		}
	}
	if !found {
		p.ctrl.Job.Steps = append(p.ctrl.Job.Steps, stepName)
	}
	return p.ctrl.Save(p.ledgerPath)
}

// writeControl folds a step's accumulated progress into the ledger:
// consumed inputs flip to processed and the step's output list is replaced.
func (p *Pipeline) writeControl(stepName string, acc *Accumulator) error {
	processed := make(map[string]string, len(acc.FilesProcessed))
	for _, r := range acc.FilesProcessed {
		processed[r.Path] = r.Time
	}
	for i := range p.ctrl.Files {
		if t, ok := processed[p.ctrl.Files[i].Path]; ok {
			p.ctrl.Files[i].Status = StatusProcessed
			p.ctrl.Files[i].Time = t
		}
	}
	if p.ctrl.StepOutputs == nil {
		p.ctrl.StepOutputs = make(map[string][]FileRecord)
	}
	p.ctrl.StepOutputs[stepName] = acc.FilesOutput
	return p.ctrl.Save(p.ledgerPath)
}

// writeEnd records the job outcome. Written exactly once per run.
func (p *Pipeline) writeEnd(runErr error) {
	p.ctrl.Job.End = NowISO()
	if runErr != nil {
		p.ctrl.Job.Status = StatusError
		p.ctrl.Job.Message = runErr.Error()
	} else {
		p.ctrl.Job.Status = StatusProcessed
	}
	if err := p.ctrl.Save(p.ledgerPath); err != nil {
		p.logger.Error("write job end", "path", p.ledgerPath, "error", err)
	}
}
