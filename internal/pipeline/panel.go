package pipeline

import (
	"github.com/sirupsen/logrus"

	"fpl-points-lab/internal/features"
	"fpl-points-lab/internal/panel"
	"fpl-points-lab/internal/storage"
	"fpl-points-lab/internal/targets"
)

// PanelPipeline runs the panel stages in order: build, features, targets.
type PanelPipeline struct {
	builder *panel.Builder
	engine  *features.Engine
	shifter *targets.Shifter
}

// NewPanelPipeline creates the stage chain for the given windows.
func NewPanelPipeline(windows []int, logger logrus.FieldLogger, opts ...features.Option) (*PanelPipeline, error) {
	engine, err := features.NewEngine(windows, logger, opts...)
	if err != nil {
		return nil, err
	}
	return &PanelPipeline{
		builder: panel.NewBuilder(logger),
		engine:  engine,
		shifter: targets.NewShifter(logger),
	}, nil
}

// Windows returns the feature windows, ascending.
func (pp *PanelPipeline) Windows() []int {
	return pp.engine.Windows()
}

// Build produces a full panel at StageTargets. Schema and leakage errors
// abort; missing data is recorded on the panel.
func (pp *PanelPipeline) Build(raw *storage.SeasonRaw) (*panel.Panel, error) {
	p, err := pp.builder.Build(raw)
	if err != nil {
		return nil, err
	}
	if err := pp.engine.Apply(p); err != nil {
		return nil, err
	}
	if err := pp.shifter.Apply(p); err != nil {
		return nil, err
	}
	return p, nil
}
