package fusion

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// CycleState tracks the progress of the current fusion cycle.
type CycleState int32

const (
	// AwaitingInputs means no cycle is in flight.
	AwaitingInputs CycleState = iota
	// Extracting means detections are being converted into bearings.
	Extracting
	// Normalizing means the raw scan is being filtered and sorted.
	Normalizing
	// Associating means bearings are being matched against valid points.
	Associating
	// Aggregated means the cycle's outputs have been published.
	Aggregated
)

func (s CycleState) String() string {
	switch s {
	case AwaitingInputs:
		return "awaiting_inputs"
	case Extracting:
		return "extracting"
	case Normalizing:
		return "normalizing"
	case Associating:
		return "associating"
	case Aggregated:
		return "aggregated"
	}
	return "unknown"
}

// Settings holds the validated, immutable configuration of an Engine.
type Settings struct {
	FrameWidthPx int
	ToleranceDeg float64
	Filter       ScanFilter
}

// Engine runs fusion cycles over the most recent camera frame and range scan.
// The two producers update their buffers at their own rates through
// UpdateFrame and UpdateScan; a cycle always associates the latest available
// detection set against the latest available scan and never blocks either
// producer on the other.
type Engine struct {
	settings Settings

	paramsMu sync.RWMutex
	params   Params

	frames snapshot[Frame]
	scans  snapshot[Scan]

	state atomic.Int32

	outMu     sync.RWMutex
	published bool
	result    Result
	stats     CycleStats
}

// NewEngine validates the settings and calibration and returns an engine
// ready to accept producer updates. Malformed configuration is fatal here,
// never silently defaulted.
func NewEngine(settings Settings, params Params) (*Engine, error) {
	if settings.FrameWidthPx <= 0 {
		return nil, errors.Wrapf(ErrInvalidFrameWidth, "got %d", settings.FrameWidthPx)
	}
	if settings.ToleranceDeg <= 0 {
		return nil, errors.Errorf("angular tolerance must be positive, got %v", settings.ToleranceDeg)
	}
	if settings.Filter.MinDistanceM >= settings.Filter.MaxDistanceM {
		return nil, errors.Errorf("min valid distance %v must be below max valid distance %v",
			settings.Filter.MinDistanceM, settings.Filter.MaxDistanceM)
	}
	if settings.Filter.UnitToMeters <= 0 {
		return nil, errors.Errorf("distance unit factor must be positive, got %v", settings.Filter.UnitToMeters)
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}
	return &Engine{settings: settings, params: params}, nil
}

func validateParams(params Params) error {
	if params.CameraFOVDeg <= 0 || params.CameraFOVDeg >= 360 {
		return errors.Errorf("camera fov must be in (0, 360) degrees, got %v", params.CameraFOVDeg)
	}
	return nil
}

// UpdateFrame atomically replaces the most recent detection set.
func (e *Engine) UpdateFrame(detections []Detection, t time.Time) {
	e.frames.store(Frame{Detections: detections, Time: t})
}

// UpdateScan atomically replaces the most recent raw scan.
func (e *Engine) UpdateScan(samples []RangeSample, t time.Time) {
	e.scans.store(Scan{Samples: samples, Time: t})
}

// Params returns the calibration currently in effect.
func (e *Engine) Params() Params {
	e.paramsMu.RLock()
	defer e.paramsMu.RUnlock()
	return e.params
}

// SetParams atomically replaces the calibration. It takes effect on the next
// cycle; a running cycle keeps the parameters it started with.
func (e *Engine) SetParams(params Params) error {
	if err := validateParams(params); err != nil {
		return err
	}
	e.paramsMu.Lock()
	e.params = params
	e.paramsMu.Unlock()
	return nil
}

// State reports the stage the current cycle is in.
func (e *Engine) State() CycleState {
	return CycleState(e.state.Load())
}

func (e *Engine) setState(s CycleState) {
	e.state.Store(int32(s))
}

// RunCycle executes one fusion cycle against the latest snapshots and
// publishes its outputs. If ctx is canceled mid-cycle the cycle is abandoned
// and nothing is published: either a full Result/CycleStats pair comes out,
// or none.
func (e *Engine) RunCycle(ctx context.Context) (Result, CycleStats, error) {
	start := time.Now().UTC()
	params := e.Params()
	frame, frameOK := e.frames.load()
	scan, scanOK := e.scans.load()

	// No frame, or a frame with no detections, means no fusion is possible
	// this cycle. The cycle still publishes an empty result so throughput
	// stats stay observable while a source is down.
	if !frameOK || len(frame.Detections) == 0 {
		result, stats := Aggregate(nil, start, time.Now().UTC())
		return e.publish(ctx, result, stats)
	}

	e.setState(Extracting)
	bearings, err := ExtractBearings(frame.Detections, e.settings.FrameWidthPx, params.CameraFOVDeg)
	if err != nil {
		e.setState(AwaitingInputs)
		return Result{}, CycleStats{}, err
	}
	if err := e.checkCancel(ctx); err != nil {
		return Result{}, CycleStats{}, err
	}

	e.setState(Normalizing)
	var points []ValidPoint
	if scanOK {
		points = NormalizeScan(scan.Samples, e.settings.Filter)
	}
	if err := e.checkCancel(ctx); err != nil {
		return Result{}, CycleStats{}, err
	}

	e.setState(Associating)
	associations := Associate(bearings, points, params.Transform(),
		e.settings.ToleranceDeg, e.settings.Filter.MinDistanceM, e.settings.Filter.MaxDistanceM)
	if err := e.checkCancel(ctx); err != nil {
		return Result{}, CycleStats{}, err
	}

	result, stats := Aggregate(associations, start, time.Now().UTC())
	return e.publish(ctx, result, stats)
}

func (e *Engine) checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		e.setState(AwaitingInputs)
		return err
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, result Result, stats CycleStats) (Result, CycleStats, error) {
	if err := e.checkCancel(ctx); err != nil {
		return Result{}, CycleStats{}, err
	}
	e.outMu.Lock()
	e.result = result
	e.stats = stats
	e.published = true
	e.outMu.Unlock()
	e.setState(Aggregated)
	return result, stats, nil
}

// Latest returns the most recently published cycle outputs. The bool reports
// whether any cycle has completed yet.
func (e *Engine) Latest() (Result, CycleStats, bool) {
	e.outMu.RLock()
	defer e.outMu.RUnlock()
	return e.result, e.stats, e.published
}
