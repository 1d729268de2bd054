// Package pipeline wires the loader, reconciler, aggregator, joiner, scorer,
// renderer and exporter into one batch run.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/housing-transit/internal/config"
	"github.com/sells-group/housing-transit/internal/export"
	"github.com/sells-group/housing-transit/internal/loader"
	"github.com/sells-group/housing-transit/internal/model"
	"github.com/sells-group/housing-transit/internal/overrides"
	"github.com/sells-group/housing-transit/internal/reconcile"
	"github.com/sells-group/housing-transit/internal/render"
	"github.com/sells-group/housing-transit/internal/scorer"
	"github.com/sells-group/housing-transit/internal/spatial"
	"github.com/sells-group/housing-transit/internal/transit"
)

// Pipeline runs the housing-transit stages against one configuration.
type Pipeline struct {
	cfg    *config.Config
	tables *overrides.Tables
}

// New creates a Pipeline that cleans and aggregates with the given override
// tables.
func New(cfg *config.Config, tables *overrides.Tables) *Pipeline {
	return &Pipeline{cfg: cfg, tables: tables}
}

// Inputs holds the three loaded datasets.
type Inputs struct {
	Housing []model.HousingRecord
	Hoods   []model.Neighborhood
	Stops   []model.RailStop
}

// Phase records how long one stage took.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Reconciled is the output of the reconcile stage.
type Reconciled struct {
	Records []model.HousingRecord
	Counts  map[string]int
	Before  reconcile.Mismatch
	After   reconcile.Mismatch
}

// Result is everything a run produced.
type Result struct {
	Inputs
	Reconciled
	Stations   []model.Station
	Points     map[int]model.Point
	Assignment spatial.Assignment
	Scores     []model.ScoredNeighborhood // boundary order
	Ranked     []model.ScoredNeighborhood
	Summary    scorer.Summary
	Maps       []string
	Exports    []string
	Phases     []Phase
}

// Top returns the configured number of highest-scoring neighborhoods.
func (r *Result) Top(n int) []model.ScoredNeighborhood {
	return scorer.Top(r.Ranked, n)
}

// Load reads the three inputs concurrently. The first failure cancels the
// others.
func (p *Pipeline) Load(ctx context.Context) (*Inputs, error) {
	in := &Inputs{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := loader.LoadHousing(gCtx, p.cfg.Input.HousingPath())
		if err != nil {
			return err
		}
		in.Housing = recs
		return nil
	})
	g.Go(func() error {
		hoods, err := loader.LoadBoundaries(gCtx, p.cfg.Input.BoundariesPath(), p.cfg.Input.NameField)
		if err != nil {
			return err
		}
		in.Hoods = hoods
		return nil
	})
	g.Go(func() error {
		stops, err := loader.LoadStops(gCtx, p.cfg.Input.StopsPath())
		if err != nil {
			return err
		}
		in.Stops = stops
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: load inputs")
	}

	zap.L().Info("pipeline: inputs loaded",
		zap.Int("housing_records", len(in.Housing)),
		zap.Int("neighborhoods", len(in.Hoods)),
		zap.Int("stops", len(in.Stops)),
	)
	return in, nil
}

// Reconcile cleans the housing records and reports join residues before and
// after cleaning.
func (p *Pipeline) Reconcile(in *Inputs) Reconciled {
	log := zap.L().With(zap.String("component", "pipeline"))

	before := reconcile.Diagnose(reconcile.CountUnits(in.Housing), in.Hoods)
	logMismatch(log, "before cleaning", before)

	records := reconcile.New(p.tables).Clean(in.Housing)
	counts := reconcile.CountUnits(records)
	after := reconcile.Diagnose(counts, in.Hoods)
	logMismatch(log, "after cleaning", after)

	return Reconciled{Records: records, Counts: counts, Before: before, After: after}
}

func logMismatch(log *zap.Logger, stage string, m reconcile.Mismatch) {
	names := make([]string, len(m.RightOnly))
	for i, o := range m.RightOnly {
		names[i] = o.Name
	}
	fields := []zap.Field{
		zap.String("stage", stage),
		zap.Int("orphans", len(m.RightOnly)),
		zap.Int("orphan_units", m.OrphanUnits()),
		zap.Strings("orphan_areas", names),
		zap.Int("neighborhoods_without_housing", len(m.LeftOnly)),
	}
	if len(m.RightOnly) > 0 {
		log.Warn("housing community areas without a neighborhood", fields...)
		return
	}
	log.Info("housing community areas reconciled", fields...)
}

// Stations aggregates connectivity per physical station.
func (p *Pipeline) Stations(in *Inputs) ([]model.Station, error) {
	return transit.Aggregate(in.Stops, p.tables)
}

// Score runs every stage up to ranking without writing any files.
func (p *Pipeline) Score(ctx context.Context) (*Result, error) {
	res := &Result{}
	track := func(name string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return eris.Wrapf(err, "pipeline: %s", name)
		}
		start := time.Now()
		err := fn()
		d := time.Since(start)
		res.Phases = append(res.Phases, Phase{Name: name, Duration: d})
		if err != nil {
			zap.L().Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Duration("duration", d),
				zap.Error(err),
			)
			return err
		}
		zap.L().Debug("pipeline: phase complete", zap.String("phase", name), zap.Duration("duration", d))
		return nil
	}

	if err := track("load", func() error {
		in, err := p.Load(ctx)
		if err != nil {
			return err
		}
		res.Inputs = *in
		return nil
	}); err != nil {
		return nil, err
	}

	if err := track("reconcile", func() error {
		res.Reconciled = p.Reconcile(&res.Inputs)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := track("aggregate", func() error {
		stations, err := p.Stations(&res.Inputs)
		if err != nil {
			return eris.Wrap(err, "pipeline: aggregate stations")
		}
		res.Stations = stations
		res.Points = transit.DedupeLocations(transit.DropEndpoints(res.Stops, p.tables.EndpointSet()))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := track("join", func() error {
		res.Assignment = spatial.Join(spatial.NewIndex(res.Hoods), res.Stations, res.Points)
		res.Scores = scorer.Build(res.Hoods, res.Counts, res.Assignment)
		if len(res.Scores) == 0 {
			return eris.New("pipeline: no neighborhoods scored")
		}
		res.Ranked = scorer.Rank(res.Scores)
		res.Summary = scorer.Summarize(res.Scores)
		return nil
	}); err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: scored",
		zap.Int("neighborhoods", len(res.Scores)),
		zap.Int("stations", len(res.Stations)),
		zap.Int("stations_outside", len(res.Assignment.Outside)),
	)
	return res, nil
}

// Run executes the full pipeline: score, render the three maps and write the
// configured exports.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.Score(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: cancelled")
	}

	files := render.Files{
		Dir:        p.cfg.Output.Dir,
		HousingMap: p.cfg.Output.HousingMap,
		TransitMap: p.cfg.Output.TransitMap,
		ScoreMap:   p.cfg.Output.ScoreMap,
	}
	start := time.Now()
	res.Maps, err = render.All(files, res.Scores, res.Stations)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: render")
	}
	res.Phases = append(res.Phases, Phase{Name: "render", Duration: time.Since(start)})

	start = time.Now()
	res.Exports, err = export.Write(ctx, p.cfg.Output.Dir, p.cfg.Export.Formats, export.Input{
		Scores:   res.Ranked,
		TopN:     p.cfg.Scoring.TopN,
		Stations: res.Stations,
		Orphans:  res.After.RightOnly,
		Summary:  res.Summary,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: export")
	}
	res.Phases = append(res.Phases, Phase{Name: "export", Duration: time.Since(start)})

	zap.L().Info("pipeline: run complete",
		zap.Strings("maps", res.Maps),
		zap.Strings("exports", res.Exports),
	)
	return res, nil
}
