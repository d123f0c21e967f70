package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/decision"
	"github.com/wonny/argus/v1/internal/levels"
	"github.com/wonny/argus/v1/internal/playbook"
	"github.com/wonny/argus/v1/internal/rings"
	"github.com/wonny/argus/v1/pkg/config"
	"github.com/wonny/argus/v1/pkg/logger"
	"github.com/wonny/argus/v1/pkg/redis"
)

// Profiles evaluated under each snapshot label.
var labelProfiles = map[string][]contracts.Profile{
	contracts.LabelIntraday: {contracts.ProfileScalp, contracts.ProfileIntraday},
	contracts.LabelSwing:    {contracts.ProfileSwing, contracts.ProfilePosition},
}

// ring lookback in bars on the setup timeframe
const candleLookback = 60

// Builder evaluates the active universe and publishes snapshots.
type Builder struct {
	universe  contracts.AssetUniverse
	candles   contracts.CandleSupplier
	events    contracts.EventSupplier
	bias      contracts.BiasSupplier
	sentiment contracts.SentimentSupplier
	playbooks *playbook.Registry
	repo      contracts.SnapshotRepository
	cache     *redis.Cache // nil when redis is disabled
	locks     LockStore
	cfg       config.EngineConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewBuilder wires a snapshot builder.
func NewBuilder(
	universe contracts.AssetUniverse,
	candles contracts.CandleSupplier,
	events contracts.EventSupplier,
	bias contracts.BiasSupplier,
	sentiment contracts.SentimentSupplier,
	playbooks *playbook.Registry,
	repo contracts.SnapshotRepository,
	cache *redis.Cache,
	locks LockStore,
	cfg config.EngineConfig,
	log *logger.Logger,
) *Builder {
	return &Builder{
		universe:  universe,
		candles:   candles,
		events:    events,
		bias:      bias,
		sentiment: sentiment,
		playbooks: playbooks,
		repo:      repo,
		cache:     cache,
		locks:     locks,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// BuildOptions tune one build call.
type BuildOptions struct {
	// Force rebuilds even when a snapshot already exists for the key.
	Force bool
	// Assets restricts the build to the listed asset IDs (empty = all).
	Assets []string
}

// Build evaluates every active asset for (date, label) and publishes
// the snapshot atomically. Idempotent: an existing snapshot is returned
// as-is unless Force is set. Concurrent builds of the same key fail
// fast with ErrBuildInProgress.
func (b *Builder) Build(ctx context.Context, date time.Time, label string, opts BuildOptions) (*contracts.Snapshot, error) {
	if !contracts.ValidLabel(label) {
		return nil, fmt.Errorf("unknown snapshot label %q", label)
	}
	date = date.UTC().Truncate(24 * time.Hour)
	key := contracts.SnapshotKey{Date: date, Label: label}

	if !opts.Force {
		if existing, err := b.repo.Get(ctx, date, label); err != nil {
			return nil, fmt.Errorf("check existing snapshot: %w", err)
		} else if existing != nil {
			b.log.WithField("key", key.String()).Info("Snapshot already exists, reusing")
			return existing, nil
		}
	}

	if !b.locks.TryAcquire(key.String()) {
		return nil, fmt.Errorf("%w: %s", ErrBuildInProgress, key.String())
	}
	defer b.locks.Release(key.String())

	assets, err := b.universe.ActiveAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active assets: %w", err)
	}
	assets = filterAssets(assets, opts.Assets)
	if len(assets) == 0 {
		return nil, fmt.Errorf("no active assets to evaluate for %s", key.String())
	}

	asOf := b.now().UTC()
	snap := &contracts.Snapshot{
		ID:            key.String(),
		Date:          date,
		Label:         label,
		EngineVersion: b.cfg.Version,
		GeneratedAt:   asOf,
		AssetsTotal:   len(assets),
	}

	// 자산별 평가는 워커 풀에서 병렬 실행, 실패는 자산 단위로 격리
	type assetResult struct {
		setups []contracts.Setup
		err    error
		asset  contracts.Asset
	}

	workers := b.cfg.BuildWorkers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan contracts.Asset)
	results := make(chan assetResult, len(assets))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for asset := range jobs {
				setups, err := b.evaluateAsset(ctx, snap, asset, asOf)
				results <- assetResult{setups: setups, err: err, asset: asset}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, a := range assets {
			select {
			case jobs <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			snap.AssetsFailed++
			b.log.WithError(res.err).WithField("symbol", res.asset.Symbol).
				Warn("⚠️ asset evaluation failed, continuing snapshot")
			continue
		}
		snap.Setups = append(snap.Setups, res.setups...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.repo.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("publish snapshot %s: %w", key.String(), err)
	}
	b.cacheLatest(ctx, snap)

	b.log.WithFields(map[string]interface{}{
		"key":           key.String(),
		"setups":        len(snap.Setups),
		"assets_total":  snap.AssetsTotal,
		"assets_failed": snap.AssetsFailed,
	}).Info("Snapshot published")
	return snap, nil
}

// evaluateAsset scores one asset across the label's profiles.
func (b *Builder) evaluateAsset(ctx context.Context, snap *contracts.Snapshot, asset contracts.Asset, asOf time.Time) ([]contracts.Setup, error) {
	pb, err := b.playbooks.Resolve(asset)
	if err != nil {
		return nil, fmt.Errorf("resolve playbook for %s: %w", asset.Symbol, err)
	}

	events, err := b.events.GetEvents(ctx, asOf.Add(-24*time.Hour), asOf.Add(72*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	var setups []contracts.Setup
	for _, profile := range labelProfiles[snap.Label] {
		s, err := b.evaluateProfile(ctx, snap, asset, pb, profile, events, asOf)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", profile, err)
		}
		setups = append(setups, *s)
	}
	return setups, nil
}

func (b *Builder) evaluateProfile(
	ctx context.Context,
	snap *contracts.Snapshot,
	asset contracts.Asset,
	pb *playbook.Playbook,
	profile contracts.Profile,
	events []contracts.Event,
	asOf time.Time,
) (*contracts.Setup, error) {
	tf := b.timeframeFor(profile)
	from := asOf.Add(-time.Duration(candleLookback) * tf.Duration())

	candles, err := b.candles.GetCandles(ctx, asset.ID, tf, from, asOf)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	intraday, err := b.candles.GetCandles(ctx, asset.ID, contracts.Timeframe15m, asOf.Add(-12*time.Hour), asOf)
	if err != nil {
		return nil, fmt.Errorf("load intraday candles: %w", err)
	}

	biasReading, err := b.bias.GetBias(ctx, asset.ID, tf, asOf)
	if err != nil {
		return nil, fmt.Errorf("load bias: %w", err)
	}
	sentimentReading, err := b.sentiment.GetSentiment(ctx, asset.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("load sentiment: %w", err)
	}

	dir := inferDirection(candles)
	before, after := eventWindowFor(profile)
	ringResult := rings.ComputeAll(rings.Input{
		Symbol:            asset.Symbol,
		Timeframe:         tf,
		Direction:         dir,
		Profile:           profile,
		Candles:           candles,
		Intraday:          intraday,
		Events:            events,
		Bias:              biasReading,
		Sentiment:         sentimentReading,
		AsOf:              asOf,
		EventWindowBefore: before,
		EventWindowAfter:  after,
	})
	_, flowMode, _ := rings.OrderflowScore(intraday)

	var lv contracts.Levels
	if dir == contracts.DirectionLong || dir == contracts.DirectionShort {
		lv, err = levels.Compute(dir, candles)
		if err != nil {
			b.log.WithError(err).WithField("symbol", asset.Symbol).Debug("no levels derived")
			lv = contracts.Levels{}
		}
	}

	stale := isStale(candles, tf, asOf)
	verdict := pb.Evaluate(playbook.GateContext{
		Direction: dir,
		Profile:   profile,
		Scores:    ringResult.Scores,
		Levels:    lv,
		FlowMode:  flowMode,
	})
	dec := decision.Derive(decision.Input{
		Verdict:   verdict,
		Direction: dir,
		Scores:    ringResult.Scores,
		RingNotes: ringResult.Notes,
		Levels:    lv,
		FlowMode:  flowMode,
		Stale:     stale,
	})

	return &contracts.Setup{
		ID:            asset.ID + "|" + string(profile),
		SnapshotID:    snap.ID,
		AssetID:       asset.ID,
		Symbol:        asset.Symbol,
		AssetClass:    asset.Class,
		Timeframe:     tf,
		Profile:       profile,
		Direction:     dir,
		Levels:        lv,
		Rings:         ringResult.Scores,
		RingNotes:     ringResult.Notes,
		PlaybookID:    verdict.PlaybookID,
		Grade:         verdict.Grade,
		Decision:      dec.Decision,
		BlockCategory: dec.Category,
		WatchSegment:  dec.WatchSegment,
		Rationale:     dec.Rationale,
		NoTradeReason: dec.NoTradeReason,
		Stale:         stale,
		GeneratedAt:   asOf,
	}, nil
}

// timeframeFor maps a profile to its evaluation timeframe. Shares the
// outcome window config so scoring and resolution read the same bars.
func (b *Builder) timeframeFor(profile contracts.Profile) contracts.Timeframe {
	w := b.cfg.OutcomeWindows
	switch profile {
	case contracts.ProfileScalp:
		return contracts.Timeframe(w.ScalpTimeframe)
	case contracts.ProfileIntraday:
		return contracts.Timeframe(w.IntradayTimeframe)
	case contracts.ProfileSwing:
		return contracts.Timeframe(w.SwingTimeframe)
	case contracts.ProfilePosition:
		return contracts.Timeframe(w.PositionTimeframe)
	}
	return contracts.Timeframe1D
}

// eventWindowFor bounds the event ring's relevance window per profile.
func eventWindowFor(profile contracts.Profile) (before, after time.Duration) {
	switch profile {
	case contracts.ProfileScalp, contracts.ProfileIntraday:
		return 30 * time.Minute, 6 * time.Hour
	case contracts.ProfileSwing, contracts.ProfilePosition:
		return 24 * time.Hour, 72 * time.Hour
	}
	return 6 * time.Hour, 24 * time.Hour
}

// inferDirection reads the recent tape: sustained closes above the
// lookback midpoint lean long, below lean short, otherwise neutral.
func inferDirection(candles []contracts.Candle) contracts.Direction {
	score, _ := rings.TrendScore(candles)
	switch {
	case score > 55:
		return contracts.DirectionLong
	case score < 45:
		return contracts.DirectionShort
	}
	return contracts.DirectionNeutral
}

// isStale flags data whose last bar is older than two bar intervals.
func isStale(candles []contracts.Candle, tf contracts.Timeframe, asOf time.Time) bool {
	if len(candles) == 0 {
		return true
	}
	last := candles[len(candles)-1].Timestamp
	return asOf.Sub(last) > 2*tf.Duration()
}

func filterAssets(all []contracts.Asset, only []string) []contracts.Asset {
	if len(only) == 0 {
		return all
	}
	want := make(map[string]bool, len(only))
	for _, id := range only {
		want[id] = true
	}
	var out []contracts.Asset
	for _, a := range all {
		if want[a.ID] || want[a.Symbol] {
			out = append(out, a)
		}
	}
	return out
}

// cacheLatest stores the freshest snapshot key per label; a cache miss
// is never an error for callers.
func (b *Builder) cacheLatest(ctx context.Context, snap *contracts.Snapshot) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Set(ctx, "latest:"+snap.Label, snap, b.cfg.SnapshotCacheTTL); err != nil {
		b.log.WithError(err).Warn("snapshot cache write failed")
	}
}
