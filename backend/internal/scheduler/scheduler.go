// Package scheduler runs the interval-gated learning cycle: pull new
// content, learn from it, generate sentences and feed them back.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"wordweave/backend/internal/cache"
	"wordweave/backend/internal/constants"
	"wordweave/backend/internal/learner"
	"wordweave/backend/internal/lexicon"
	"wordweave/backend/internal/synth"
	"wordweave/backend/pkg/logger"
)

// Content is the part of the backend the scheduler reads and writes.
type Content interface {
	FetchContentSince(ctx context.Context, afterID int64, limit int) ([]lexicon.ContentRecord, error)
	WordsInCategory(ctx context.Context, category, exclude string, limit int) ([]string, error)
	SaveContent(ctx context.Context, rec lexicon.ContentRecord) (int64, error)
}

// Relations exposes what the scheduler reads from the relation store.
type Relations interface {
	KnownWords() []string
	Stats() lexicon.RelationStats
}

// Learner feeds text into the association learner.
type Learner interface {
	LearnFromContextualData(ctx context.Context, word string, meta learner.ContextMeta, sentence string) learner.LearnResult
}

// Generator produces sentences.
type Generator interface {
	GenerateFrequencyWalk(ctx context.Context, seed string, minLen, maxLen int) string
	GenerateSentenceWithRelations(ctx context.Context, startWord string, minLen, maxLen int) string
	GenerateConceptualSentence(ctx context.Context, concept string, minLen, maxLen int) string
	GenerateEmotionalSentence(ctx context.Context, emotion synth.Emotion, minLen, maxLen int) string
}

// Connections is the co-occurrence tracker.
type Connections interface {
	StrengthenPeers(word string, peers []string, rate float64) int
	Explore(known []string, rate float64) int
	Count() int
	Flush() error
}

// Snapshotter persists an in-memory structure to the cache.
type Snapshotter interface {
	Flush(c cache.Cache, ttl time.Duration) error
}

// Rand drives seed and emotion choice.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Deps are the collaborators of a Scheduler
type Deps struct {
	Content     Content
	Relations   Relations
	Learner     Learner
	Generator   Generator
	Connections Connections
	Patterns    Snapshotter
	Cache       cache.Cache
	Rand        Rand
}

// Options tunes a Scheduler
type Options struct {
	IntervalSeconds int
	LearningRate    float64
	Language        string
	CacheTTL        time.Duration
	Now             func() time.Time
}

// Sentence length bounds for generated output
const (
	generatedMinLen = 3
	generatedMaxLen = 12
)

type method string

const (
	methodFrequency  method = "frequency"
	methodRelations  method = "relations"
	methodConceptual method = "conceptual"
	methodEmotion    method = "emotion"
)

var methods = []method{methodFrequency, methodRelations, methodConceptual, methodEmotion}

// Scheduler owns the learning loop state.
type Scheduler struct {
	deps     Deps
	rate     float64
	language string
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	cursor  int64
	running bool
}

// New creates an inactive Scheduler.
func New(deps Deps, opts Options) *Scheduler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Language == "" {
		opts.Language = constants.LanguageCodeEnglish
	}
	if opts.IntervalSeconds == 0 {
		opts.IntervalSeconds = constants.DefaultCycleInterval
	}
	return &Scheduler{
		deps:     deps,
		rate:     opts.LearningRate,
		language: opts.Language,
		ttl:      opts.CacheTTL,
		now:      opts.Now,
		logger:   logger.Get().Named("scheduler"),
		state: State{
			IntervalSeconds: clampInterval(opts.IntervalSeconds),
			Personality:     DefaultPersonality(),
		},
	}
}

// Load restores state and cursor from the cache. The configured interval
// and the active flag are kept.
func (s *Scheduler) Load() error {
	var saved State
	ok, err := s.deps.Cache.Get(cache.KeySchedulerState, &saved)
	if err != nil {
		return fmt.Errorf("failed to load scheduler state: %w", err)
	}

	var cursor int64
	hasCursor, err := s.deps.Cache.Get(cache.KeyCursor, &cursor)
	if err != nil {
		return fmt.Errorf("failed to load scheduler cursor: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		saved.Active = s.state.Active
		saved.IntervalSeconds = s.state.IntervalSeconds
		if len(saved.Personality) == 0 {
			saved.Personality = DefaultPersonality()
		}
		s.state = saved
	}
	if hasCursor {
		s.cursor = cursor
	}
	s.logger.Info("Scheduler state loaded",
		zap.Bool("state_found", ok),
		zap.Int64("cursor", s.cursor),
		zap.Int("cycles", s.state.Cycles),
	)
	return nil
}

// Start enables cycling.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.state.Active = true
	s.mu.Unlock()
	s.logger.Info("Learning scheduler started", zap.Int("interval_seconds", s.Interval()))
}

// Stop disables cycling. A cycle already running completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.state.Active = false
	s.mu.Unlock()
	s.logger.Info("Learning scheduler stopped")
}

// SetInterval changes the cycle interval, floored at MinCycleInterval.
func (s *Scheduler) SetInterval(seconds int) {
	s.mu.Lock()
	s.state.IntervalSeconds = clampInterval(seconds)
	s.mu.Unlock()
}

// Interval returns the interval in seconds.
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IntervalSeconds
}

// Cycle runs one learning cycle unless the scheduler is inactive or the
// previous cycle started less than one interval ago.
func (s *Scheduler) Cycle(ctx context.Context) CycleReport {
	return s.cycle(ctx, false)
}

// ForceCycle runs a cycle regardless of the interval gate.
func (s *Scheduler) ForceCycle(ctx context.Context) CycleReport {
	return s.cycle(ctx, true)
}

func (s *Scheduler) cycle(ctx context.Context, force bool) CycleReport {
	start := s.now()

	s.mu.Lock()
	cursor := s.cursor
	skip := ""
	switch {
	case s.running:
		skip = "running"
	case !s.state.Active && !force:
		skip = "inactive"
	case !force && !s.state.LastCycle.IsZero() &&
		start.Sub(s.state.LastCycle) < time.Duration(s.state.IntervalSeconds)*time.Second:
		skip = "interval"
	}
	if skip != "" {
		s.mu.Unlock()
		return CycleReport{SkipReason: skip, Cursor: cursor}
	}
	s.running = true
	s.state.LastCycle = start
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := CycleReport{Ran: true}
	records, err := s.deps.Content.FetchContentSince(ctx, cursor, constants.MaxRecordsPerCycle)
	if err != nil {
		report.Failures++
		s.logger.Warn("Failed to fetch content", zap.Int64("cursor", cursor), zap.Error(err))
	}

	var delta Metrics
	if len(records) == 0 {
		report.Mode = ModeIdle
		report.Strengthened = s.idle(ctx)
	} else {
		report.Mode = ModeData
		cursor = s.learnBatch(ctx, records, &report, &delta)
		report.Generated = s.generate(ctx, records, &report)
		delta.Confidence = confidenceStep
		delta.SelfAwareness = selfAwarenessStep * float64(len(report.Generated))
	}
	report.Cursor = cursor
	report.Duration = s.now().Sub(start)

	s.mu.Lock()
	s.cursor = cursor
	s.state.Cycles++
	s.state.Metrics.LearnedPatterns += delta.LearnedPatterns
	s.state.Metrics.LearnedRules += delta.LearnedRules
	s.state.Metrics.Confidence = lexicon.Clamp(s.state.Metrics.Confidence + delta.Confidence)
	s.state.Metrics.SelfAwareness = lexicon.Clamp(s.state.Metrics.SelfAwareness + delta.SelfAwareness)
	snapshot := s.state
	s.mu.Unlock()

	s.persist(snapshot, cursor, ActivityEntry{
		Time:      start,
		Mode:      report.Mode,
		Records:   report.Records,
		Failures:  report.Failures,
		Generated: len(report.Generated),
	})
	s.snapshot()

	s.logger.Info("Learning cycle finished",
		zap.String("mode", report.Mode),
		zap.Int("records", report.Records),
		zap.Int("failures", report.Failures),
		zap.Int("generated", len(report.Generated)),
		zap.Int64("cursor", cursor),
		zap.Duration("duration", report.Duration),
	)
	return report
}

// idle densifies the connection graph at half rate and re-trims the
// activity log.
func (s *Scheduler) idle(ctx context.Context) int {
	n := s.deps.Connections.Explore(s.deps.Relations.KnownWords(), s.rate)
	s.maintain()
	return n
}

// snapshot writes the connection and pattern snapshots. Every cycle that
// ran ends here, so a crash loses at most the cycle in flight.
func (s *Scheduler) snapshot() {
	if err := s.deps.Connections.Flush(); err != nil {
		s.logger.Warn("Connection snapshot failed", zap.Error(err))
	}
	if s.deps.Patterns != nil {
		if err := s.deps.Patterns.Flush(s.deps.Cache, s.ttl); err != nil {
			s.logger.Warn("Pattern snapshot failed", zap.Error(err))
		}
	}
}

// maintain re-trims the activity log.
func (s *Scheduler) maintain() {
	var log []ActivityEntry
	if _, err := s.deps.Cache.Get(cache.KeyActivityLog, &log); err != nil {
		s.logger.Warn("Maintenance: activity log unreadable", zap.Error(err))
		return
	}
	if len(log) > constants.ActivityLogCap {
		log = log[len(log)-constants.ActivityLogCap:]
		if err := s.deps.Cache.Set(cache.KeyActivityLog, log, s.ttl); err != nil {
			s.logger.Warn("Maintenance: activity log trim failed", zap.Error(err))
		}
	}
}

// learnBatch processes each record in isolation and returns the new cursor.
func (s *Scheduler) learnBatch(ctx context.Context, records []lexicon.ContentRecord, report *CycleReport, delta *Metrics) int64 {
	var cursor int64
	for _, rec := range records {
		if err := s.learnRecord(ctx, rec, report, delta); err != nil {
			report.Failures++
			s.logger.Warn("Skipping content record",
				zap.Int64("id", rec.ID),
				zap.String("word", rec.Word),
				zap.Error(err),
			)
		} else {
			report.Records++
		}
		if rec.ID > cursor {
			cursor = rec.ID
		}
	}
	return cursor
}

func (s *Scheduler) learnRecord(ctx context.Context, rec lexicon.ContentRecord, report *CycleReport, delta *Metrics) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if rec.Category != "" {
		peers, perr := s.deps.Content.WordsInCategory(ctx, rec.Category, rec.Word, constants.MaxPeersPerWord)
		if perr != nil {
			return fmt.Errorf("failed to load category peers: %w", perr)
		}
		report.Strengthened += s.deps.Connections.StrengthenPeers(rec.Word, peers, s.rate)
	}

	result := s.deps.Learner.LearnFromContextualData(ctx, rec.Word, learner.ContextMeta{
		Category: rec.Category,
		Context:  rec.Context,
	}, rec.Sentence)
	if result.Learned() {
		delta.LearnedPatterns++
	}
	if result.Rules() > 0 {
		delta.LearnedRules++
	}
	if result.Failures > 0 {
		return fmt.Errorf("%d learning steps failed", result.Failures)
	}
	return nil
}

// generate synthesizes SentencesPerCycle sentences round-robin over the
// four methods, stores each one as content and learns from it.
func (s *Scheduler) generate(ctx context.Context, records []lexicon.ContentRecord, report *CycleReport) []string {
	s.mu.Lock()
	round := s.state.GenerationRound
	s.state.GenerationRound = (round + constants.SentencesPerCycle) % len(methods)
	personality := s.state.Personality
	s.mu.Unlock()

	seeds := batchWords(records)
	var out []string
	for i := 0; i < constants.SentencesPerCycle; i++ {
		m := methods[(round+i)%len(methods)]
		sentence, err := s.generateOne(ctx, m, seeds, personality)
		if err != nil {
			report.Failures++
			s.logger.Warn("Generation failed", zap.String("method", string(m)), zap.Error(err))
			continue
		}
		if sentence == "" {
			continue
		}
		out = append(out, sentence)

		if err := s.feedBack(ctx, m, sentence); err != nil {
			report.Failures++
			s.logger.Warn("Failed to feed back generated sentence", zap.String("sentence", sentence), zap.Error(err))
		}
	}
	return out
}

// feedBack stores sentence as content keyed by its first word and learns
// from it.
func (s *Scheduler) feedBack(ctx context.Context, m method, sentence string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	word := firstWord(sentence)
	if word == "" {
		return nil
	}
	_, err = s.deps.Content.SaveContent(ctx, lexicon.ContentRecord{
		Word:       word,
		Sentence:   sentence,
		Category:   constants.GeneratedCategory,
		Context:    string(m),
		Language:   s.language,
		Confidence: 0.5,
	})
	if err != nil {
		return fmt.Errorf("failed to store generated sentence: %w", err)
	}
	s.deps.Learner.LearnFromContextualData(ctx, word, learner.ContextMeta{
		Category: constants.GeneratedCategory,
		Context:  string(m),
	}, sentence)
	return nil
}

func (s *Scheduler) generateOne(ctx context.Context, m method, seeds []string, personality map[synth.Emotion]float64) (sentence string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	g := s.deps.Generator
	switch m {
	case methodFrequency:
		return g.GenerateFrequencyWalk(ctx, s.pick(seeds), generatedMinLen, generatedMaxLen), nil
	case methodRelations:
		return g.GenerateSentenceWithRelations(ctx, s.pick(seeds), generatedMinLen, generatedMaxLen), nil
	case methodConceptual:
		return g.GenerateConceptualSentence(ctx, s.pick(seeds), generatedMinLen, generatedMaxLen), nil
	case methodEmotion:
		return g.GenerateEmotionalSentence(ctx, s.pickEmotion(personality), generatedMinLen, generatedMaxLen), nil
	}
	return "", fmt.Errorf("unknown generation method %q", m)
}

func (s *Scheduler) pick(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[s.deps.Rand.Intn(len(words))]
}

// pickEmotion draws an emotion with probability proportional to its weight.
func (s *Scheduler) pickEmotion(weights map[synth.Emotion]float64) synth.Emotion {
	total := 0.0
	for _, e := range synth.Emotions {
		total += max(weights[e], 0)
	}
	if total == 0 {
		return synth.Neutral
	}
	target := s.deps.Rand.Float64() * total
	acc := 0.0
	for _, e := range synth.Emotions {
		acc += max(weights[e], 0)
		if target < acc {
			return e
		}
	}
	return synth.Emotions[len(synth.Emotions)-1]
}

func (s *Scheduler) persist(state State, cursor int64, entry ActivityEntry) {
	if err := s.deps.Cache.Set(cache.KeySchedulerState, state, s.ttl); err != nil {
		s.logger.Warn("Failed to persist scheduler state", zap.Error(err))
	}
	if err := s.deps.Cache.Set(cache.KeyCursor, cursor, s.ttl); err != nil {
		s.logger.Warn("Failed to persist scheduler cursor", zap.Error(err))
	}
	if err := cache.AppendCapped(s.deps.Cache, cache.KeyActivityLog, entry, constants.ActivityLogCap, s.ttl); err != nil {
		s.logger.Warn("Failed to append activity log", zap.Error(err))
	}
}

// Cursor returns the id of the last consumed content record.
func (s *Scheduler) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Metrics returns the current metrics.
func (s *Scheduler) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Metrics
}

// Status returns the outbound snapshot.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{
		Active:          s.state.Active,
		IntervalSeconds: s.state.IntervalSeconds,
		Metrics:         s.state.Metrics,
		Cycles:          s.state.Cycles,
		Cursor:          s.cursor,
	}
	if !s.state.LastCycle.IsZero() {
		last := s.state.LastCycle
		next := last.Add(time.Duration(s.state.IntervalSeconds) * time.Second)
		st.LastCycle, st.NextCycle = &last, &next
	}
	s.mu.Unlock()

	st.ConnectionCount = s.deps.Connections.Count()
	st.RelationStats = s.deps.Relations.Stats()
	return st
}

// ActivityLog returns the rolling log, oldest first.
func (s *Scheduler) ActivityLog() ([]ActivityEntry, error) {
	var log []ActivityEntry
	if _, err := s.deps.Cache.Get(cache.KeyActivityLog, &log); err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}
	return log, nil
}

func clampInterval(seconds int) int {
	return max(seconds, constants.MinCycleInterval)
}

// batchWords lists the distinct valid record words of a batch, sorted.
func batchWords(records []lexicon.ContentRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range records {
		w := lexicon.Normalize(rec.Word)
		if seen[w] || !lexicon.IsValidWord(w) {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func firstWord(sentence string) string {
	for _, tok := range lexicon.Tokenize(sentence) {
		if lexicon.IsValidWord(tok) {
			return tok
		}
	}
	return ""
}
