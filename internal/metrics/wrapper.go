package metrics

// Wrapper exposes the metrics through plain methods so domain packages can
// accept a small tracker interface instead of importing prometheus. It
// satisfies ensemble.Tracker, ensemble.EvalTracker, and stacking.Tracker.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) VotePredictionsInc() { w.m.VotePredictions.Inc() }
func (w *Wrapper) VoteTiesInc()        { w.m.VoteTies.Inc() }
func (w *Wrapper) MemberErrorsInc()    { w.m.MemberErrors.Inc() }

func (w *Wrapper) EnsembleSizeSet(n float64) { w.m.EnsembleSize.Set(n) }

func (w *Wrapper) EpisodesEvaluatedInc()          { w.m.EpisodesEvaluated.Inc() }
func (w *Wrapper) EpisodeRewardObserve(r float64) { w.m.EpisodeReward.Observe(r) }

func (w *Wrapper) MetaPredictionsInc()          { w.m.MetaPredictions.Inc() }
func (w *Wrapper) MetaFeatureRowsAdd(n float64) { w.m.MetaFeatureRows.Add(n) }

func (w *Wrapper) FitDurationObserve(seconds float64) { w.m.FitDuration.Observe(seconds) }
func (w *Wrapper) TestAccuracySet(a float64)          { w.m.TestAccuracy.Set(a) }
