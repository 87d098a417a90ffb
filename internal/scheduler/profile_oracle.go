package scheduler

// SimpleProfileOracle is the scheduler's default ProfileOracle
// implementation: a deterministic, dependency-free stand-in for a real
// per-GPU model profiling service. Tighter latency SLOs require smaller
// batches, which cost more per-request overhead, so the same request rate
// consumes proportionally more of a backend's declared capacity as the SLO
// tightens.
type SimpleProfileOracle struct {
	// BaselineSLOMillis is the SLO at which a request consumes exactly one
	// unit of declared capacity per unit RPS (no batching penalty).
	BaselineSLOMillis int
	// MaxBatchSize bounds the batch size derived for any instance.
	MaxBatchSize int
	// BytesPerRPS estimates memory footprint growth per unit RPS.
	BytesPerRPS uint64
}

// NewSimpleProfileOracle returns the oracle's default tuning.
func NewSimpleProfileOracle() *SimpleProfileOracle {
	return &SimpleProfileOracle{
		BaselineSLOMillis: 100,
		MaxBatchSize:      64,
		BytesPerRPS:       8 << 20, // 8MiB/rps
	}
}

func (o *SimpleProfileOracle) Prepare(gpuType string, sess ModelSession, requestRate float64) (ModelInstanceConfig, bool) {
	if requestRate <= 0 {
		return ModelInstanceConfig{}, false
	}
	slo := sess.LatencySLOMillis
	if slo <= 0 {
		return ModelInstanceConfig{}, false
	}
	// Tighter SLOs than the baseline cost proportionally more capacity;
	// looser SLOs never discount below 1x (no speculative over-packing).
	penalty := float64(o.BaselineSLOMillis) / float64(slo)
	if penalty < 1 {
		penalty = 1
	}
	reserved := requestRate * penalty

	batch := o.MaxBatchSize
	if slo < o.BaselineSLOMillis && o.BaselineSLOMillis > 0 {
		scaled := o.MaxBatchSize * slo / o.BaselineSLOMillis
		if scaled < 1 {
			scaled = 1
		}
		batch = scaled
	}

	cfg := ModelInstanceConfig{
		Session:          sess.ID(),
		Framework:        sess.Framework,
		ModelName:        sess.ModelName,
		Version:          sess.Version,
		BatchSize:        batch,
		ReservedRPS:      reserved,
		MemoryMB:         uint64(requestRate*float64(o.BytesPerRPS)) / (1 << 20),
		LatencySLOMillis: slo,
	}
	return cfg, true
}
