package shortener

// MetricsRecorder receives cache activity from the resolve path.
type MetricsRecorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	UpdateCacheSize(entries int)
	RecordPruned(count int)
}

// NoOpMetricsRecorder discards everything.
type NoOpMetricsRecorder struct{}

func (NoOpMetricsRecorder) RecordCacheHit()     {}
func (NoOpMetricsRecorder) RecordCacheMiss()    {}
func (NoOpMetricsRecorder) UpdateCacheSize(int) {}
func (NoOpMetricsRecorder) RecordPruned(int)    {}
