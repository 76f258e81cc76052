package cache

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                       {}
func (NoopMetrics) Miss()                      {}
func (NoopMetrics) Put()                       {}
func (NoopMetrics) Create()                    {}
func (NoopMetrics) Evict(EvictReason)          {}
func (NoopMetrics) Size(entries, capacity int) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
