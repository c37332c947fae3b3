package search

// Monitor provides hooks to observe one query's progress through the
// retrieval stages. Implement this interface to trace intermediate state;
// all callbacks run synchronously on the query path, so keep them cheap.
type Monitor interface {
	Start(query string)
	AfterEmbedding(tokens int)
	AfterMethod(method Method, candidates int, unavailable bool)
	AfterFusion(candidates int, degraded bool)
	AfterDedup(kept, duplicates int)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                    {}
func (n *noopMonitor) AfterEmbedding(_ int)              {}
func (n *noopMonitor) AfterMethod(_ Method, _ int, _ bool) {}
func (n *noopMonitor) AfterFusion(_ int, _ bool)         {}
func (n *noopMonitor) AfterDedup(_, _ int)               {}
func (n *noopMonitor) Finish(_ *Response)                {}
