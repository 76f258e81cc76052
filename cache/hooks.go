package cache

// Hooks are the buffer's extension points. Both methods are called
// synchronously from the operation that triggered them, after the buffer
// state has been updated. A panicking hook propagates to the caller; the
// mutation that preceded it is not rolled back.
type Hooks[K comparable, V any] interface {
	// CreateDefault may synthesize a value for a key that missed in Get.
	// Returning false means "no value"; nothing is inserted.
	CreateDefault(k K) (V, bool)

	// AfterRemoval is called whenever a value leaves the buffer.
	//   - isEvict=true: dropped to satisfy capacity. newValue points to the
	//     value whose insertion caused the overflow, or is nil for a resize.
	//   - isEvict=false: explicit Remove (newValue is nil) or an overwrite by
	//     Put (newValue points to the replacement).
	AfterRemoval(isEvict bool, k K, v V, newValue *V)
}

// NoopHooks never creates defaults and ignores removals.
type NoopHooks[K comparable, V any] struct{}

func (NoopHooks[K, V]) CreateDefault(K) (V, bool) {
	var zero V
	return zero, false
}

func (NoopHooks[K, V]) AfterRemoval(bool, K, V, *V) {}

// HookFuncs adapts plain functions to Hooks. A nil field behaves like NoopHooks.
type HookFuncs[K comparable, V any] struct {
	CreateDefaultFunc func(k K) (V, bool)
	AfterRemovalFunc  func(isEvict bool, k K, v V, newValue *V)
}

func (h HookFuncs[K, V]) CreateDefault(k K) (V, bool) {
	if h.CreateDefaultFunc == nil {
		var zero V
		return zero, false
	}
	return h.CreateDefaultFunc(k)
}

func (h HookFuncs[K, V]) AfterRemoval(isEvict bool, k K, v V, newValue *V) {
	if h.AfterRemovalFunc != nil {
		h.AfterRemovalFunc(isEvict, k, v, newValue)
	}
}

var (
	_ Hooks[string, int] = NoopHooks[string, int]{}
	_ Hooks[string, int] = HookFuncs[string, int]{}
)
