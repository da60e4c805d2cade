//go:build debug

package channel

// New ignores size under the debug tag: every queue is unbuffered, so a
// subscriber that falls behind loses updates at once.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
