//go:build !debug

package channel

// New returns a queue holding up to size items, or an unbuffered one
// when size <= 0.
func New[T any](size int) Channel[T] {
	if size <= 0 {
		return NewUnbuffered[T]()
	}
	return NewBuffered[T](size)
}
