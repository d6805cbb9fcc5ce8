package inbox

type (
	// Consumer handles one message.
	Consumer[T any] func(msg T)

	// SelectiveConsumer returns the Consumer for msg, or nil to decline it.
	SelectiveConsumer[T any] func(msg T) Consumer[T]
)

// Any accepts every message.
func Any[T any](h func(T)) SelectiveConsumer[T] {
	return func(T) Consumer[T] { return h }
}

// When accepts messages for which pred returns true.
func When[T any](pred func(T) bool, h func(T)) SelectiveConsumer[T] {
	return func(msg T) Consumer[T] {
		if !pred(msg) {
			return nil
		}
		return h
	}
}

// OfType accepts messages whose dynamic type is M. T is usually an
// interface type shared by all messages of the channel.
func OfType[T any, M any](h func(M)) SelectiveConsumer[T] {
	return func(msg T) Consumer[T] {
		if _, ok := any(msg).(M); !ok {
			return nil
		}
		return func(msg T) { h(any(msg).(M)) }
	}
}
