package inbox

// Metrics instruments inboxes. Methods are called from the inbox fiber,
// except MessageSent which runs on the sender's goroutine, so
// implementations must be safe for concurrent use.
type Metrics interface {
	MessageSent(inboxID string)
	// MessageDelivered is called when a consumer accepted a message. buffered
	// tells whether the message came out of the buffer during Receive.
	MessageDelivered(inboxID string, buffered bool)
	MessageDropped(inboxID string)
	ReceiveCompleted(inboxID string, state State)
	WaitingMessages(inboxID string, n int)
	PendingReceivers(inboxID string, n int)
}

type nopMetrics struct{}

func (nopMetrics) MessageSent(string)             {}
func (nopMetrics) MessageDelivered(string, bool)  {}
func (nopMetrics) MessageDropped(string)          {}
func (nopMetrics) ReceiveCompleted(string, State) {}
func (nopMetrics) WaitingMessages(string, int)    {}
func (nopMetrics) PendingReceivers(string, int)   {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
