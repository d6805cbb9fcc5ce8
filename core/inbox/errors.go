package inbox

import "errors"

// ErrNotOnFiber is the panic value (wrapped) when Receive is called outside
// a unit running on the inbox's fiber.
var ErrNotOnFiber = errors.New("inbox: not called from a unit on the inbox fiber")
