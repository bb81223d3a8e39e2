package ops

import "errors"

// errNoMessages is Last's failure when the source channel drained
// without ever producing a message.
var errNoMessages = errors.New("lamina/ops: channel drained with no messages")
