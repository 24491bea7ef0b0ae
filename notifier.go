package gatt

import "errors"

// Notifier is an io.Writer-style handle for streaming notifications or
// indications to a characteristic's subscriber, adapted from the
// teacher's per-connection Notifier to this design's single-server
// model: each Write pushes one Handle Value Notification/Indication
// directly through the stack's gattServer.
type Notifier struct {
	server   *gattServer
	char     *Characteristic
	indicate bool
	maxlen   int
	done     bool
}

func NewNotifier(server *gattServer, cc *Characteristic, indicate bool, maxlen int) *Notifier {
	return &Notifier{server: server, char: cc, indicate: indicate, maxlen: maxlen}
}

func (n *Notifier) Write(data []byte) (int, error) {
	if n.Done() {
		return 0, errors.New("peer stopped notifications")
	}
	var err error
	if n.indicate {
		err = n.server.indicateChar(n.char, data)
	} else {
		err = n.server.notifyChar(n.char, data)
	}
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (n *Notifier) Cap() int   { return n.maxlen }
func (n *Notifier) Done() bool { return n.done }
func (n *Notifier) stop()      { n.done = true }
