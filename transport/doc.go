// Package transport provides the byte channel to the instrument.
//
// The Transport interface models a serial port with a bounded read: Read
// waits up to a fixed timeout and returns what arrived, so (0, nil) is a
// timeout rather than an error. Serial implements it over go.bug.st/serial
// with the instrument's fixed 115200 8N1 line settings:
//
//	t, err := transport.OpenSerial(transport.DefaultSerialConfig("/dev/ttyACM0"))
//	if errors.Is(err, transport.ErrUnavailable) {
//	    // port missing or busy
//	}
//	defer t.Close()
//
// The transporttest subpackage provides a scripted Transport for tests.
package transport
