// Package driver provides a high-level API for the Model 2450 brightness and
// color kit.
//
// # Overview
//
// The device takes plain ASCII command lines and answers in one of two ways:
//   - Framed binary records, reassembled into one message per command (Send)
//   - Free-form text lines, collected for a fixed window (SendText)
//
// On top of these, the package runs blank-frame detection sessions
// (RunBlankFrames) and follows the continuous reading stream (Stream).
//
// # Basic Usage
//
//	port, err := transport.OpenSerial(transport.DefaultSerialConfig("/dev/ttyACM0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dev := driver.New(port, driver.WithCommandTimeout(5*time.Second))
//	defer dev.Close()
//
//	sn, err := dev.SerialNumber(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("serial number:", sn)
//
// # Blank-Frame Runs
//
//	dev := driver.New(port,
//	    driver.WithProgressCallback(func(p driver.RunProgress) {
//	        fmt.Printf("%s: %d blank\n", p.Elapsed, p.Blank)
//	    }),
//	)
//	n, err := dev.RunBlankFrames(ctx, 10*time.Second)
//
// Cancelling ctx ends the run early; the stop command is still sent.
//
// # Timeouts
//
// The device may never answer. Send waits until a message is reassembled,
// CommandTimeout elapses or ctx is done:
//
//	_, err := dev.Send(ctx, "color")
//	if errors.Is(err, driver.ErrTimeout) {
//	    var te *driver.TimeoutError
//	    errors.As(err, &te)
//	    log.Printf("%s: no answer after %s", te.Command, te.Elapsed)
//	}
//
// # Logging
//
// Pass a zerolog.Logger to trace traffic; dropped records are logged at
// debug level:
//
//	dev := driver.New(port, driver.WithLogger(log.Logger))
package driver
