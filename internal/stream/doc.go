// Package stream publishes reported segments to remote watchers over
// WebSocket.
//
// A Hub is a framing.Sink. The monitor emits into it like any other sink and
// the hub queues a JSON Message per connected client. A client that cannot
// keep up loses messages instead of stalling the serial line.
//
// # Wire Format
//
// Each text message is one segment:
//
//	{"role":"frame","data":"010300000001840a","length":8,
//	 "address":1,"function":3,"at":"2026-05-01T12:00:00.123Z"}
//
// Noise carries "reason" instead of address and function.
//
// # Usage Example
//
//	hub := stream.NewHub()
//	srv, err := stream.Listen(":8020", hub)
//	if err != nil {
//	    return err
//	}
//	go srv.Serve()
//	defer srv.Shutdown(context.Background())
//
// Watchers attach with Watch:
//
//	err := stream.Watch(ctx, "ws://gw.local:8020/ws", printer)
package stream
