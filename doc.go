// Package svcbot implements a Telegram-operated remote control for a
// supervisord daemon: an operator presses inline buttons in a chat and the
// bot translates them into process-control calls over supervisord's XML-RPC
// interface, then edits the chat message to reflect the new state.
//
// The core pipeline is
//
//	TelegramTransport -> Dispatcher -> Supervisor -> Dispatcher -> render -> TelegramTransport
//
// A Dispatcher consumes events from a bounded queue strictly sequentially,
// so two mutating actions can never interleave against the supervisor:
//
//	sup, err := svcbot.NewSupervisor("http://127.0.0.1:9001/RPC2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	transport, err := svcbot.NewTelegramTransport(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := svcbot.NewDispatcher(sup, transport, adminChatID)
//	go transport.Listen(ctx, d)
//	err = d.Run(ctx)
//
// # Design Philosophy
//
// This package prioritizes:
//
//   - A single seam for the RPC transport (Supervisor), so the dispatcher
//     only ever sees "did it work"
//   - Pure rendering functions that can be tested without any network
//   - Explicit string routing for callback data (no per-event regexes)
//   - A single authorized operator, which keeps event handling lock-free
//
// Supervision itself (spawning, signals, log capture) stays in supervisord;
// the bot only issues control calls and interprets the responses.
package svcbot
