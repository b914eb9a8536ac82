package svcbot

import (
	"context"
	"fmt"
	"log/slog"
)

// Event is an inbound chat event decoded by the transport. The two shapes
// are TextCommand and ButtonCallback.
type Event interface {
	event()
}

// TextCommand is a plain text message sent to the bot.
type TextCommand struct {
	// ChatID is the chat the message arrived in
	ChatID int64
	// SenderID is the Telegram user who sent it
	SenderID int64
	// Text is the message body
	Text string
}

func (TextCommand) event() {}

// ButtonCallback is a press of an inline keyboard button.
type ButtonCallback struct {
	// ChatID is the chat holding the message the button belongs to
	ChatID int64
	// SenderID is the Telegram user who pressed the button
	SenderID int64
	// CallbackID is the query ID that must be answered exactly once
	CallbackID string
	// MessageID identifies the message to edit in place
	MessageID int
	// Data is the opaque callback payload, decoded by ParseAction
	Data string
}

func (ButtonCallback) event() {}

// Transport performs the outbound chat I/O the dispatcher requests. The
// production implementation is TelegramTransport.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Dispatcher routes inbound chat events to supervisor actions and drives the
// resulting view updates. Events pass through a bounded queue and are
// processed strictly sequentially, so no two supervisor-mutating actions can
// interleave. Only events from the configured admin chat are acted on;
// everything else is dropped silently.
type Dispatcher struct {
	supervisor ProcessController
	transport  Transport
	adminChat  int64
	queue      chan Event
	logger     *slog.Logger
	snapshots  *SnapshotWriter
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the inbound event queue capacity
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

// WithDispatcherLogger sets the dispatcher's logger
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithSnapshotWriter makes the dispatcher persist a process-table snapshot
// after every successful listing
func WithSnapshotWriter(w *SnapshotWriter) DispatcherOption {
	return func(d *Dispatcher) {
		d.snapshots = w
	}
}

// NewDispatcher creates a Dispatcher. adminChat is the single chat ID
// authorized to operate the bot.
func NewDispatcher(supervisor ProcessController, transport Transport, adminChat int64, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		supervisor: supervisor,
		transport:  transport,
		adminChat:  adminChat,
		queue:      make(chan Event, DefaultQueueSize),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit enqueues one inbound event for sequential processing. When the
// queue is full, Submit blocks until space frees up or ctx is done: transport
// delivery applies backpressure instead of buffering without bound.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	select {
	case d.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes the event queue until ctx is done. Handling errors never stop
// the loop; each event's failure is logged and the next event is processed.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-d.queue:
			d.handle(ctx, ev)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case TextCommand:
		d.handleCommand(ctx, e)
	case ButtonCallback:
		d.handleCallback(ctx, e)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, e TextCommand) {
	if e.ChatID != d.adminChat || e.Text != "/start" {
		return
	}

	records, err := d.listProcesses(ctx)
	if err != nil {
		d.logger.Error("listing processes failed", "error", err)
		return
	}

	text, keyboard := RenderSummary(records)
	if err := d.transport.SendMessage(ctx, e.ChatID, text, keyboard); err != nil {
		d.logger.Error("sending summary failed", "error", err)
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, e ButtonCallback) {
	if e.ChatID != d.adminChat {
		return
	}

	action, ok := ParseAction(e.Data)
	if !ok {
		// Stray data, e.g. the decorative header button. Expected traffic.
		return
	}

	switch action.Kind {
	case ActionManage:
		d.handleManage(ctx, e, action.Group)
	case ActionStart, ActionStop:
		d.handleProcessAction(ctx, e, action)
	case ActionStartAll, ActionStopAll, ActionReload:
		d.handleFleetAction(ctx, e, action.Kind)
	case ActionBack:
		d.handleBack(ctx, e)
	}
}

// handleManage switches the message to the Detail view for one group.
func (d *Dispatcher) handleManage(ctx context.Context, e ButtonCallback, group string) {
	records, err := d.listProcesses(ctx)
	if err != nil {
		d.logger.Error("listing processes failed", "error", err)
		d.answer(ctx, e, "Error fetching supervisor status.", true)
		return
	}

	rec, found := findRecord(records, group)
	if !found {
		d.answer(ctx, e, fmt.Sprintf("The supervisor %s not found.", group), true)
		return
	}

	text, keyboard := RenderDetail(rec)
	d.edit(ctx, e, text, keyboard)
	d.answer(ctx, e, "", false)
}

// handleProcessAction starts or stops one group, then re-renders its Detail
// view from a fresh listing.
func (d *Dispatcher) handleProcessAction(ctx context.Context, e ButtonCallback, action Action) {
	var ok bool
	var done string
	switch action.Kind {
	case ActionStart:
		ok = d.supervisor.StartProcess(ctx, action.Group)
		done = "started"
	case ActionStop:
		ok = d.supervisor.StopProcess(ctx, action.Group)
		done = "stopped"
	}
	if !ok {
		d.answer(ctx, e, fmt.Sprintf("Error in %s %s supervisor.", action.Kind, action.Group), true)
		return
	}

	ack := fmt.Sprintf("Supervisor %s %s successfully ✅.", action.Group, done)

	records, err := d.listProcesses(ctx)
	if err != nil {
		// The action itself succeeded; leave the view stale.
		d.logger.Error("listing processes failed", "error", err)
		d.answer(ctx, e, ack, false)
		return
	}

	rec, found := findRecord(records, action.Group)
	if !found {
		d.answer(ctx, e, fmt.Sprintf("The supervisor %s not found.", action.Group), true)
		return
	}

	text, keyboard := RenderDetail(rec)
	d.edit(ctx, e, text, keyboard)
	d.answer(ctx, e, ack, false)
}

// handleFleetAction runs a fleet-wide operation and re-renders the Home view.
func (d *Dispatcher) handleFleetAction(ctx context.Context, e ButtonCallback, kind ActionKind) {
	var ok bool
	var failed, succeeded string
	switch kind {
	case ActionStartAll:
		ok = d.supervisor.StartAll(ctx)
		failed = "Error in start all supervisor programs."
		succeeded = "All supervisor programs started successfully ✅."
	case ActionStopAll:
		ok = d.supervisor.StopAll(ctx)
		failed = "Error in stop all supervisor programs."
		succeeded = "All supervisor programs stopped successfully ✅."
	case ActionReload:
		ok = d.supervisor.Reload(ctx)
		failed = "Error in reload supervisor programs."
		succeeded = "Supervisor reloaded successfully ✅."
	}
	if !ok {
		d.answer(ctx, e, failed, true)
		return
	}

	d.answer(ctx, e, succeeded, true)

	records, err := d.listProcesses(ctx)
	if err != nil {
		d.logger.Error("listing processes failed", "error", err)
		return
	}

	text, keyboard := RenderSummary(records)
	d.edit(ctx, e, text, keyboard)
}

// handleBack re-renders the Home view from current supervisor state.
func (d *Dispatcher) handleBack(ctx context.Context, e ButtonCallback) {
	records, err := d.listProcesses(ctx)
	if err != nil {
		d.logger.Error("listing processes failed", "error", err)
		d.answer(ctx, e, "Error fetching supervisor status.", true)
		return
	}

	text, keyboard := RenderSummary(records)
	d.edit(ctx, e, text, keyboard)
	d.answer(ctx, e, "", false)
}

// listProcesses fetches the process table and, when a snapshot writer is
// configured, persists it. Snapshot failures are logged but never fail the
// event being handled.
func (d *Dispatcher) listProcesses(ctx context.Context) ([]ProcessRecord, error) {
	records, err := d.supervisor.ListProcesses(ctx)
	if err != nil {
		return nil, err
	}
	if d.snapshots != nil {
		if err := d.snapshots.Write(records); err != nil {
			d.logger.Warn("writing snapshot failed", "error", err)
		}
	}
	return records, nil
}

func (d *Dispatcher) answer(ctx context.Context, e ButtonCallback, text string, alert bool) {
	if err := d.transport.AnswerCallback(ctx, e.CallbackID, text, alert); err != nil {
		d.logger.Error("answering callback failed", "callback", e.CallbackID, "error", err)
	}
}

func (d *Dispatcher) edit(ctx context.Context, e ButtonCallback, text string, keyboard Keyboard) {
	if err := d.transport.EditMessage(ctx, e.ChatID, e.MessageID, text, keyboard); err != nil {
		d.logger.Error("editing message failed", "message", e.MessageID, "error", err)
	}
}

func findRecord(records []ProcessRecord, group string) (ProcessRecord, bool) {
	for _, rec := range records {
		if rec.GroupName == group {
			return rec, true
		}
	}
	return ProcessRecord{}, false
}
