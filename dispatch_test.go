package svcbot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminChat int64 = 4242

// fakeController is an in-memory ProcessController that records the order
// of calls and returns scripted results.
type fakeController struct {
	mu      sync.Mutex
	records []ProcessRecord
	listErr error
	fail    map[string]bool // call name -> force failure
	calls   []string
}

func newFakeController(records ...ProcessRecord) *fakeController {
	return &fakeController{records: records, fail: make(map[string]bool)}
}

func (f *fakeController) record(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return !f.fail[call]
}

func (f *fakeController) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) ListProcesses(context.Context) ([]ProcessRecord, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]ProcessRecord(nil), f.records...), nil
}

func (f *fakeController) StartProcess(_ context.Context, group string) bool {
	return f.record("start " + group)
}

func (f *fakeController) StopProcess(_ context.Context, group string) bool {
	return f.record("stop " + group)
}

func (f *fakeController) StartAll(context.Context) bool { return f.record("start-all") }
func (f *fakeController) StopAll(context.Context) bool  { return f.record("stop-all") }
func (f *fakeController) Reload(context.Context) bool   { return f.record("reload") }

type sentMessage struct {
	chatID   int64
	text     string
	keyboard Keyboard
}

type editedMessage struct {
	chatID    int64
	messageID int
	text      string
	keyboard  Keyboard
}

type callbackAnswer struct {
	callbackID string
	text       string
	alert      bool
}

// fakeTransport records the outbound operations the dispatcher requests.
type fakeTransport struct {
	mu      sync.Mutex
	sends   []sentMessage
	edits   []editedMessage
	answers []callbackAnswer
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string, keyboard Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMessage{chatID, text, keyboard})
	return nil
}

func (f *fakeTransport) EditMessage(_ context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editedMessage{chatID, messageID, text, keyboard})
	return nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, callbackAnswer{callbackID, text, alert})
	return nil
}

func testCallback(data string) ButtonCallback {
	return ButtonCallback{
		ChatID:     testAdminChat,
		SenderID:   testAdminChat,
		CallbackID: "cb-1",
		MessageID:  77,
		Data:       data,
	}
}

func newTestDispatcher(ctrl *fakeController) (*Dispatcher, *fakeTransport) {
	transport := &fakeTransport{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := NewDispatcher(ctrl, transport, testAdminChat, WithDispatcherLogger(logger))
	return d, transport
}

func TestStartCommandSendsSummary(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), TextCommand{ChatID: testAdminChat, SenderID: testAdminChat, Text: "/start"})

	require.Len(t, transport.sends, 1)
	assert.Equal(t, testAdminChat, transport.sends[0].chatID)
	assert.Contains(t, transport.sends[0].text, "summary of the supervisor's status")
	assert.Len(t, transport.sends[0].keyboard, 4)
	assert.Empty(t, transport.edits)
}

func TestUnauthorizedEventsAreSilent(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), TextCommand{ChatID: 666, SenderID: 666, Text: "/start"})
	cb := testCallback(StartData("web"))
	cb.ChatID = 666
	d.handle(context.Background(), cb)

	assert.Empty(t, ctrl.callLog(), "no RPC call for unauthorized events")
	assert.Empty(t, transport.sends)
	assert.Empty(t, transport.edits)
	assert.Empty(t, transport.answers)
}

func TestUnrecognizedCallbackDataIsSilent(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback("-"))

	assert.Empty(t, ctrl.callLog())
	assert.Empty(t, transport.answers)
}

func TestOtherTextCommandsAreIgnored(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), TextCommand{ChatID: testAdminChat, SenderID: testAdminChat, Text: "/help"})

	assert.Empty(t, ctrl.callLog())
	assert.Empty(t, transport.sends)
}

func TestManageShowsDetail(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(ManageData("web")))

	require.Len(t, transport.edits, 1)
	assert.Equal(t, 77, transport.edits[0].messageID)
	assert.Contains(t, transport.edits[0].text, "*name*: web")
	assert.Contains(t, transport.edits[0].text, "uptime:")

	require.Len(t, transport.answers, 1)
	assert.Equal(t, "", transport.answers[0].text)
	assert.False(t, transport.answers[0].alert)
}

func TestManageUnknownGroupAlerts(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(ManageData("missing_group")))

	assert.Empty(t, transport.edits)
	require.Len(t, transport.answers, 1)
	assert.True(t, transport.answers[0].alert)
	assert.Contains(t, transport.answers[0].text, "missing_group")
	assert.Contains(t, transport.answers[0].text, "not found")
}

func TestManageListFailureAlerts(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	ctrl.listErr = ErrProtocol
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(ManageData("web")))

	assert.Empty(t, transport.edits, "no edit when the listing fails")
	require.Len(t, transport.answers, 1)
	assert.True(t, transport.answers[0].alert)
	assert.Contains(t, transport.answers[0].text, "Error fetching supervisor status")
}

func TestStartProcessFailureAlerts(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	ctrl.fail["start web"] = true
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(StartData("web")))

	assert.Empty(t, transport.edits, "no edit on action failure")
	require.Len(t, transport.answers, 1)
	assert.True(t, transport.answers[0].alert)
	assert.Contains(t, transport.answers[0].text, "web")

	// The failed action must not trigger a re-fetch.
	assert.Equal(t, []string{"start web"}, ctrl.callLog())
}

func TestStartProcessSuccessRendersDetail(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(StartData("web")))

	assert.Equal(t, []string{"start web", "list"}, ctrl.callLog())

	require.Len(t, transport.edits, 1)
	assert.Contains(t, transport.edits[0].text, "*name*: web")

	require.Len(t, transport.answers, 1)
	assert.False(t, transport.answers[0].alert)
	assert.Equal(t, "Supervisor web started successfully ✅.", transport.answers[0].text)
}

func TestStopProcessSuccessRendersDetail(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(StopData("worker")))

	assert.Equal(t, []string{"stop worker", "list"}, ctrl.callLog())
	require.Len(t, transport.answers, 1)
	assert.Equal(t, "Supervisor worker stopped successfully ✅.", transport.answers[0].text)
}

func TestStartProcessRefetchFailureLeavesViewStale(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	ctrl.listErr = ErrProtocol
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback(StartData("web")))

	assert.Empty(t, transport.edits, "stale view is kept when the re-fetch fails")
	require.Len(t, transport.answers, 1)
	assert.False(t, transport.answers[0].alert, "the action itself succeeded")
}

func TestFleetActions(t *testing.T) {
	tests := []struct {
		data string
		call string
		ack  string
	}{
		{"start_supervisors", "start-all", "started successfully"},
		{"stop_supervisors", "stop-all", "stopped successfully"},
		{"reload_supervisors", "reload", "reloaded successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			ctrl := newFakeController(summaryRecords()...)
			d, transport := newTestDispatcher(ctrl)

			d.handle(context.Background(), testCallback(tt.data))

			assert.Equal(t, []string{tt.call, "list"}, ctrl.callLog())

			require.Len(t, transport.answers, 1)
			assert.True(t, transport.answers[0].alert)
			assert.Contains(t, transport.answers[0].text, tt.ack)

			require.Len(t, transport.edits, 1)
			assert.Contains(t, transport.edits[0].text, "summary of the supervisor's status")
		})
	}
}

func TestFleetActionFailureAlertsWithoutRender(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	ctrl.fail["stop-all"] = true
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback("stop_supervisors"))

	assert.Equal(t, []string{"stop-all"}, ctrl.callLog())
	assert.Empty(t, transport.edits)
	require.Len(t, transport.answers, 1)
	assert.True(t, transport.answers[0].alert)
	assert.Contains(t, transport.answers[0].text, "Error in stop all")
}

func TestBackToHomeListFailureAlerts(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	ctrl.listErr = ErrProtocol
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback("back_to_home"))

	assert.Empty(t, transport.edits, "no edit when the listing fails")
	require.Len(t, transport.answers, 1)
	assert.True(t, transport.answers[0].alert)
	assert.Contains(t, transport.answers[0].text, "Error fetching supervisor status")
}

func TestBackToHomeIsIdempotent(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	d, transport := newTestDispatcher(ctrl)

	d.handle(context.Background(), testCallback("back_to_home"))
	require.Len(t, transport.edits, 1)
	assert.Contains(t, transport.edits[0].text, "*status*: *STOPPED*")

	// Supervisor state changes between presses; the next render reflects it.
	ctrl.mu.Lock()
	ctrl.records[1].State = StateRunning
	ctrl.mu.Unlock()

	d.handle(context.Background(), testCallback("back_to_home"))
	require.Len(t, transport.edits, 2)
	assert.NotContains(t, transport.edits[1].text, "*status*: *STOPPED*")

	// Every press is acknowledged exactly once.
	require.Len(t, transport.answers, 2)
	for _, a := range transport.answers {
		assert.False(t, a.alert)
	}
}

func TestRunProcessesEventsInSubmissionOrder(t *testing.T) {
	ctrl := newFakeController(summaryRecords()...)
	transport := &fakeTransport{}
	d := NewDispatcher(ctrl, transport, testAdminChat,
		WithQueueSize(8),
		WithDispatcherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()

	require.NoError(t, d.Submit(ctx, testCallback(StopData("web"))))
	require.NoError(t, d.Submit(ctx, testCallback(StartData("worker"))))
	require.NoError(t, d.Submit(ctx, testCallback("reload_supervisors")))

	require.Eventually(t, func() bool {
		calls := ctrl.callLog()
		mutations := 0
		for _, c := range calls {
			if c != "list" {
				mutations++
			}
		}
		return mutations == 3
	}, time.Second, 5*time.Millisecond)

	var mutations []string
	for _, c := range ctrl.callLog() {
		if !strings.HasPrefix(c, "list") {
			mutations = append(mutations, c)
		}
	}
	assert.Equal(t, []string{"stop web", "start worker", "reload"}, mutations)

	cancel()
	<-done
}
