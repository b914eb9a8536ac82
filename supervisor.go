package svcbot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kolo/xmlrpc"
)

// ProcessController is the process-control surface the dispatcher drives.
// Supervisor is the production implementation; tests substitute fakes.
type ProcessController interface {
	// ListProcesses fetches the current process table
	ListProcesses(ctx context.Context) ([]ProcessRecord, error)

	// Single-target operations, reporting only success or failure
	StartProcess(ctx context.Context, group string) bool
	StopProcess(ctx context.Context, group string) bool

	// Fleet-wide operations
	StartAll(ctx context.Context) bool
	StopAll(ctx context.Context) bool
	Reload(ctx context.Context) bool
}

// Supervisor is a façade over a supervisord XML-RPC endpoint. The endpoint
// URL is fixed at construction and the value is safe for concurrent use.
//
// Mutating operations collapse RPC failures to a bare false after logging
// the target and the underlying error: callers only ever branch on "did it
// work", and this is the single seam where the RPC transport could be
// swapped without touching the orchestration layer.
type Supervisor struct {
	// URL is the supervisord XML-RPC endpoint, e.g. "http://127.0.0.1:9001/RPC2"
	URL string

	rpc    *xmlrpc.Client
	logger *slog.Logger
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*supervisorConfig)

type supervisorConfig struct {
	transport http.RoundTripper
	logger    *slog.Logger
}

// WithTransport sets the HTTP transport used for XML-RPC calls. The default
// transport applies DefaultCallTimeout as a response-header timeout.
func WithTransport(rt http.RoundTripper) SupervisorOption {
	return func(c *supervisorConfig) {
		c.transport = rt
	}
}

// WithSupervisorLogger sets the logger for RPC failure detail
func WithSupervisorLogger(l *slog.Logger) SupervisorOption {
	return func(c *supervisorConfig) {
		c.logger = l
	}
}

// NewSupervisor creates a Supervisor client for the given XML-RPC endpoint.
func NewSupervisor(url string, opts ...SupervisorOption) (*Supervisor, error) {
	if url == "" {
		return nil, ErrMissingURL
	}

	cfg := supervisorConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.transport == nil {
		cfg.transport = &http.Transport{ResponseHeaderTimeout: DefaultCallTimeout}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	rpc, err := xmlrpc.NewClient(url, cfg.transport)
	if err != nil {
		return nil, &RPCError{Method: "connect", URL: url, Err: err}
	}

	return &Supervisor{URL: url, rpc: rpc, logger: cfg.logger}, nil
}

func (s *Supervisor) call(ctx context.Context, method string, args, reply any) error {
	if err := ctx.Err(); err != nil {
		return &RPCError{Method: method, URL: s.URL, Err: err}
	}
	if err := s.rpc.Call(method, args, reply); err != nil {
		return &RPCError{Method: method, URL: s.URL, Err: err}
	}
	return nil
}

// ListProcesses invokes supervisor.getAllProcessInfo and maps each returned
// struct into a ProcessRecord. A missing or mistyped field is a protocol
// contract violation and fails the whole call; values are never coerced.
func (s *Supervisor) ListProcesses(ctx context.Context) ([]ProcessRecord, error) {
	var raw []any
	if err := s.call(ctx, "supervisor.getAllProcessInfo", nil, &raw); err != nil {
		return nil, err
	}

	records := make([]ProcessRecord, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &RPCError{
				Method: "supervisor.getAllProcessInfo",
				URL:    s.URL,
				Err:    fmt.Errorf("%w: entry is %T, want struct", ErrProtocol, item),
			}
		}

		rec, err := decodeProcessInfo(fields)
		if err != nil {
			return nil, &RPCError{Method: "supervisor.getAllProcessInfo", URL: s.URL, Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}

func decodeProcessInfo(fields map[string]any) (ProcessRecord, error) {
	group, err := stringField(fields, "group")
	if err != nil {
		return ProcessRecord{}, err
	}
	name, err := stringField(fields, "name")
	if err != nil {
		return ProcessRecord{}, err
	}
	state, err := stringField(fields, "statename")
	if err != nil {
		return ProcessRecord{}, err
	}
	pid, err := intField(fields, "pid")
	if err != nil {
		return ProcessRecord{}, err
	}
	start, err := intField(fields, "start")
	if err != nil {
		return ProcessRecord{}, err
	}
	stop, err := intField(fields, "stop")
	if err != nil {
		return ProcessRecord{}, err
	}
	now, err := intField(fields, "now")
	if err != nil {
		return ProcessRecord{}, err
	}

	return ProcessRecord{
		GroupName:   group,
		ProcessName: name,
		State:       state,
		PID:         int(pid),
		Uptime:      DiffForHumans(max(start, stop), now),
	}, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrProtocol, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrProtocol, key, v)
	}
	return s, nil
}

func intField(fields map[string]any, key string) (int64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrProtocol, key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: field %q is %T, want integer", ErrProtocol, key, v)
	}
}

// StartProcess starts the named process group. Failures are logged with the
// target and collapsed to false.
func (s *Supervisor) StartProcess(ctx context.Context, group string) bool {
	var reply any
	if err := s.call(ctx, "supervisor.startProcessGroup", group, &reply); err != nil {
		s.logger.Error("starting process failed", "group", group, "error", err)
		return false
	}
	return true
}

// StopProcess stops the named process group. Failures are logged with the
// target and collapsed to false.
func (s *Supervisor) StopProcess(ctx context.Context, group string) bool {
	var reply any
	if err := s.call(ctx, "supervisor.stopProcessGroup", group, &reply); err != nil {
		s.logger.Error("stopping process failed", "group", group, "error", err)
		return false
	}
	return true
}

// StartAll starts every managed process.
func (s *Supervisor) StartAll(ctx context.Context) bool {
	var reply any
	if err := s.call(ctx, "supervisor.startAllProcesses", nil, &reply); err != nil {
		s.logger.Error("starting all processes failed", "error", err)
		return false
	}
	return true
}

// StopAll stops every managed process.
func (s *Supervisor) StopAll(ctx context.Context) bool {
	var reply any
	if err := s.call(ctx, "supervisor.stopAllProcesses", nil, &reply); err != nil {
		s.logger.Error("stopping all processes failed", "error", err)
		return false
	}
	return true
}

// Reload restarts the supervisord daemon, which re-reads its configuration.
func (s *Supervisor) Reload(ctx context.Context) bool {
	var reply any
	if err := s.call(ctx, "supervisor.restart", nil, &reply); err != nil {
		s.logger.Error("reloading supervisor failed", "error", err)
		return false
	}
	return true
}

// Close releases the underlying RPC connection.
func (s *Supervisor) Close() error {
	return s.rpc.Close()
}
