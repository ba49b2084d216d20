package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/forgebuild/pluginhost/invocation/wire"
)

// ChildStream is the subset of sandbox.Child the session depends on: a
// framed bidirectional message stream, the plugin's raw combined output,
// an exit code future and a way to terminate it. sandbox.Child satisfies
// this structurally; defining it here keeps the session testable without
// a real spawned process.
type ChildStream interface {
	Send(data []byte) error
	Messages() <-chan []byte
	Output() io.Reader
	Wait() <-chan int
	Kill() error
}

// State is the session's lifecycle state (spec §4.E).
type State int

const (
	StateInit State = iota
	StateReady
	StateRunning
	StateDraining
	StateFinished
)

// Session owns one plugin run end-to-end: it pumps the wire protocol over
// an already-spawned child, routes plugin-initiated requests to the
// delegate, and aggregates diagnostics and commands into a result.
//
// A Session is not safe for concurrent use; Run drives it to completion
// and returns.
type Session struct {
	child    ChildStream
	initial  wire.HostToPlugin
	delegate PluginInvocationDelegate
	logger   *slog.Logger

	allToolPaths  []string        // sorted, every declared tool's absolute path
	builtToolPath map[string]bool // subset resolved from a Built tool

	state State

	diagnostics      []Diagnostic
	buildCommands    []BuildCommand
	prebuildCommands []PrebuildCommand
	hasReportedError bool
	exitEarly        bool
}

// New constructs a Session ready to run against an already-spawned child.
// allToolPaths is every accessible tool's resolved absolute path (prepended,
// sorted, to every BuildCommand's inputs); builtToolPaths is the subset
// resolved from *Built* tools (used to reject prebuild commands whose
// executable is a build product, spec §3).
func New(child ChildStream, initial wire.HostToPlugin, delegate PluginInvocationDelegate, allToolPaths, builtToolPaths []string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	sorted := append([]string(nil), allToolPaths...)
	sort.Strings(sorted)

	builtSet := make(map[string]bool, len(builtToolPaths))
	for _, p := range builtToolPaths {
		builtSet[p] = true
	}

	return &Session{
		child:         child,
		initial:       initial,
		delegate:      delegate,
		logger:        logger,
		allToolPaths:  sorted,
		builtToolPath: builtSet,
		state:         StateReady,
	}
}

// State reports the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// requestState tracks, for one of the three plugin-initiated request
// kinds, whether a delegate call is outstanding and any requests queued
// behind it.
type requestState struct {
	outstanding bool
	queue       []wire.PluginToHost
}

// dispatched pairs a delegate's completed response with the request kind
// it answers, since an ErrorResponse's own Kind doesn't say which of the
// three request kinds produced it.
type dispatched struct {
	requestKind wire.Kind
	response    wire.HostToPlugin
}

// Run sends the initial message, pumps inbound plugin messages and
// outbound delegate responses until the plugin's message stream closes (or
// ctx is cancelled, in which case the child is killed), then waits for
// process exit and drains remaining output before returning the
// aggregated result.
func (s *Session) Run(ctx context.Context) (BuildToolPluginInvocationResult, error) {
	s.state = StateRunning

	initialFrame, err := wire.Encode(s.initial)
	if err != nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("encoding initial message: %w", err)
	}
	if err := s.child.Send(initialFrame); err != nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("sending initial message: %w", err)
	}

	var output bytes.Buffer
	var outputErr error
	outputDone := make(chan struct{})
	go func() {
		defer close(outputDone)
		buf := make([]byte, 32*1024)
		for {
			n, err := s.child.Output().Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				output.Write(chunk)
				s.delegate.PluginEmittedOutput(chunk)
			}
			if err != nil {
				if err != io.EOF {
					outputErr = err
				}
				return
			}
		}
	}()

	runErr := s.pump(ctx)
	if runErr != nil {
		s.child.Kill()
	}
	exitCode := <-s.child.Wait()

	s.state = StateDraining
	<-outputDone
	s.state = StateFinished

	if runErr != nil {
		return BuildToolPluginInvocationResult{}, runErr
	}
	if outputErr != nil {
		return BuildToolPluginInvocationResult{}, fmt.Errorf("reading plugin output: %w", outputErr)
	}
	return s.finish(exitCode, output.Bytes()), nil
}

// pump is the message-pump state: on each inbound frame it updates session
// state or dispatches a plugin-initiated request; outbound responses flow
// back through the same logical queue so replies never interleave with a
// concurrent inbound read (spec §5's ordering contract).
func (s *Session) pump(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	responses := make(chan dispatched, 8)
	states := map[wire.Kind]*requestState{
		wire.KindBuildOperationRequest: {},
		wire.KindTestOperationRequest:  {},
		wire.KindSymbolGraphRequest:    {},
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("session cancelled: %w", ctx.Err())

		case frame, ok := <-s.child.Messages():
			if !ok {
				// The plugin closed its message stream. Already in-flight
				// delegate calls still get their replies sent; anything
				// still queued behind them is moot now — there is no one
				// left to read a further reply.
				return s.drainResponses(group, responses)
			}
			msg, err := wire.Decode(frame)
			if err != nil {
				return fmt.Errorf("decoding plugin frame: %w", err)
			}
			if err := s.handleInbound(gctx, group, msg, responses, states); err != nil {
				return err
			}

		case d := <-responses:
			data, err := wire.Encode(d.response)
			if err != nil {
				return fmt.Errorf("encoding response: %w", err)
			}
			if err := s.child.Send(data); err != nil {
				return fmt.Errorf("sending response: %w", err)
			}
			s.redispatchNext(d.requestKind, gctx, group, responses, states)
		}
	}
}

// drainResponses flushes replies for delegate calls already in flight when
// the plugin closed its message stream, then returns once every dispatched
// goroutine has finished. Queued-but-never-dispatched requests are not
// serviced here: redispatching them would call errgroup.Group.Go after a
// concurrent Wait, which errgroup forbids.
func (s *Session) drainResponses(group *errgroup.Group, responses chan dispatched) error {
	groupDone := make(chan error, 1)
	go func() { groupDone <- group.Wait() }()

	for {
		select {
		case d := <-responses:
			data, err := wire.Encode(d.response)
			if err != nil {
				return fmt.Errorf("encoding response: %w", err)
			}
			if err := s.child.Send(data); err != nil {
				return fmt.Errorf("sending response: %w", err)
			}
		case err := <-groupDone:
			// Every dispatched goroutine has returned, so nothing sends on
			// responses any more; flush whatever is still buffered.
			close(responses)
			for d := range responses {
				data, encErr := wire.Encode(d.response)
				if encErr != nil {
					return fmt.Errorf("encoding response: %w", encErr)
				}
				if sendErr := s.child.Send(data); sendErr != nil {
					return fmt.Errorf("sending response: %w", sendErr)
				}
			}
			return err
		}
	}
}

func (s *Session) handleInbound(ctx context.Context, group *errgroup.Group, msg wire.PluginToHost, responses chan<- dispatched, states map[wire.Kind]*requestState) error {
	switch msg.Kind {
	case wire.KindEmitDiagnostic:
		s.recordDiagnostic(*msg.EmitDiagnostic)

	case wire.KindEmitProgress:
		s.delegate.PluginEmittedProgress(msg.EmitProgress.Message)

	case wire.KindDefineBuildCommand:
		if err := wire.CheckVersion(msg.DefineBuildCommand.Config); err != nil {
			return err
		}
		s.recordBuildCommand(*msg.DefineBuildCommand)

	case wire.KindDefinePrebuildCommand:
		if err := wire.CheckVersion(msg.DefinePrebuildCommand.Config); err != nil {
			return err
		}
		s.recordPrebuildCommand(*msg.DefinePrebuildCommand)

	case wire.KindBuildOperationRequest, wire.KindTestOperationRequest, wire.KindSymbolGraphRequest:
		s.dispatchOrQueue(ctx, group, msg, responses, states)
	}
	return nil
}

// isValidDiagnosticLocation matches the source's soft validation: only an
// absolute path is accepted as a diagnostic location. Anything else is
// logged and dropped rather than failing the whole frame.
func isValidDiagnosticLocation(file string) bool {
	return file != "" && filepath.IsAbs(file)
}

func (s *Session) recordDiagnostic(msg wire.EmitDiagnostic) {
	diag := Diagnostic{Severity: string(msg.Severity), Message: msg.Message}
	if msg.File != nil {
		if isValidDiagnosticLocation(*msg.File) {
			diag.File = *msg.File
			if msg.Line != nil {
				diag.Line = *msg.Line
			}
		} else {
			s.logger.Warn("dropping invalid diagnostic location", "file", *msg.File)
		}
	}
	s.diagnostics = append(s.diagnostics, diag)
	s.delegate.PluginEmittedDiagnostic(diag)
	if msg.Severity == wire.SeverityError {
		s.hasReportedError = true
	}
}

func convertConfig(cfg wire.CommandConfig) CommandConfiguration {
	workingDirectory := ""
	if cfg.WorkingDirectory != nil {
		workingDirectory = *cfg.WorkingDirectory
	}
	return CommandConfiguration{
		DisplayName:      cfg.DisplayName,
		Executable:       cfg.Executable,
		Arguments:        append([]string(nil), cfg.Arguments...),
		Environment:      cfg.Environment,
		WorkingDirectory: workingDirectory,
	}
}

func (s *Session) recordBuildCommand(msg wire.DefineBuildCommand) {
	inputs := make([]string, 0, len(s.allToolPaths)+len(msg.Inputs))
	inputs = append(inputs, s.allToolPaths...)
	inputs = append(inputs, msg.Inputs...)

	cmd := BuildCommand{
		Configuration: convertConfig(msg.Config),
		InputFiles:    inputs,
		OutputFiles:   append([]string(nil), msg.Outputs...),
	}
	s.buildCommands = append(s.buildCommands, cmd)
	s.delegate.PluginDefinedBuildCommand(cmd)
}

func (s *Session) recordPrebuildCommand(msg wire.DefinePrebuildCommand) {
	cfg := convertConfig(msg.Config)

	if s.builtToolPath[cfg.Executable] {
		s.diagnostics = append(s.diagnostics, Diagnostic{
			Severity: string(wire.SeverityError),
			Message:  fmt.Sprintf("prebuild command executable %q must not be a build product", filepath.Base(cfg.Executable)),
		})
		s.hasReportedError = true
		s.exitEarly = true
		return
	}

	cmd := PrebuildCommand{Configuration: cfg, OutputFilesDirectory: msg.OutputFilesDirectory}
	if !s.delegate.PluginDefinedPrebuildCommand(cmd) {
		return
	}
	s.prebuildCommands = append(s.prebuildCommands, cmd)
}

func (s *Session) dispatchOrQueue(ctx context.Context, group *errgroup.Group, msg wire.PluginToHost, responses chan<- dispatched, states map[wire.Kind]*requestState) {
	st := states[msg.Kind]
	if st.outstanding {
		st.queue = append(st.queue, msg)
		return
	}
	st.outstanding = true
	s.dispatch(ctx, group, msg, responses)
}

func (s *Session) dispatch(ctx context.Context, group *errgroup.Group, msg wire.PluginToHost, responses chan<- dispatched) {
	kind := msg.Kind
	group.Go(func() error {
		responses <- dispatched{requestKind: kind, response: s.serve(ctx, msg)}
		return nil
	})
}

func (s *Session) redispatchNext(kind wire.Kind, ctx context.Context, group *errgroup.Group, responses chan<- dispatched, states map[wire.Kind]*requestState) {
	st := states[kind]
	st.outstanding = false
	if len(st.queue) == 0 {
		return
	}
	next := st.queue[0]
	st.queue = st.queue[1:]
	st.outstanding = true
	s.dispatch(ctx, group, next, responses)
}

// serve calls the delegate method matching msg's kind and builds the reply
// message, converting a delegate error into an ErrorResponse rather than
// propagating it — a failed delegate call terminates the plugin's request,
// not the session (spec §7: "Plugin-produced error diagnostics are
// recorded but do not themselves terminate the session").
func (s *Session) serve(ctx context.Context, msg wire.PluginToHost) wire.HostToPlugin {
	switch msg.Kind {
	case wire.KindBuildOperationRequest:
		req := msg.BuildOperationRequest
		result, err := s.delegate.RequestBuildOperation(ctx, req.Subset, req.Parameters)
		if err != nil {
			return wire.NewErrorResponse(err.Error())
		}
		return wire.NewBuildOperationResponse(result.Succeeded, result.Output, "")

	case wire.KindTestOperationRequest:
		req := msg.TestOperationRequest
		result, err := s.delegate.RequestTestOperation(ctx, req.Subset, req.Parameters)
		if err != nil {
			return wire.NewErrorResponse(err.Error())
		}
		return wire.NewTestOperationResponse(result.Succeeded, result.Output, "")

	case wire.KindSymbolGraphRequest:
		req := msg.SymbolGraphRequest
		result, err := s.delegate.RequestSymbolGraph(ctx, req.Target, req.Options)
		if err != nil {
			return wire.NewErrorResponse(err.Error())
		}
		return wire.NewSymbolGraphResponse(true, toFileURL(result.DirectoryPath), "")

	default:
		return wire.NewErrorResponse(fmt.Sprintf("session: unhandled request kind %q", msg.Kind))
	}
}

// toFileURL renders an absolute filesystem path in the file-URL form the
// wire's SymbolGraphResponse.DirectoryPath expects.
func toFileURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// finish computes exited_cleanly, synthesizes a dirty-exit diagnostic when
// warranted, and packages the accumulated state into a result (spec §4.E).
func (s *Session) finish(exitCode int, output []byte) BuildToolPluginInvocationResult {
	exitedCleanly := exitCode == 0 && !s.exitEarly
	if !exitedCleanly && !s.hasReportedError {
		s.diagnostics = append(s.diagnostics, Diagnostic{
			Severity: string(wire.SeverityError),
			Message:  fmt.Sprintf("Plugin ended with exit code %d", exitCode),
		})
	}

	return BuildToolPluginInvocationResult{
		Succeeded:        exitedCleanly,
		ExitedCleanly:    exitedCleanly,
		TextOutput:       strings.ToValidUTF8(string(output), "\uFFFD"),
		Diagnostics:      append([]Diagnostic(nil), s.diagnostics...),
		BuildCommands:    append([]BuildCommand(nil), s.buildCommands...),
		PrebuildCommands: append([]PrebuildCommand(nil), s.prebuildCommands...),
	}
}
