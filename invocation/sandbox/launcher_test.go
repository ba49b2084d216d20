package sandbox

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"
)

type fakeEnforcer struct {
	called bool
	ok     bool
}

func (f *fakeEnforcer) Wrap(exe string, args []string, _ Policy) (string, []string, bool) {
	f.called = true
	if !f.ok {
		return "", nil, false
	}
	return exe, args, true
}

func TestLauncher_SpawnWritesOutput(t *testing.T) {
	l := NewLauncher(WithEnforcer(&fakeEnforcer{ok: true}))

	child, err := l.Spawn(context.Background(), "/bin/sh", []string{"-c", "echo hello"}, nil, "", Policy{})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	out, err := io.ReadAll(child.Output())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Contains(out, []byte("hello")) {
		t.Errorf("output = %q, want it to contain %q", out, "hello")
	}

	select {
	case code := <-child.Wait():
		if code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}
}

func TestLauncher_FallsBackWhenEnforcerDeclines(t *testing.T) {
	fe := &fakeEnforcer{ok: false}
	l := NewLauncher(WithEnforcer(fe))

	child, err := l.Spawn(context.Background(), "/bin/sh", []string{"-c", "exit 3"}, nil, "", Policy{})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if !fe.called {
		t.Errorf("enforcer.Wrap should have been consulted")
	}

	select {
	case code := <-child.Wait():
		if code != 3 {
			t.Errorf("exit code = %d, want 3", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for exit")
	}
}

func TestLauncher_MessageRoundTrip(t *testing.T) {
	l := NewLauncher(WithEnforcer(&fakeEnforcer{ok: true}))

	// ddcat copies fd3 to fd4 using dd, a minimal way to exercise the
	// length-prefixed frame round trip without a real plugin binary. count
	// is the framed size of the payload below: a 4-byte length prefix plus
	// the 2 bytes of "hi".
	const ddcat = `dd if=/proc/self/fd/3 of=/proc/self/fd/4 bs=1 count=6 2>/dev/null`
	child, err := l.Spawn(context.Background(), "/bin/sh", []string{"-c", ddcat}, nil, "", Policy{})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	payload := []byte("hi")
	if err := child.Send(payload); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case frame, ok := <-child.Messages():
		if !ok {
			t.Fatal("messages channel closed before a frame arrived")
		}
		if !bytes.Equal(frame, payload) {
			t.Errorf("frame = %q, want %q", frame, payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for echoed frame")
	}

	<-child.Wait()
}

func TestLauncher_KillTerminatesProcess(t *testing.T) {
	l := NewLauncher(WithEnforcer(&fakeEnforcer{ok: true}))

	child, err := l.Spawn(context.Background(), "/bin/sh", []string{"-c", "sleep 30"}, nil, "", Policy{})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	if err := child.Kill(); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case <-child.Wait():
	case <-time.After(6 * time.Second):
		t.Fatal("process did not exit after Kill()")
	}
}
