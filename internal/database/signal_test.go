package database

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, stop := SetupSignalHandler(parent, nil)
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("Context should not be cancelled immediately")
	default:
	}

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Error("Context should follow its parent")
	}
}

func TestSetupSignalHandler_Signal(t *testing.T) {
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping signal test in CI environment")
	}

	received := make(chan os.Signal, 1)
	ctx, stop := SetupSignalHandler(context.Background(), func(sig os.Signal) {
		received <- sig
	})
	defer stop()

	time.Sleep(10 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Context was not cancelled after receiving signal")
	}
	if sig := <-received; sig != syscall.SIGTERM {
		t.Errorf("callback received %v, expected SIGTERM", sig)
	}
}
