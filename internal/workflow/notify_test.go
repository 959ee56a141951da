package workflow

import (
	"testing"
	"time"
)

func TestInfoAutoDismisses(t *testing.T) {
	notifier := NewNotifier(20 * time.Millisecond)
	notifier.Info("saved")

	if current := notifier.Current(); current == nil || current.Message != "saved" {
		t.Fatalf("current = %+v", current)
	}

	deadline := time.Now().Add(time.Second)
	for notifier.Current() != nil {
		if time.Now().After(deadline) {
			t.Fatal("info notification did not auto-dismiss")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestErrorPersistsUntilCleared(t *testing.T) {
	notifier := NewNotifier(20 * time.Millisecond)
	notifier.Error("compile failed")

	time.Sleep(60 * time.Millisecond)
	if current := notifier.Current(); current == nil || current.Kind != NotifyError {
		t.Fatalf("error banner must persist past the TTL, got %+v", current)
	}

	notifier.Clear()
	if notifier.Current() != nil {
		t.Error("Clear must dismiss the banner")
	}
}

func TestReplacementCancelsPendingDismissal(t *testing.T) {
	notifier := NewNotifier(30 * time.Millisecond)
	notifier.Info("first")
	notifier.Error("second")

	// The first message's timer must not dismiss the error that replaced it.
	time.Sleep(60 * time.Millisecond)
	if current := notifier.Current(); current == nil || current.Message != "second" {
		t.Fatalf("current = %+v, want the replacement to survive", current)
	}
}

func TestSubscribersReceiveEveryNotification(t *testing.T) {
	notifier := NewNotifier(time.Minute)

	var got []Notification
	notifier.Subscribe(func(note Notification) { got = append(got, note) })

	notifier.Info("one")
	notifier.Error("two")

	if len(got) != 2 || got[0].Message != "one" || got[1].Kind != NotifyError {
		t.Errorf("notifications = %+v", got)
	}
}
