package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/countersign-labs/countersign-cli/internal/core/ports/driving"
)

func TestRemindCmd_Use(t *testing.T) {
	assert.Equal(t, "remind [doc-id]", remindCmd.Use)
}

func TestRemindCmd_ReportsTargets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"remind", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		remindMessage = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Reminded 1 of 1 recipient(s)")
	assert.Contains(t, buf.String(), "bob@example.com")
}

func TestRemindCmd_EmptyTargetsIsNoOp(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	reminderSender = &mockReminderSender{report: &driving.ReminderReport{DocumentID: "doc-1"}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"remind", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		remindMessage = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Nobody is currently waiting")
}

func TestRemindCmd_PassesMessageFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	sender := &mockReminderSender{}
	reminderSender = sender

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"remind", "doc-1", "--message", "please sign today"})
	defer func() {
		rootCmd.SetArgs(nil)
		remindMessage = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "please sign today", sender.lastMessage)
}

func TestRemindCmd_ReportsPartialFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	reminderSender = &mockReminderSender{report: &driving.ReminderReport{
		DocumentID: "doc-1",
		Targets:    []string{"bob@example.com", "carol@example.com"},
		Sent:       1,
		Failed:     1,
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"remind", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		remindMessage = ""
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Reminded 1 of 2 recipient(s)")
	assert.Contains(t, buf.String(), "1 delivery failure(s)")
}

func TestRemindCmd_FailsWithoutService(t *testing.T) {
	prev := reminderSender
	reminderSender = nil
	defer func() { reminderSender = prev }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"remind", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		remindMessage = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
