package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "sent")
	assert.Contains(t, commandNames, "remove")
}

// Document Add Tests

func TestDocumentAddCmd_RequiresRecipient(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "add", "contract.pdf"})
	defer func() {
		rootCmd.SetArgs(nil)
		recipientFlags = nil
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "recipient")
}

func TestDocumentAddCmd_ExecutesWithRecipients(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"document", "add", "contract.pdf",
		"-r", "alice@example.com:Alice:1",
		"-r", "bob@example.com",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		recipientFlags = nil
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Tracking document")
	assert.Contains(t, buf.String(), "contract.pdf")
	assert.Contains(t, buf.String(), "2 recipient(s)")
}

func TestParseRecipient(t *testing.T) {
	r, err := parseRecipient("alice@example.com:Alice:2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", r.Email)
	assert.Equal(t, "Alice", r.Name)
	assert.Equal(t, 2, r.Order)

	r, err = parseRecipient("bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", r.Email)
	assert.Empty(t, r.Name)
	assert.Equal(t, 1, r.Order)

	_, err = parseRecipient(":Alice:1")
	assert.Error(t, err)

	_, err = parseRecipient("carol@example.com:Carol:zero")
	assert.Error(t, err)

	_, err = parseRecipient("carol@example.com:Carol:-1")
	assert.Error(t, err)
}

// Document List Tests

func TestDocumentListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Tracked documents:")
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "contract.pdf")
}

// Document Show Tests

func TestDocumentShowCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentShowCmd_ExecutesWithArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "show", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Document: doc-1")
	assert.Contains(t, buf.String(), "Alice <alice@example.com>")
	assert.Contains(t, buf.String(), "SIGNED")
}

// Document Sent Tests

func TestDocumentSentCmd_RequiresTwoArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "sent", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestDocumentSentCmd_ExecutesWithArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "sent", "doc-1", "agr-99"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "agr-99")
}

// Document Remove Tests

func TestDocumentRemoveCmd_ExecutesWithArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "remove", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Removed document: doc-1")
}

func TestDocumentCmds_FailWithoutService(t *testing.T) {
	prev := documentService
	documentService = nil
	defer func() { documentService = prev }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
